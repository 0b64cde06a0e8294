package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/systmms/keycloak-aca/internal/sqlsetup"
)

func NewEnsureCommand(opts *Options) *cobra.Command {
	var (
		server            string
		port              int
		database          string
		adminUser         string
		appUser           string
		vaultURL          string
		adminSecret       string
		appSecret         string
		connectionTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "Create the Keycloak SQL login and database user if missing",
		Long: `Connects to the server as the administrator and creates the Keycloak
login (on master) and database user with db_owner membership (on the
application database). Both statements are existence-guarded, so rerunning
is safe.

Passwords come from KCDB_ADMIN_PASSWORD and KCDB_APP_PASSWORD, or from Key
Vault when --vault-url is set.

Examples:
  # Passwords from the environment
  KCDB_ADMIN_PASSWORD=... KCDB_APP_PASSWORD=... \
    kcdbinit ensure --server kc-sql.database.windows.net --database kc-db

  # Passwords from Key Vault
  kcdbinit ensure --server kc-sql.database.windows.net --database kc-db \
    --vault-url https://kc-vault.vault.azure.net`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			adminPassword, err := opts.password(ctx, adminPasswordEnv, vaultURL, adminSecret)
			if err != nil {
				return err
			}
			appPassword, err := opts.password(ctx, appPasswordEnv, vaultURL, appSecret)
			if err != nil {
				return err
			}

			init := opts.initializer()
			err = adminPassword.WithString(func(admin string) error {
				return appPassword.WithString(func(app string) error {
					return init.EnsureAppUser(ctx, sqlsetup.Params{
						Server:        server,
						Port:          port,
						AdminUser:     adminUser,
						AdminPassword: admin,
						Database:      database,
						AppUser:       appUser,
						AppPassword:   app,
						Timeout:       connectionTimeout,
					})
				})
			})
			if err != nil {
				return err
			}

			opts.Logger.Info("login and user %s are in place on %s/%s", appUser, server, database)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Fully qualified SQL server name (required)")
	cmd.Flags().IntVar(&port, "port", sqlsetup.DefaultPort, "SQL server port")
	cmd.Flags().StringVar(&database, "database", "", "Application database name (required)")
	cmd.Flags().StringVar(&adminUser, "admin-user", "sqladmin", "Server administrator login")
	cmd.Flags().StringVar(&appUser, "app-user", "keycloak", "Login/user to provision")
	cmd.Flags().StringVar(&vaultURL, "vault-url", "", "Key Vault URL for password lookup")
	cmd.Flags().StringVar(&adminSecret, "admin-password-secret", "sql-admin-password", "Key Vault secret holding the admin password")
	cmd.Flags().StringVar(&appSecret, "app-password-secret", "kc-db-password", "Key Vault secret holding the app password")
	cmd.Flags().DurationVar(&connectionTimeout, "timeout", 30*time.Second, "Per-connection timeout")

	_ = cmd.MarkFlagRequired("server")
	_ = cmd.MarkFlagRequired("database")

	return cmd
}

package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/systmms/keycloak-aca/internal/sqlsetup"
)

func NewVerifyCommand(opts *Options) *cobra.Command {
	var (
		server            string
		port              int
		database          string
		appUser           string
		vaultURL          string
		appSecret         string
		connectionTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Connect as the Keycloak SQL user and run a probe query",
		Long: `Connects to the application database as the Keycloak user and runs a
trivial query. A success proves the login, the user mapping and the
firewall path all work; this is the same access Keycloak itself needs.

The password comes from KCDB_APP_PASSWORD, or from Key Vault when
--vault-url is set.

Examples:
  KCDB_APP_PASSWORD=... \
    kcdbinit verify --server kc-sql.database.windows.net --database kc-db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			appPassword, err := opts.password(ctx, appPasswordEnv, vaultURL, appSecret)
			if err != nil {
				return err
			}

			init := opts.initializer()
			err = appPassword.WithString(func(app string) error {
				return init.VerifyAppUser(ctx, sqlsetup.Params{
					Server:      server,
					Port:        port,
					Database:    database,
					AppUser:     appUser,
					AppPassword: app,
					Timeout:     connectionTimeout,
				})
			})
			if err != nil {
				return err
			}

			opts.Logger.Info("user %s can reach %s/%s", appUser, server, database)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Fully qualified SQL server name (required)")
	cmd.Flags().IntVar(&port, "port", sqlsetup.DefaultPort, "SQL server port")
	cmd.Flags().StringVar(&database, "database", "", "Application database name (required)")
	cmd.Flags().StringVar(&appUser, "app-user", "keycloak", "Login/user to verify")
	cmd.Flags().StringVar(&vaultURL, "vault-url", "", "Key Vault URL for password lookup")
	cmd.Flags().StringVar(&appSecret, "app-password-secret", "kc-db-password", "Key Vault secret holding the app password")
	cmd.Flags().DurationVar(&connectionTimeout, "timeout", 30*time.Second, "Per-connection timeout")

	_ = cmd.MarkFlagRequired("server")
	_ = cmd.MarkFlagRequired("database")

	return cmd
}

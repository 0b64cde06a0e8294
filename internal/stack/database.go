package stack

import (
	"fmt"

	"github.com/pulumi/pulumi-azure-native-sdk/resources/v2"
	"github.com/pulumi/pulumi-azure-native-sdk/sql/v2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/systmms/keycloak-aca/internal/sqlsetup"
)

func (d *Deployment) database(ctx *pulumi.Context, group *resources.ResourceGroup, server *sql.Server) (*sql.Database, error) {
	return sql.NewDatabase(ctx, fmt.Sprintf("%s-db", d.cfg.Name), &sql.DatabaseArgs{
		ResourceGroupName: group.Name,
		ServerName:        server.Name,
		Location:          group.Location,
		Collation:         pulumi.String("SQL_Latin1_General_CP1_CI_AS"),
		Sku: &sql.SkuArgs{
			Name: pulumi.String(d.cfg.Settings.Database.Sku),
		},
	})
}

// ensureDatabaseUser runs the login/user provisioning once the server,
// database, passwords and firewall rules are known. It is skipped during
// preview, where no live connection is possible, and its output gates the
// Container App's JDBC URL so the engine orders user creation before the
// app starts.
func (d *Deployment) ensureDatabaseUser(ctx *pulumi.Context, server *sql.Server, database *sql.Database, passwords *Passwords, rules []*sql.FirewallRule) pulumi.BoolOutput {
	deps := []interface{}{
		server.FullyQualifiedDomainName,
		database.Name,
		passwords.SQLAdmin.Result,
		passwords.KeycloakDB.Result,
	}
	// The rule IDs are awaited, not used: connecting before the firewall
	// rules exist gets rejected.
	for _, rule := range rules {
		deps = append(deps, rule.ID())
	}

	return pulumi.All(deps...).ApplyT(func(args []interface{}) (bool, error) {
		if ctx.DryRun() {
			return false, nil
		}

		params := sqlsetup.Params{
			Server:        args[0].(string),
			AdminUser:     d.cfg.SQLAdminUser,
			AdminPassword: args[2].(string),
			Database:      args[1].(string),
			AppUser:       d.cfg.SQLAppUser,
			AppPassword:   args[3].(string),
		}
		if err := d.dbinit.EnsureAppUser(ctx.Context(), params); err != nil {
			return false, err
		}
		return true, nil
	}).(pulumi.BoolOutput)
}

package stack

import (
	"fmt"
	"sort"

	"github.com/pulumi/pulumi-azure-native-sdk/app/v2"
	"github.com/pulumi/pulumi-azure-native-sdk/resources/v2"
	"github.com/pulumi/pulumi-azure-native-sdk/sql/v2"
	"github.com/pulumi/pulumi-docker/sdk/v4/go/docker"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/systmms/keycloak-aca/internal/sqlsetup"
)

const (
	registryPasswordSecret = "registry-password"
	dbPasswordSecret       = "kc-db-password"
	adminPasswordSecret    = "kc-admin-password"
)

func (d *Deployment) containerApp(
	ctx *pulumi.Context,
	group *resources.ResourceGroup,
	environment *app.ManagedEnvironment,
	image *docker.Image,
	creds RegistryCredentials,
	server *sql.Server,
	database *sql.Database,
	passwords *Passwords,
	databaseReady pulumi.BoolOutput,
) (*app.ContainerApp, error) {
	settings := d.cfg.Settings

	// databaseReady participates in the URL computation only for ordering:
	// the app must not start before its SQL user exists.
	jdbcURL := pulumi.All(server.FullyQualifiedDomainName, database.Name, databaseReady).
		ApplyT(func(args []interface{}) string {
			return fmt.Sprintf(
				"jdbc:sqlserver://%s:%d;databaseName=%s;encrypt=true;trustServerCertificate=false;loginTimeout=30",
				args[0].(string), sqlsetup.DefaultPort, args[1].(string))
		}).(pulumi.StringOutput)

	env := app.EnvironmentVarArray{
		&app.EnvironmentVarArgs{Name: pulumi.String("KC_DB"), Value: pulumi.String("mssql")},
		&app.EnvironmentVarArgs{Name: pulumi.String("KC_DB_URL"), Value: jdbcURL},
		&app.EnvironmentVarArgs{Name: pulumi.String("KC_DB_USERNAME"), Value: pulumi.String(d.cfg.SQLAppUser)},
		&app.EnvironmentVarArgs{Name: pulumi.String("KC_DB_PASSWORD"), SecretRef: pulumi.String(dbPasswordSecret)},
		&app.EnvironmentVarArgs{Name: pulumi.String("KEYCLOAK_ADMIN"), Value: pulumi.String(d.cfg.KeycloakAdminUser)},
		&app.EnvironmentVarArgs{Name: pulumi.String("KEYCLOAK_ADMIN_PASSWORD"), SecretRef: pulumi.String(adminPasswordSecret)},
		&app.EnvironmentVarArgs{Name: pulumi.String("KC_HTTP_ENABLED"), Value: pulumi.String("true")},
		&app.EnvironmentVarArgs{Name: pulumi.String("KC_PROXY_HEADERS"), Value: pulumi.String("xforwarded")},
		&app.EnvironmentVarArgs{Name: pulumi.String("KC_HOSTNAME_STRICT"), Value: pulumi.String("false")},
	}

	// Deterministic ordering keeps diffs quiet across deployments.
	extra := make([]string, 0, len(settings.Env))
	for name := range settings.Env {
		extra = append(extra, name)
	}
	sort.Strings(extra)
	for _, name := range extra {
		env = append(env, &app.EnvironmentVarArgs{
			Name:  pulumi.String(name),
			Value: pulumi.String(settings.Env[name]),
		})
	}

	return app.NewContainerApp(ctx, d.cfg.Name, &app.ContainerAppArgs{
		ResourceGroupName:    group.Name,
		Location:             group.Location,
		ManagedEnvironmentId: environment.ID(),
		Configuration: &app.ConfigurationArgs{
			Ingress: &app.IngressArgs{
				External:   pulumi.Bool(true),
				TargetPort: pulumi.Int(settings.Container.Port),
			},
			Registries: app.RegistryCredentialsArray{
				&app.RegistryCredentialsArgs{
					Server:            creds.Server,
					Username:          creds.Username,
					PasswordSecretRef: pulumi.String(registryPasswordSecret),
				},
			},
			Secrets: app.SecretArray{
				&app.SecretArgs{Name: pulumi.String(registryPasswordSecret), Value: creds.Password},
				&app.SecretArgs{Name: pulumi.String(dbPasswordSecret), Value: passwords.KeycloakDB.Result},
				&app.SecretArgs{Name: pulumi.String(adminPasswordSecret), Value: passwords.KeycloakAdmin.Result},
			},
		},
		Template: &app.TemplateArgs{
			Containers: app.ContainerArray{
				&app.ContainerArgs{
					Name:  pulumi.String(d.cfg.Name),
					Image: image.ImageName,
					Env:   env,
					Resources: &app.ContainerResourcesArgs{
						Cpu:    pulumi.Float64(settings.Container.CPU),
						Memory: pulumi.String(settings.Container.Memory),
					},
				},
			},
			Scale: &app.ScaleArgs{
				MinReplicas: pulumi.Int(settings.Scale.MinReplicas),
				MaxReplicas: pulumi.Int(settings.Scale.MaxReplicas),
			},
		},
	})
}

// Package stack declares the resource graph: resource group, SQL server and
// database, generated passwords, container registry, Keycloak image, managed
// environment and the Container App, in dependency order. Reconciliation of
// the graph against live Azure state is the engine's job; nothing here
// retries or compensates.
package stack

import (
	"context"

	"github.com/pulumi/pulumi-azure-native-sdk/app/v2"
	"github.com/pulumi/pulumi-azure-native-sdk/containerregistry/v2"
	"github.com/pulumi/pulumi-azure-native-sdk/operationalinsights/v2"
	"github.com/pulumi/pulumi-azure-native-sdk/resources/v2"
	"github.com/pulumi/pulumi-azure-native-sdk/sql/v2"
	"github.com/pulumi/pulumi-docker/sdk/v4/go/docker"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/systmms/keycloak-aca/internal/config"
	kcerrors "github.com/systmms/keycloak-aca/internal/errors"
	"github.com/systmms/keycloak-aca/internal/logging"
	"github.com/systmms/keycloak-aca/internal/sqlsetup"
)

// IPResolver reports the deployer's public IP for the SQL firewall rule.
type IPResolver interface {
	PublicIP(ctx context.Context) (string, error)
}

// DatabaseInitializer provisions the Keycloak login/user on the deployed
// server.
type DatabaseInitializer interface {
	EnsureAppUser(ctx context.Context, p sqlsetup.Params) error
}

// Deployment wires the graph together.
type Deployment struct {
	cfg    *config.Stack
	logger *logging.Logger
	ips    IPResolver
	dbinit DatabaseInitializer
}

// New creates a Deployment.
func New(cfg *config.Stack, logger *logging.Logger, ips IPResolver, dbinit DatabaseInitializer) *Deployment {
	return &Deployment{cfg: cfg, logger: logger, ips: ips, dbinit: dbinit}
}

// Resources collects everything Deploy created, mostly for tests.
type Resources struct {
	Group         *resources.ResourceGroup
	Passwords     *Passwords
	Server        *sql.Server
	FirewallRules []*sql.FirewallRule
	Database      *sql.Database
	DatabaseReady pulumi.BoolOutput
	Registry      *containerregistry.Registry
	RegistryCreds RegistryCredentials
	Image         *docker.Image
	Workspace     *operationalinsights.Workspace
	Environment   *app.ManagedEnvironment
	App           *app.ContainerApp
	URL           pulumi.StringOutput
}

// Deploy declares the full graph and registers the stack outputs.
func (d *Deployment) Deploy(ctx *pulumi.Context) (*Resources, error) {
	res := &Resources{}

	group, err := d.resourceGroup(ctx)
	if err != nil {
		return nil, kcerrors.StepError("resource-group", err)
	}
	res.Group = group

	passwords, err := d.passwords(ctx)
	if err != nil {
		return nil, kcerrors.StepError("passwords", err)
	}
	res.Passwords = passwords

	server, firewallRules, err := d.sqlServer(ctx, group, passwords)
	if err != nil {
		return nil, kcerrors.StepError("sql-server", err)
	}
	res.Server = server
	res.FirewallRules = firewallRules

	database, err := d.database(ctx, group, server)
	if err != nil {
		return nil, kcerrors.StepError("sql-database", err)
	}
	res.Database = database

	res.DatabaseReady = d.ensureDatabaseUser(ctx, server, database, passwords, firewallRules)

	registry, creds, err := d.registry(ctx, group)
	if err != nil {
		return nil, kcerrors.StepError("container-registry", err)
	}
	res.Registry = registry
	res.RegistryCreds = creds

	image, err := d.image(ctx, creds)
	if err != nil {
		return nil, kcerrors.StepError("image", err)
	}
	res.Image = image

	workspace, environment, err := d.environment(ctx, group)
	if err != nil {
		return nil, kcerrors.StepError("managed-environment", err)
	}
	res.Workspace = workspace
	res.Environment = environment

	application, err := d.containerApp(ctx, group, environment, image, creds, server, database, passwords, res.DatabaseReady)
	if err != nil {
		return nil, kcerrors.StepError("container-app", err)
	}
	res.App = application
	res.URL = pulumi.Sprintf("https://%s", application.Configuration.Ingress().Fqdn().Elem())

	d.export(ctx, res)
	return res, nil
}

func (d *Deployment) export(ctx *pulumi.Context, res *Resources) {
	ctx.Export("resourceGroup", res.Group.Name)
	ctx.Export("sqlServer", res.Server.FullyQualifiedDomainName)
	ctx.Export("sqlAdminUser", pulumi.String(d.cfg.SQLAdminUser))
	ctx.Export("sqlAdminPassword", pulumi.ToSecret(res.Passwords.SQLAdmin.Result))
	ctx.Export("keycloakDbUser", pulumi.String(d.cfg.SQLAppUser))
	ctx.Export("keycloakDbPassword", pulumi.ToSecret(res.Passwords.KeycloakDB.Result))
	ctx.Export("keycloakAdminUser", pulumi.String(d.cfg.KeycloakAdminUser))
	ctx.Export("keycloakAdminPassword", pulumi.ToSecret(res.Passwords.KeycloakAdmin.Result))
	ctx.Export("registryServer", res.RegistryCreds.Server)
	ctx.Export("registryUsername", pulumi.ToSecret(res.RegistryCreds.Username))
	ctx.Export("registryPassword", pulumi.ToSecret(res.RegistryCreds.Password))
	ctx.Export("databaseUserReady", res.DatabaseReady)
	ctx.Export("keycloakUrl", res.URL)
}

// Package config loads the deployment's stack configuration. Every key is
// optional; the defaults produce a working single-replica Keycloak stack.
package config

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	sdkconfig "github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// Stack holds the typed stack configuration.
type Stack struct {
	// Name is the base name used for all resources.
	Name string
	// Location is the Azure region.
	Location string
	// SQLAdminUser is the SQL server administrator login.
	SQLAdminUser string
	// SQLAppUser is the SQL login/user Keycloak connects as.
	SQLAppUser string
	// KeycloakAdminUser is the initial Keycloak admin account name.
	KeycloakAdminUser string
	// ImageVersion is the Keycloak version baked into the image.
	ImageVersion string
	// Debug enables verbose diagnostics.
	Debug bool
	// Settings holds the optional tuning file (defaults when absent).
	Settings *Settings
}

// Configuration keys and their defaults.
const (
	defaultName              = "keycloak"
	defaultLocation          = "westeurope"
	defaultSQLAdminUser      = "sqladmin"
	defaultSQLAppUser        = "keycloak"
	defaultKeycloakAdminUser = "admin"
	defaultImageVersion      = "26.0"
)

// Load reads the stack configuration from the Pulumi context.
func Load(ctx *pulumi.Context) (*Stack, error) {
	cfg := sdkconfig.New(ctx, "")

	s := &Stack{
		Name:              getOr(cfg, "name", defaultName),
		Location:          getOr(cfg, "location", defaultLocation),
		SQLAdminUser:      getOr(cfg, "sql.admin.user", defaultSQLAdminUser),
		SQLAppUser:        getOr(cfg, "sql.kc.user", defaultSQLAppUser),
		KeycloakAdminUser: getOr(cfg, "keycloak.admin.usr", defaultKeycloakAdminUser),
		ImageVersion:      getOr(cfg, "keycloak.image.version", defaultImageVersion),
		Debug:             cfg.GetBool("debug"),
	}

	settings := DefaultSettings()
	if path := cfg.Get("keycloak.settings"); path != "" {
		loaded, err := LoadSettings(path)
		if err != nil {
			return nil, err
		}
		settings = loaded
	}
	s.Settings = settings

	return s, nil
}

func getOr(cfg *sdkconfig.Config, key, fallback string) string {
	if v := cfg.Get(key); v != "" {
		return v
	}
	return fallback
}

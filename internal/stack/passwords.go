package stack

import (
	"fmt"

	"github.com/pulumi/pulumi-random/sdk/v4/go/random"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// Passwords are generated once per deployment and live in the stack state;
// rotating one means replacing the resource.
type Passwords struct {
	SQLAdmin      *random.RandomPassword
	KeycloakDB    *random.RandomPassword
	KeycloakAdmin *random.RandomPassword
}

// passwordSpecials excludes ';', ''' and whitespace so generated values can
// be embedded in ADO connection strings and T-SQL literals untouched.
const passwordSpecials = "!#$%*()-_=+"

func (d *Deployment) passwords(ctx *pulumi.Context) (*Passwords, error) {
	newPassword := func(name string) (*random.RandomPassword, error) {
		return random.NewRandomPassword(ctx, name, &random.RandomPasswordArgs{
			Length:          pulumi.Int(24),
			Special:         pulumi.Bool(true),
			OverrideSpecial: pulumi.String(passwordSpecials),
			MinLower:        pulumi.Int(1),
			MinUpper:        pulumi.Int(1),
			MinNumeric:      pulumi.Int(1),
			MinSpecial:      pulumi.Int(1),
		})
	}

	sqlAdmin, err := newPassword("sql-admin-password")
	if err != nil {
		return nil, fmt.Errorf("generating SQL admin password: %w", err)
	}
	keycloakDB, err := newPassword("kc-db-password")
	if err != nil {
		return nil, fmt.Errorf("generating Keycloak DB password: %w", err)
	}
	keycloakAdmin, err := newPassword("kc-admin-password")
	if err != nil {
		return nil, fmt.Errorf("generating Keycloak admin password: %w", err)
	}

	return &Passwords{
		SQLAdmin:      sqlAdmin,
		KeycloakDB:    keycloakDB,
		KeycloakAdmin: keycloakAdmin,
	}, nil
}

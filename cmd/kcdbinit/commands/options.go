package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/systmms/keycloak-aca/internal/azure"
	kcerrors "github.com/systmms/keycloak-aca/internal/errors"
	"github.com/systmms/keycloak-aca/internal/logging"
	"github.com/systmms/keycloak-aca/internal/secure"
	"github.com/systmms/keycloak-aca/internal/sqlsetup"
)

// Environment variables checked before falling back to Key Vault.
const (
	adminPasswordEnv = "KCDB_ADMIN_PASSWORD"
	appPasswordEnv   = "KCDB_APP_PASSWORD"
)

// Initializer is the sqlsetup surface the commands use.
type Initializer interface {
	EnsureAppUser(ctx context.Context, p sqlsetup.Params) error
	VerifyAppUser(ctx context.Context, p sqlsetup.Params) error
}

// SecretFetcher reads one named secret from a vault.
type SecretFetcher interface {
	Fetch(ctx context.Context, name string) (*secure.Enclave, error)
}

// Options carries the shared command dependencies. The zero-value defaults
// are filled in lazily; tests override the fields before Execute.
type Options struct {
	Logger      *logging.Logger
	Initializer Initializer
	NewFetcher  func(vaultURL string, logger *logging.Logger) (SecretFetcher, error)
	Getenv      func(key string) string
}

// NewOptions creates an Options placeholder. The logger is installed by the
// root command once the persistent flags are parsed.
func NewOptions() *Options {
	return &Options{}
}

func (o *Options) initializer() Initializer {
	if o.Initializer != nil {
		return o.Initializer
	}
	return sqlsetup.New(o.Logger)
}

func (o *Options) fetcher(vaultURL string) (SecretFetcher, error) {
	if o.NewFetcher != nil {
		return o.NewFetcher(vaultURL, o.Logger)
	}
	return azure.NewSecretFetcher(vaultURL, o.Logger)
}

func (o *Options) getenv(key string) string {
	if o.Getenv != nil {
		return o.Getenv(key)
	}
	return os.Getenv(key)
}

// password resolves one password: the environment variable wins, then the
// named Key Vault secret when a vault URL is given.
func (o *Options) password(ctx context.Context, envVar, vaultURL, secretName string) (*secure.Enclave, error) {
	if v := o.getenv(envVar); v != "" {
		o.Logger.Debug("using password from %s", envVar)
		return secure.FromString(v), nil
	}
	if vaultURL == "" {
		return nil, kcerrors.UserError{
			Message:    fmt.Sprintf("no password available for %s", envVar),
			Suggestion: fmt.Sprintf("Set %s, or pass --vault-url to read the '%s' secret from Key Vault", envVar, secretName),
		}
	}
	fetcher, err := o.fetcher(vaultURL)
	if err != nil {
		return nil, err
	}
	return fetcher.Fetch(ctx, secretName)
}

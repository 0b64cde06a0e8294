// Package azure provides the Key Vault lookup used by kcdbinit when
// passwords are not supplied through the environment.
package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"

	kcerrors "github.com/systmms/keycloak-aca/internal/errors"
	"github.com/systmms/keycloak-aca/internal/logging"
	"github.com/systmms/keycloak-aca/internal/secure"
)

// secretGetter is the slice of azsecrets.Client the fetcher needs.
type secretGetter interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// SecretFetcher reads secrets from one Key Vault.
type SecretFetcher struct {
	client secretGetter
	logger *logging.Logger
}

// NewSecretFetcher authenticates with the default Azure credential chain
// (CLI, environment, managed identity) against the given vault URL.
func NewSecretFetcher(vaultURL string, logger *logging.Logger) (*SecretFetcher, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, kcerrors.UserError{
			Message:    "failed to build an Azure credential",
			Suggestion: "Run 'az login' or set the AZURE_* service principal environment variables",
			Err:        err,
		}
	}

	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating Key Vault client for %s: %w", vaultURL, err)
	}

	return &SecretFetcher{client: client, logger: logger}, nil
}

// newSecretFetcherWithClient wires a pre-built client. Used by tests.
func newSecretFetcherWithClient(client secretGetter, logger *logging.Logger) *SecretFetcher {
	return &SecretFetcher{client: client, logger: logger}
}

// Fetch reads the latest version of a secret and seals it in an enclave.
func (f *SecretFetcher) Fetch(ctx context.Context, name string) (*secure.Enclave, error) {
	resp, err := f.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		return nil, kcerrors.UserError{
			Message:    fmt.Sprintf("failed to read Key Vault secret '%s'", name),
			Suggestion: "Check the secret name and that the principal has the 'Key Vault Secrets User' role",
			Err:        err,
		}
	}
	if resp.Value == nil {
		return nil, fmt.Errorf("Key Vault secret %q has no value", name)
	}

	f.logger.Debug("fetched Key Vault secret %s", name)
	return secure.FromString(*resp.Value), nil
}

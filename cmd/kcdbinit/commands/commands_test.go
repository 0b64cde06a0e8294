package commands

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/keycloak-aca/internal/logging"
	"github.com/systmms/keycloak-aca/internal/secure"
	"github.com/systmms/keycloak-aca/internal/sqlsetup"
)

type fakeInitializer struct {
	ensureParams []sqlsetup.Params
	verifyParams []sqlsetup.Params
	ensureErr    error
	verifyErr    error
}

func (f *fakeInitializer) EnsureAppUser(_ context.Context, p sqlsetup.Params) error {
	f.ensureParams = append(f.ensureParams, p)
	return f.ensureErr
}

func (f *fakeInitializer) VerifyAppUser(_ context.Context, p sqlsetup.Params) error {
	f.verifyParams = append(f.verifyParams, p)
	return f.verifyErr
}

type fakeFetcher struct {
	secrets   map[string]string
	fetched   []string
	vaultURLs []string
}

func (f *fakeFetcher) Fetch(_ context.Context, name string) (*secure.Enclave, error) {
	f.fetched = append(f.fetched, name)
	v, ok := f.secrets[name]
	if !ok {
		return nil, fmt.Errorf("secret %q not found", name)
	}
	return secure.FromString(v), nil
}

func testOptions(init Initializer, fetcher *fakeFetcher, env map[string]string) *Options {
	return &Options{
		Logger:      logging.New(false, true),
		Initializer: init,
		NewFetcher: func(vaultURL string, _ *logging.Logger) (SecretFetcher, error) {
			fetcher.vaultURLs = append(fetcher.vaultURLs, vaultURL)
			return fetcher, nil
		},
		Getenv: func(key string) string { return env[key] },
	}
}

func TestEnsureCommand_EnvironmentPasswords(t *testing.T) {
	init := &fakeInitializer{}
	fetcher := &fakeFetcher{}
	opts := testOptions(init, fetcher, map[string]string{
		"KCDB_ADMIN_PASSWORD": "admin-pass",
		"KCDB_APP_PASSWORD":   "app-pass",
	})

	cmd := NewEnsureCommand(opts)
	cmd.SetArgs([]string{
		"--server", "kc-sql.database.windows.net",
		"--database", "kc-db",
		"--app-user", "keycloak",
		"--timeout", "5s",
	})
	require.NoError(t, cmd.Execute())

	require.Len(t, init.ensureParams, 1)
	p := init.ensureParams[0]
	assert.Equal(t, "kc-sql.database.windows.net", p.Server)
	assert.Equal(t, sqlsetup.DefaultPort, p.Port)
	assert.Equal(t, "sqladmin", p.AdminUser)
	assert.Equal(t, "admin-pass", p.AdminPassword)
	assert.Equal(t, "kc-db", p.Database)
	assert.Equal(t, "keycloak", p.AppUser)
	assert.Equal(t, "app-pass", p.AppPassword)
	assert.Equal(t, 5*time.Second, p.Timeout)

	assert.Empty(t, fetcher.fetched, "environment passwords must not touch the vault")
}

func TestEnsureCommand_VaultPasswords(t *testing.T) {
	init := &fakeInitializer{}
	fetcher := &fakeFetcher{secrets: map[string]string{
		"sql-admin-password": "vault-admin",
		"kc-db-password":     "vault-app",
	}}
	opts := testOptions(init, fetcher, nil)

	cmd := NewEnsureCommand(opts)
	cmd.SetArgs([]string{
		"--server", "kc-sql.database.windows.net",
		"--database", "kc-db",
		"--vault-url", "https://kc-vault.vault.azure.net",
	})
	require.NoError(t, cmd.Execute())

	require.Len(t, init.ensureParams, 1)
	assert.Equal(t, "vault-admin", init.ensureParams[0].AdminPassword)
	assert.Equal(t, "vault-app", init.ensureParams[0].AppPassword)
	assert.Equal(t, []string{"sql-admin-password", "kc-db-password"}, fetcher.fetched)
	assert.Contains(t, fetcher.vaultURLs, "https://kc-vault.vault.azure.net")
}

func TestEnsureCommand_CustomSecretNames(t *testing.T) {
	init := &fakeInitializer{}
	fetcher := &fakeFetcher{secrets: map[string]string{
		"prod-sql-admin": "a",
		"prod-kc-db":     "b",
	}}
	opts := testOptions(init, fetcher, nil)

	cmd := NewEnsureCommand(opts)
	cmd.SetArgs([]string{
		"--server", "kc-sql.database.windows.net",
		"--database", "kc-db",
		"--vault-url", "https://kc-vault.vault.azure.net",
		"--admin-password-secret", "prod-sql-admin",
		"--app-password-secret", "prod-kc-db",
	})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"prod-sql-admin", "prod-kc-db"}, fetcher.fetched)
}

func TestEnsureCommand_NoPasswordSource(t *testing.T) {
	init := &fakeInitializer{}
	opts := testOptions(init, &fakeFetcher{}, nil)

	cmd := NewEnsureCommand(opts)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs([]string{
		"--server", "kc-sql.database.windows.net",
		"--database", "kc-db",
	})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KCDB_ADMIN_PASSWORD")
	assert.Contains(t, err.Error(), "--vault-url")
	assert.Empty(t, init.ensureParams)
}

func TestEnsureCommand_InitializerError(t *testing.T) {
	init := &fakeInitializer{ensureErr: fmt.Errorf("login failed for user 'sqladmin'")}
	opts := testOptions(init, &fakeFetcher{}, map[string]string{
		"KCDB_ADMIN_PASSWORD": "a",
		"KCDB_APP_PASSWORD":   "b",
	})

	cmd := NewEnsureCommand(opts)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs([]string{
		"--server", "kc-sql.database.windows.net",
		"--database", "kc-db",
	})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")
}

func TestVerifyCommand_EnvironmentPassword(t *testing.T) {
	init := &fakeInitializer{}
	opts := testOptions(init, &fakeFetcher{}, map[string]string{
		"KCDB_APP_PASSWORD": "app-pass",
	})

	cmd := NewVerifyCommand(opts)
	cmd.SetArgs([]string{
		"--server", "kc-sql.database.windows.net",
		"--database", "kc-db",
	})
	require.NoError(t, cmd.Execute())

	require.Len(t, init.verifyParams, 1)
	p := init.verifyParams[0]
	assert.Equal(t, "keycloak", p.AppUser)
	assert.Equal(t, "app-pass", p.AppPassword)
	assert.Empty(t, p.AdminUser, "verify must not need admin credentials")
}

func TestVerifyCommand_VaultPassword(t *testing.T) {
	init := &fakeInitializer{}
	fetcher := &fakeFetcher{secrets: map[string]string{"kc-db-password": "vault-app"}}
	opts := testOptions(init, fetcher, nil)

	cmd := NewVerifyCommand(opts)
	cmd.SetArgs([]string{
		"--server", "kc-sql.database.windows.net",
		"--database", "kc-db",
		"--vault-url", "https://kc-vault.vault.azure.net",
	})
	require.NoError(t, cmd.Execute())
	require.Len(t, init.verifyParams, 1)
	assert.Equal(t, "vault-app", init.verifyParams[0].AppPassword)
}

func TestVerifyCommand_VerifyError(t *testing.T) {
	init := &fakeInitializer{verifyErr: fmt.Errorf("connection refused")}
	opts := testOptions(init, &fakeFetcher{}, map[string]string{
		"KCDB_APP_PASSWORD": "app-pass",
	})

	cmd := NewVerifyCommand(opts)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs([]string{
		"--server", "kc-sql.database.windows.net",
		"--database", "kc-db",
	})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

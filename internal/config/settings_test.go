package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kcerrors "github.com/systmms/keycloak-aca/internal/errors"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keycloak.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 1.0, s.Container.CPU)
	assert.Equal(t, "2Gi", s.Container.Memory)
	assert.Equal(t, 8080, s.Container.Port)
	assert.Equal(t, 1, s.Scale.MinReplicas)
	assert.Equal(t, 1, s.Scale.MaxReplicas)
	assert.Equal(t, "S0", s.Database.Sku)
	assert.Equal(t, "Basic", s.Registry.Sku)
}

func TestLoadSettingsPartialFileKeepsDefaults(t *testing.T) {
	path := writeSettings(t, `
container:
  memory: 4Gi
env:
  KC_HEALTH_ENABLED: "true"
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "4Gi", s.Container.Memory)
	assert.Equal(t, 1.0, s.Container.CPU, "unset fields keep defaults")
	assert.Equal(t, 8080, s.Container.Port)
	assert.Equal(t, "true", s.Env["KC_HEALTH_ENABLED"])
}

func TestLoadSettingsFullFile(t *testing.T) {
	path := writeSettings(t, `
container:
  cpu: 2
  memory: 4Gi
  port: 8443
scale:
  minReplicas: 2
  maxReplicas: 5
database:
  sku: S1
registry:
  sku: Standard
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, s.Container.CPU)
	assert.Equal(t, 8443, s.Container.Port)
	assert.Equal(t, 2, s.Scale.MinReplicas)
	assert.Equal(t, 5, s.Scale.MaxReplicas)
	assert.Equal(t, "S1", s.Database.Sku)
	assert.Equal(t, "Standard", s.Registry.Sku)
}

func TestLoadSettingsMissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	var cfgErr kcerrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "keycloak.settings", cfgErr.Field)
}

func TestLoadSettingsSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantIn  string
	}{
		{
			name:    "unknown top-level key",
			content: "containr:\n  cpu: 1\n",
			wantIn:  "containr",
		},
		{
			name:    "memory without Gi suffix",
			content: "container:\n  memory: 2GB\n",
			wantIn:  "memory",
		},
		{
			name:    "cpu out of range",
			content: "container:\n  cpu: 9\n",
			wantIn:  "cpu",
		},
		{
			name:    "registry sku not in enum",
			content: "registry:\n  sku: Tiny\n",
			wantIn:  "sku",
		},
		{
			name:    "non-string env value",
			content: "env:\n  KC_HEALTH_ENABLED: true\n",
			wantIn:  "KC_HEALTH_ENABLED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSettings(t, tt.content)
			_, err := LoadSettings(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantIn)
		})
	}
}

func TestLoadSettingsReplicaBounds(t *testing.T) {
	path := writeSettings(t, `
scale:
  minReplicas: 5
  maxReplicas: 2
`)
	_, err := LoadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minReplicas")
}

func TestLoadSettingsReservedEnvRejected(t *testing.T) {
	path := writeSettings(t, `
env:
  KC_DB_PASSWORD: "sneaky"
`)
	_, err := LoadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KC_DB_PASSWORD")
	assert.Contains(t, err.Error(), "managed by the deployment")
}

func TestLoadSettingsEmptyFile(t *testing.T) {
	path := writeSettings(t, "")
	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings().Container, s.Container)
}

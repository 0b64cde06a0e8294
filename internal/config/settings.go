package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	kcerrors "github.com/systmms/keycloak-aca/internal/errors"
)

//go:embed settings.schema.json
var settingsSchema string

// Settings tunes the deployed resources. Everything has a default; the file
// only needs the fields being changed.
type Settings struct {
	Container ContainerSettings `yaml:"container"`
	Scale     ScaleSettings     `yaml:"scale"`
	Database  DatabaseSettings  `yaml:"database"`
	Registry  RegistrySettings  `yaml:"registry"`
	// Env holds extra Keycloak environment variables.
	Env map[string]string `yaml:"env"`
}

// ContainerSettings sizes the Keycloak container.
type ContainerSettings struct {
	CPU    float64 `yaml:"cpu"`
	Memory string  `yaml:"memory"`
	Port   int     `yaml:"port"`
}

// ScaleSettings bounds the Container App replica count.
type ScaleSettings struct {
	MinReplicas int `yaml:"minReplicas"`
	MaxReplicas int `yaml:"maxReplicas"`
}

// DatabaseSettings selects the SQL database SKU.
type DatabaseSettings struct {
	Sku string `yaml:"sku"`
}

// RegistrySettings selects the container registry SKU.
type RegistrySettings struct {
	Sku string `yaml:"sku"`
}

// reservedEnv are variables the deployment wires itself; a settings file
// overriding them would silently break the database or admin bootstrap.
var reservedEnv = []string{
	"KC_DB",
	"KC_DB_URL",
	"KC_DB_USERNAME",
	"KC_DB_PASSWORD",
	"KEYCLOAK_ADMIN",
	"KEYCLOAK_ADMIN_PASSWORD",
}

// DefaultSettings returns the settings used when no file is configured.
func DefaultSettings() *Settings {
	return &Settings{
		Container: ContainerSettings{CPU: 1.0, Memory: "2Gi", Port: 8080},
		Scale:     ScaleSettings{MinReplicas: 1, MaxReplicas: 1},
		Database:  DatabaseSettings{Sku: "S0"},
		Registry:  RegistrySettings{Sku: "Basic"},
		Env:       map[string]string{},
	}
}

// LoadSettings reads, schema-validates and parses a settings file. Values
// absent from the file keep their defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, kcerrors.ConfigError{
				Field:      "keycloak.settings",
				Value:      path,
				Message:    "settings file not found",
				Suggestion: "Remove the config key or create the file",
			}
		}
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	if err := validateSettings(data); err != nil {
		return nil, err
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, kcerrors.ConfigError{
			Field:      "keycloak.settings",
			Value:      path,
			Message:    "invalid YAML syntax",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if settings.Scale.MinReplicas > settings.Scale.MaxReplicas {
		return nil, kcerrors.ConfigError{
			Field:   "scale",
			Message: fmt.Sprintf("minReplicas (%d) exceeds maxReplicas (%d)", settings.Scale.MinReplicas, settings.Scale.MaxReplicas),
		}
	}

	for name := range settings.Env {
		for _, reserved := range reservedEnv {
			if name == reserved {
				return nil, kcerrors.ConfigError{
					Field:      "env." + name,
					Message:    "this variable is managed by the deployment and cannot be overridden",
					Suggestion: "Use the dedicated stack config keys instead",
				}
			}
		}
	}

	return settings, nil
}

// validateSettings checks the raw document against the embedded JSON schema
// so typos fail with a field-level message instead of a zero value.
func validateSettings(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return kcerrors.ConfigError{
			Field:      "keycloak.settings",
			Message:    "invalid YAML syntax",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}
	if doc == nil {
		// Empty file means all defaults.
		return nil
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting settings to JSON for validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(settingsSchema),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return fmt.Errorf("validating settings: %w", err)
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return kcerrors.ConfigError{
			Field:   "keycloak.settings",
			Message: strings.Join(problems, "; "),
		}
	}

	return nil
}

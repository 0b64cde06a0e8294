package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserErrorFormatting(t *testing.T) {
	err := UserError{
		Message:    "deployment failed",
		Details:    "server unreachable",
		Suggestion: "check the firewall",
	}

	msg := err.Error()
	assert.Contains(t, msg, "deployment failed")
	assert.Contains(t, msg, "Details: server unreachable")
	assert.Contains(t, msg, "Try: check the firewall")
}

func TestUserErrorFallsBackToWrapped(t *testing.T) {
	inner := errors.New("boom")
	err := UserError{Err: inner}
	assert.Contains(t, err.Error(), "boom")
	assert.True(t, errors.Is(err, inner))
}

func TestConfigErrorFormatting(t *testing.T) {
	err := ConfigError{
		Field:      "container.memory",
		Value:      "2GB",
		Message:    "must use the Gi suffix",
		Suggestion: "use '2Gi'",
	}

	msg := err.Error()
	assert.Contains(t, msg, "container.memory")
	assert.Contains(t, msg, "2GB")
	assert.Contains(t, msg, "must use the Gi suffix")
}

func TestStepErrorSuggestions(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		suggestion string
	}{
		{
			name:       "azure auth",
			err:        fmt.Errorf("AADSTS700003: device object was not found"),
			suggestion: "az login",
		},
		{
			name:       "global name conflict",
			err:        fmt.Errorf("Code=\"AlreadyExists\" registry name taken"),
			suggestion: "globally unique",
		},
		{
			name:       "sql firewall",
			err:        fmt.Errorf("client with IP address '1.2.3.4' is not allowed to access the server"),
			suggestion: "firewall",
		},
		{
			name:       "docker daemon",
			err:        fmt.Errorf("Cannot connect to the Docker daemon at unix:///var/run/docker.sock"),
			suggestion: "Start Docker",
		},
		{
			name:       "unknown error has no suggestion",
			err:        fmt.Errorf("something novel"),
			suggestion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := StepError("sql-server", tt.err)
			assert.Contains(t, wrapped.Error(), "deployment step 'sql-server' failed")
			if tt.suggestion != "" {
				assert.Contains(t, wrapped.Error(), tt.suggestion)
			} else {
				assert.NotContains(t, wrapped.Error(), "💡")
			}
			assert.True(t, errors.Is(wrapped, tt.err))
		})
	}
}

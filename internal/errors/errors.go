// Package errors carries the user-facing error types for the deployment
// program. Resource and setup failures abort the run; the only local
// handling is attaching a suggestion before the error propagates out.
package errors

import (
	"fmt"
	"strings"
)

// UserError is an error that should be shown to the user with helpful context.
type UserError struct {
	Message    string
	Details    string
	Suggestion string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError is a stack-configuration or settings-file error.
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// StepError wraps a failure from one deployment step with a suggestion
// derived from well-known Azure, SQL and Docker failure modes.
func StepError(step string, err error) error {
	return UserError{
		Message:    fmt.Sprintf("deployment step '%s' failed", step),
		Details:    err.Error(),
		Suggestion: stepSuggestion(err),
		Err:        err,
	}
}

func stepSuggestion(err error) string {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "AADSTS"), strings.Contains(errStr, "DefaultAzureCredential"):
		return "Authenticate with Azure first: run 'az login' or set ARM_CLIENT_ID/ARM_CLIENT_SECRET/ARM_TENANT_ID"
	case strings.Contains(errStr, "AuthorizationFailed"):
		return "The signed-in principal lacks permissions on the subscription. Check its role assignments"
	case strings.Contains(errStr, "AlreadyExists"), strings.Contains(errStr, "NameNotAvailable"):
		return "Registry and SQL server names are globally unique. Set a different 'name' in the stack config"
	case strings.Contains(errStr, "not allowed to access the server"), strings.Contains(errStr, "sp_set_firewall_rule"):
		return "The SQL firewall rejected this client. Re-run so the deployer IP rule is refreshed, or add the rule in the portal"
	case strings.Contains(errStr, "Login failed for user"):
		return "The SQL admin credentials in the stack state no longer match the server. Check the 'sqlAdminPassword' output"
	case strings.Contains(errStr, "Cannot connect to the Docker daemon"):
		return "Start Docker; the Keycloak image is built locally before it is pushed"
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "i/o timeout"):
		return "The operation timed out. Check network connectivity and try again"
	case strings.Contains(errStr, "connection refused"), strings.Contains(errStr, "no such host"):
		return "Unable to connect. Check your network and the resource's provisioning state"
	}

	return ""
}

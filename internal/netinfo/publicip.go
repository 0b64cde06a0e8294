// Package netinfo resolves the deployer's public IP address. The SQL server
// firewall rule for the machine running the deployment is derived from it.
package netinfo

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	kcerrors "github.com/systmms/keycloak-aca/internal/errors"
	"github.com/systmms/keycloak-aca/internal/logging"
)

const (
	defaultEndpoint = "https://api.ipify.org"
	requestTimeout  = 10 * time.Second
	maxBodySize     = 64
)

// Resolver queries a plain-text public-IP echo endpoint.
type Resolver struct {
	endpoint string
	client   *http.Client
	logger   *logging.Logger
}

// NewResolver creates a resolver against the default endpoint.
func NewResolver(logger *logging.Logger) *Resolver {
	return &Resolver{
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: requestTimeout},
		logger:   logger,
	}
}

// NewResolverWithEndpoint creates a resolver against a custom endpoint.
// Used by tests.
func NewResolverWithEndpoint(endpoint string, logger *logging.Logger) *Resolver {
	return &Resolver{
		endpoint: endpoint,
		client:   &http.Client{Timeout: requestTimeout},
		logger:   logger,
	}
}

// PublicIP returns the caller's public IP address as seen from the internet.
func (r *Resolver) PublicIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("building public IP request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", kcerrors.UserError{
			Message:    "failed to look up the deployer's public IP",
			Suggestion: "Check outbound connectivity, or add the SQL firewall rule for this machine manually",
			Err:        err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", kcerrors.UserError{
			Message:    fmt.Sprintf("public IP endpoint returned HTTP %d", resp.StatusCode),
			Suggestion: "Check outbound connectivity, or add the SQL firewall rule for this machine manually",
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("reading public IP response: %w", err)
	}

	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("public IP endpoint returned %q, not an IP address", ip)
	}

	r.logger.Debug("resolved deployer public IP: %s", ip)
	return ip, nil
}

package ebay

import (
	"fmt"
	"strings"
)

// ConfigError reports missing marketplace credentials. Retrying cannot
// fix it; an operator has to set the environment.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("eBay credentials not configured: missing %s", strings.Join(e.Missing, ", "))
}

// AuthError reports a rejected or failed client-credentials exchange.
type AuthError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("eBay token exchange failed: %v", e.Err)
	}
	return fmt.Sprintf("eBay token exchange failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// statusError is a non-200 answer from the search endpoint.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("eBay API returned status %d: %s", e.StatusCode, e.Body)
}

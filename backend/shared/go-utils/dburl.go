package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// IsolatedRoleName is the per-run Postgres role "<runnerID>-<runNumber>".
func IsolatedRoleName(runnerID, runNumber string) (string, error) {
	if runnerID == "" || runNumber == "" {
		return "", errors.New("runnerID and runNumber must be non-empty")
	}
	return strings.ToLower(runnerID + "-" + runNumber), nil
}

// WithIsolatedRole swaps the user of a Postgres URL for the per-run role so
// concurrent CI runs each get their own schema. The password, host and query
// parameters are kept.
func WithIsolatedRole(baseURL, runnerID, runNumber string) (string, error) {
	role, err := IsolatedRoleName(runnerID, runNumber)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DB URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("invalid DB URL: unsupported scheme %q", u.Scheme)
	}

	password, _ := u.User.Password()
	u.User = url.UserPassword(role, password)
	return u.String(), nil
}

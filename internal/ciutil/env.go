// Package ciutil detects the test environment so integration tests can
// skip cleanly when their backing services are absent.
package ciutil

import (
	"os"
	"testing"
)

// Environment variable names shared by tests and CI configuration.
const (
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvTestDBURL     = "HANZI_TEST_DB_URL"
	EnvDatabaseURL   = "DATABASE_URL"
)

// IsCI reports whether the tests are running under a CI provider.
func IsCI() bool {
	return os.Getenv(EnvCI) != "" || os.Getenv(EnvGitHubActions) != ""
}

// TestDatabaseURL returns the PostgreSQL URL integration tests should use.
// HANZI_TEST_DB_URL wins over DATABASE_URL so a local dev database is never
// clobbered by accident.
func TestDatabaseURL() string {
	if url := os.Getenv(EnvTestDBURL); url != "" {
		return url
	}
	return os.Getenv(EnvDatabaseURL)
}

// RequireDatabase skips t unless a test database is configured. In CI a
// missing database is a setup error, so the test fails instead.
func RequireDatabase(t *testing.T) string {
	t.Helper()
	url := TestDatabaseURL()
	if url == "" {
		if IsCI() {
			t.Fatalf("CI run without %s or %s set", EnvTestDBURL, EnvDatabaseURL)
		}
		t.Skipf("set %s to run database integration tests", EnvTestDBURL)
	}
	return url
}

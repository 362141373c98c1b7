package testutil

import (
	"os"
	"testing"
)

const (
	// Test credential environment variables
	TestEbayClientID     = "TEST_EBAY_CLIENT_ID"
	TestEbayClientSecret = "TEST_EBAY_CLIENT_SECRET"

	// Default test values when environment variables are not set
	DefaultTestClientID = "test-client-id"
	DefaultTestSecret   = "test-client-secret"
)

// configKeys lists every variable the config loader reads
var configKeys = []string{
	"EBAY_CLIENT_ID",
	"EBAY_CLIENT_SECRET",
	"EBAY_SANDBOX",
	"EBAY_MARKETPLACE_ID",
	"EBAY_REUSE_TOKEN",
	"EBAY_RATE_LIMIT",
	"PRICING_CACHE_SIZE",
	"PRICING_NEGATIVE_CACHE",
	"PRICING_SALES_LIMIT",
	"LOG_LEVEL",
	"LISTEN_ADDR",
	"CACHE_STATS_SCHEDULE",
}

// GetTestToken returns a test value from environment variable or default
func GetTestToken(envVar, defaultValue string) string {
	if token := os.Getenv(envVar); token != "" {
		return token
	}
	return defaultValue
}

// GetTestEbayClientID returns the client ID used by credentialed tests
func GetTestEbayClientID() string {
	return GetTestToken(TestEbayClientID, DefaultTestClientID)
}

// GetTestEbayClientSecret returns the client secret used by credentialed tests
func GetTestEbayClientSecret() string {
	return GetTestToken(TestEbayClientSecret, DefaultTestSecret)
}

// ClearConfigEnv blanks every config variable for the duration of the test,
// so a developer's shell or .env cannot leak into assertions.
func ClearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// SetEnv sets several environment variables for the duration of the test
func SetEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for key, value := range vars {
		t.Setenv(key, value)
	}
}

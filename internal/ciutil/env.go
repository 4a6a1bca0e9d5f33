package ciutil

import (
	"log/slog"
	"net/url"
	"os"
	"testing"
)

// Environment variable names used across the codebase.
const (
	// CI environment detection variables
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"

	// Service endpoints for integration tests, preferred name first
	EnvTestDatabaseURL = "NOTIFIER_TEST_DB_URL"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvRedisURL        = "REDIS_URL"
	EnvAMQPURL         = "AMQP_URL"
)

// IsCI reports whether tests are running under a CI provider.
func IsCI() bool {
	return os.Getenv(EnvCI) != "" ||
		os.Getenv(EnvGitHubActions) != "" ||
		os.Getenv(EnvGitLabCI) != "" ||
		os.Getenv(EnvJenkinsURL) != ""
}

// GetEnvWithFallbacks returns the first non-empty variable in envVars, or
// defaultValue. Using anything but the first name logs a warning.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		if val := os.Getenv(envVar); val != "" {
			if i > 0 && logger != nil {
				logger.Warn("Using fallback environment variable",
					"used_var", envVar,
					"preferred_var", envVars[0],
					"value", MaskSensitiveValue(val),
				)
			}
			return val
		}
	}
	return defaultValue
}

// MaskSensitiveValue hides the password of a connection URL.
func MaskSensitiveValue(value string) string {
	u, err := url.Parse(value)
	if err != nil || u.User == nil {
		return value
	}
	return u.Redacted()
}

// RequireDatabaseURL returns the Postgres URL for integration tests, or skips t.
func RequireDatabaseURL(t testing.TB) string {
	return requireService(t, "postgres", EnvTestDatabaseURL, EnvDatabaseURL)
}

// RequireRedisURL returns the Redis URL for integration tests, or skips t.
func RequireRedisURL(t testing.TB) string {
	return requireService(t, "redis", EnvRedisURL)
}

// RequireAMQPURL returns the broker URL for integration tests, or skips t.
func RequireAMQPURL(t testing.TB) string {
	return requireService(t, "rabbitmq", EnvAMQPURL)
}

func requireService(t testing.TB, name string, envVars ...string) string {
	t.Helper()
	if val := GetEnvWithFallbacks(envVars, "", nil); val != "" {
		return val
	}
	if IsCI() {
		t.Fatalf("%s integration tests require %s in CI", name, envVars[0])
	}
	t.Skipf("%s not set, skipping %s integration test", envVars[0], name)
	return ""
}

// Package ciutil resolves the external services integration tests run
// against, and detects whether they are running in CI.
//
// Integration tests call the Test*URL helpers and skip when the service is not
// configured locally. In CI a missing service is a failure rather than a skip,
// so a misconfigured pipeline cannot pass by skipping everything.
package ciutil

//go:build integration

// Package testdb provides utilities for database integration tests.
//
// Each test runs in its own transaction that is rolled back when the test
// completes, so tests can share one database without cleaning up after
// themselves:
//
//	func TestSiteStore(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        siteStore := postgres.NewPostgresSiteStore(tx)
//	        ...
//	    })
//	}
//
// Tests are skipped when no test database is configured; see ciutil.
package testdb

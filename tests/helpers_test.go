// Package tests contains integration tests for repositories and flows that run against Postgres
package tests

import (
	"errors"
	"testing"

	testingutil "github.com/amirphl/pesquisa-campo/testing"
	"github.com/stretchr/testify/require"
)

// withDB runs fn against a fresh database and skips the test when Postgres is not reachable
func withDB(t *testing.T, fn func(db *testingutil.TestDB)) {
	t.Helper()

	err := testingutil.TestWithDB(func(db *testingutil.TestDB) error {
		fn(db)
		return nil
	})

	var unavailable *testingutil.ErrDatabaseUnavailable
	if errors.As(err, &unavailable) {
		t.Skipf("skipping integration test: %v", err)
	}
	require.NoError(t, err)
}

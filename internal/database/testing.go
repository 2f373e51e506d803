package database

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestDSNEnv names the variable holding the integration test database.
const TestDSNEnv = "HOOPSLINES_TEST_DATABASE_DSN"

// SetupTestDB connects to the integration test database, skipping the test
// when TestDSNEnv is unset. The pool is closed when the test ends.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv(TestDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set, skipping database test", TestDSNEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDBFromDSN(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

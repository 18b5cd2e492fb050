// Package db helps integration tests connect to, and clean up, a real Postgres
// database.
package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Shyp/joblog/models/db"
	"github.com/Shyp/joblog/setup"
)

// Tables lists every table TruncateTables empties, children first.
var Tables = []string{"analyses", "vacancies"}

// SetUp connects to DATABASE_URL, skipping the test if it is not set.
func SetUp(t testing.TB) *db.Pool {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pool, err := setup.DB(context.Background(), setup.DefaultConnection, 10, 0, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	return pool
}

// TruncateTables deletes all records from the database. name is added to the
// statement as a comment so it shows up in pg_stat_activity.
func TruncateTables(ctx context.Context, pool *db.Pool, name string) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	q := fmt.Sprintf("-- %s\n", name)
	for _, table := range Tables {
		q += fmt.Sprintf("DELETE FROM %s;\n", table)
	}
	_, err = conn.ExecContext(ctx, q)
	return err
}

// TearDown deletes all records from the database and closes pool, and marks
// the test as failed if this was unsuccessful.
func TearDown(t testing.TB, pool *db.Pool) {
	t.Helper()
	defer pool.Close()
	if pool.Connected(context.Background()) {
		if err := TruncateTables(context.Background(), pool, t.Name()); err != nil {
			t.Fatal(err)
		}
	}
}

package test_setup

import (
	"context"
	"fmt"
	"testing"

	"github.com/Shyp/joblog/setup"
	"github.com/Shyp/joblog/test"
	testdb "github.com/Shyp/joblog/test/db"
)

func TestActiveQueries(t *testing.T) {
	pool := testdb.SetUp(t)
	defer testdb.TearDown(t, pool)
	count, err := setup.GetActiveQueries(context.Background(), pool)
	test.AssertNotError(t, err, "")
	test.Assert(t, count >= 1, fmt.Sprintf("Expected count >= 1, got %d", count))
}

func TestPGXDriver(t *testing.T) {
	pool := testdb.SetUp(t)
	defer testdb.TearDown(t, pool)
	connector := &setup.DatabaseURLConnector{Driver: "pgx"}
	pgx, err := setup.DB(context.Background(), connector, 2, 0, 0)
	test.AssertNotError(t, err, "")
	defer pgx.Close()
	test.Assert(t, pgx.Connected(context.Background()), "expected the pgx pool to connect")
}

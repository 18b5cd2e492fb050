// Delete every row from the joblog tables in DATABASE_URL. Meant for test
// databases.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/Shyp/joblog/setup"
	testdb "github.com/Shyp/joblog/test/db"
)

func main() {
	ctx := context.Background()
	pool, err := setup.DB(ctx, setup.DefaultConnection, 1, 0, 5*time.Second)
	if err != nil {
		slog.Error("could not connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := testdb.TruncateTables(ctx, pool, "joblog-truncate-tables"); err != nil {
		slog.Error("could not truncate tables", "err", err)
		os.Exit(1)
	}
}

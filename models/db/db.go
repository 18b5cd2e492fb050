// Definitions of database objects, and logic for connecting to the database.
package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Shyp/joblog/models/dberr"
)

// DefaultAcquireTimeout bounds how long Acquire waits for a free connection
// when the Pool does not set its own timeout.
const DefaultAcquireTimeout = 5 * time.Second

var errNoPool = errors.New("no database connection pool configured")

// Connector establishes a connection pool to a Postgres database with the
// given maximum number of open connections.
type Connector interface {
	Connect(dbConns int) (*sql.DB, error)
}

// Pool is the shared, bounded set of store connections. It is safe for
// concurrent use; copies of a *Pool all refer to the same connections.
type Pool struct {
	DB *sql.DB

	// AcquireTimeout is the longest Acquire will block waiting for a
	// connection. Zero means DefaultAcquireTimeout, a negative value waits
	// until the caller's context is done.
	AcquireTimeout time.Duration
}

// NewPool wraps conn. acquireTimeout follows the rules of
// Pool.AcquireTimeout.
func NewPool(conn *sql.DB, acquireTimeout time.Duration) *Pool {
	return &Pool{
		DB:             conn,
		AcquireTimeout: acquireTimeout,
	}
}

// Acquire checks out one connection from the pool. The caller must Close the
// returned connection to hand it back, whatever the outcome of the work done
// with it.
//
// Any failure to check out a connection (timeout waiting for a free one,
// closed pool, refused dial) is returned as a *dberr.Error of kind
// KindResourceExhaustion.
func (p *Pool) Acquire(ctx context.Context) (*sql.Conn, error) {
	if p == nil || p.DB == nil {
		return nil, dberr.Exhausted(errNoPool)
	}
	timeout := p.AcquireTimeout
	if timeout == 0 {
		timeout = DefaultAcquireTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	conn, err := p.DB.Conn(ctx)
	if err != nil {
		return nil, dberr.Exhausted(err)
	}
	return conn, nil
}

// Connected returns true if the pool can reach the database.
func (p *Pool) Connected(ctx context.Context) bool {
	if p == nil || p.DB == nil {
		return false
	}
	return p.DB.PingContext(ctx) == nil
}

// Stats returns database/sql's statistics for the pool.
func (p *Pool) Stats() sql.DBStats {
	if p == nil || p.DB == nil {
		return sql.DBStats{}
	}
	return p.DB.Stats()
}

// Close closes every connection in the pool.
func (p *Pool) Close() error {
	if p == nil || p.DB == nil {
		return nil
	}
	return p.DB.Close()
}

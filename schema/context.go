package schema

import (
	"context"

	"github.com/Shyp/joblog/models/db"
)

// Context is built once per incoming operation and makes the shared pool
// reachable to the root resolvers. It holds no other state.
type Context struct {
	Pool *db.Pool
}

// NewContext returns a Context for one operation against pool.
func NewContext(pool *db.Pool) *Context {
	return &Context{Pool: pool}
}

type contextKey struct{}

// WithContext attaches c to ctx.
func WithContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ContextFrom returns the Context attached to ctx, or nil.
func ContextFrom(ctx context.Context) *Context {
	c, _ := ctx.Value(contextKey{}).(*Context)
	return c
}

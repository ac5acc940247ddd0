// Package dbctx carries a request context and an optional open transaction
// from services down to repositories.
package dbctx

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

func (c Context) context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// WithTx returns c bound to tx.
func (c Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: c.Ctx, Tx: tx}
}

// Conn returns the open transaction, or db when there is none, scoped to Ctx.
func (c Context) Conn(db *gorm.DB) *gorm.DB {
	conn := c.Tx
	if conn == nil {
		conn = db
	}
	return conn.WithContext(c.context())
}

// Transaction runs fn inside a transaction on db. When c already carries one,
// fn joins it and opts are ignored.
func (c Context) Transaction(db *gorm.DB, fn func(Context) error, opts ...*sql.TxOptions) error {
	if c.Tx != nil {
		return fn(c)
	}
	return db.WithContext(c.context()).Transaction(func(tx *gorm.DB) error {
		return fn(c.WithTx(tx))
	}, opts...)
}

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNoTx is returned by RequireTx when the context carries no transaction.
var ErrNoTx = errors.New("database: operation requires an open transaction")

type txKey struct{}

// TxManager opens sqlx transactions and carries them through the context so that
// repositories called from the same unit of work share one transaction.
type TxManager struct {
	db          *sqlx.DB
	dialect     Dialect
	lockTimeout time.Duration
}

type TxOption func(*TxManager)

// WithLockTimeout bounds how long a transaction waits on row locks (Postgres only).
func WithLockTimeout(d time.Duration) TxOption {
	return func(m *TxManager) {
		m.lockTimeout = d
	}
}

func NewTxManager(db *sqlx.DB, opts ...TxOption) *TxManager {
	m := &TxManager{db: db, dialect: DialectOf(db)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithinTx runs fn inside a transaction. A nested call joins the outer transaction.
// The transaction commits when fn returns nil and rolls back otherwise, including on panic.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if m.dialect == Postgres && m.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func TxFromContext(ctx context.Context) (*sqlx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx, ok
}

// Executor returns the transaction bound to ctx, or db when there is none.
func Executor(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db
}

// RequireTx returns the transaction bound to ctx or ErrNoTx.
func RequireTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, ok := TxFromContext(ctx)
	if !ok {
		return nil, ErrNoTx
	}
	return tx, nil
}

// Package store implements the domain repositories over database/sql. The
// postgres and sqlite subpackages open the database, run migrations and
// supply the Dialect that papers over their SQL differences.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Carig-G/the-bench/internal/domain"
)

// Dialect describes what differs between the supported databases.
type Dialect struct {
	Name string
	// Rebind rewrites ? placeholders into the driver's syntax. Nil keeps them.
	Rebind func(query string) string
	// LockClause is appended to row reads that must block concurrent writers.
	LockClause string
	// Like is the case-insensitive LIKE operator.
	Like string
	// TagList aggregates t.tag into a comma separated string.
	TagList string
	// PairIncrement is the upsert expression bumping an existing pair's count.
	PairIncrement string
	// IsUniqueViolation reports whether err is a unique constraint failure.
	IsUniqueViolation func(err error) bool
}

func (d *Dialect) bind(query string) string {
	if d.Rebind == nil {
		return query
	}
	return d.Rebind(query)
}

// conflict turns a unique violation into a domain conflict carrying msg and
// wraps everything else with op.
func (d *Dialect) conflict(err error, op, msg string) error {
	if d.IsUniqueViolation != nil && d.IsUniqueViolation(err) {
		return domain.Wrap(domain.KindConflict, msg, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type conn struct {
	q querier
	d *Dialect
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.q.ExecContext(ctx, c.d.bind(query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.q.QueryContext(ctx, c.d.bind(query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.d.bind(query), args...)
}

// execOne runs an update that must touch exactly one row.
func (c conn) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := c.exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// repos binds every repository to the same connection or transaction.
type repos struct {
	c conn
}

func (r repos) Users() domain.UserRepository                 { return &UserRepo{r.c} }
func (r repos) Conversations() domain.ConversationRepository { return &ConversationRepo{r.c} }
func (r repos) Participants() domain.ParticipantRepository   { return &ParticipantRepo{r.c} }
func (r repos) Messages() domain.MessageRepository           { return &MessageRepo{r.c} }
func (r repos) Queue() domain.QueueRepository                { return &QueueRepo{r.c} }
func (r repos) Tags() domain.TagRepository                   { return &TagRepo{r.c} }
func (r repos) Payments() domain.PaymentRepository           { return &PaymentRepo{r.c} }
func (r repos) Pairs() domain.PairRepository                 { return &PairRepo{r.c} }

// DB is a domain.Store backed by a *sql.DB.
type DB struct {
	repos
	db      *sql.DB
	dialect *Dialect
}

var _ domain.Store = (*DB)(nil)

// New wraps an open database.
func New(db *sql.DB, dialect *Dialect) *DB {
	return &DB{
		repos:   repos{c: conn{q: db, d: dialect}},
		db:      db,
		dialect: dialect,
	}
}

// SQL exposes the underlying handle for health checks.
func (s *DB) SQL() *sql.DB { return s.db }

// Dialect returns the dialect name.
func (s *DB) Dialect() string { return s.dialect.Name }

func (s *DB) InTx(ctx context.Context, fn func(tx domain.Repos) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(repos{c: conn{q: tx, d: s.dialect}}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *DB) Close() error {
	return s.db.Close()
}

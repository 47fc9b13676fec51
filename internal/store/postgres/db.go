package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Carig-G/the-bench/internal/store"
)

const uniqueViolation = "23505"

// Dialect is the PostgreSQL flavour of the shared repositories.
var Dialect = &store.Dialect{
	Name:          "postgres",
	Rebind:        rebind,
	LockClause:    " FOR UPDATE",
	Like:          "ILIKE",
	TagList:       "string_agg(t.tag, ',')",
	PairIncrement: "conversation_pairs.conversation_count + 1",
	IsUniqueViolation: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
	},
}

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// New opens, migrates and wraps the database as a domain store.
func New(ctx context.Context, dsn string) (*store.DB, error) {
	db, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store.New(db, Dialect), nil
}

// rebind turns ? placeholders into $1, $2, ...
func rebind(query string) string {
	var (
		b strings.Builder
		n int
	)
	b.Grow(len(query) + 16)
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Migrate runs idempotent DDL migrations for the bench schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL    PRIMARY KEY,
			username      VARCHAR(50)  UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			moniker       VARCHAR(100) NOT NULL,
			display_name  TEXT,
			contact_info  TEXT,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS conversations (
			id          BIGSERIAL    PRIMARY KEY,
			title       VARCHAR(255) NOT NULL,
			topic       VARCHAR(255) NOT NULL,
			description TEXT,
			status      VARCHAR(20)  NOT NULL DEFAULT 'matching'
				CHECK (status IN ('matching', 'active', 'completed', 'archived')),
			creator_id  BIGINT       NOT NULL REFERENCES users(id),
			created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS conversation_participants (
			id              BIGSERIAL   PRIMARY KEY,
			conversation_id BIGINT      NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			user_id         BIGINT      NOT NULL REFERENCES users(id),
			role            VARCHAR(20) NOT NULL CHECK (role IN ('initiator', 'responder')),
			joined_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (conversation_id, user_id),
			UNIQUE (conversation_id, role)
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id                BIGSERIAL   PRIMARY KEY,
			conversation_id   BIGINT      NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			author_id         BIGINT      NOT NULL REFERENCES users(id),
			parent_message_id BIGINT      REFERENCES messages(id) ON DELETE SET NULL,
			content           TEXT        NOT NULL,
			is_public         BOOLEAN     NOT NULL DEFAULT FALSE,
			message_order     INTEGER     NOT NULL,
			is_deleted        BOOLEAN     NOT NULL DEFAULT FALSE,
			is_edited         BOOLEAN     NOT NULL DEFAULT FALSE,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (conversation_id, message_order)
		)`,

		`CREATE TABLE IF NOT EXISTS matching_queue (
			id              BIGSERIAL    PRIMARY KEY,
			user_id         BIGINT       NOT NULL REFERENCES users(id),
			conversation_id BIGINT       NOT NULL UNIQUE REFERENCES conversations(id) ON DELETE CASCADE,
			topic           VARCHAR(255) NOT NULL,
			description     TEXT,
			matched         BOOLEAN      NOT NULL DEFAULT FALSE,
			created_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS conversation_pairs (
			id                      BIGSERIAL   PRIMARY KEY,
			user_a_id               BIGINT      NOT NULL REFERENCES users(id),
			user_b_id               BIGINT      NOT NULL REFERENCES users(id),
			conversation_count      INTEGER     NOT NULL DEFAULT 0,
			revealed                BOOLEAN     NOT NULL DEFAULT FALSE,
			user_a_reveal_requested BOOLEAN     NOT NULL DEFAULT FALSE,
			user_b_reveal_requested BOOLEAN     NOT NULL DEFAULT FALSE,
			revealed_at             TIMESTAMPTZ,
			created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (user_a_id < user_b_id),
			UNIQUE (user_a_id, user_b_id)
		)`,

		`CREATE TABLE IF NOT EXISTS pair_conversations (
			id              BIGSERIAL   PRIMARY KEY,
			pair_id         BIGINT      NOT NULL REFERENCES conversation_pairs(id) ON DELETE CASCADE,
			conversation_id BIGINT      NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (pair_id, conversation_id)
		)`,

		`CREATE TABLE IF NOT EXISTS payments (
			id              BIGSERIAL   PRIMARY KEY,
			conversation_id BIGINT      NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			reader_id       BIGINT      NOT NULL REFERENCES users(id),
			amount_cents    BIGINT      NOT NULL CHECK (amount_cents > 0),
			payment_type    VARCHAR(20) NOT NULL DEFAULT 'single',
			status          VARCHAR(20) NOT NULL DEFAULT 'completed'
				CHECK (status IN ('pending', 'completed', 'refunded')),
			reference       VARCHAR(64) NOT NULL UNIQUE,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (conversation_id, reader_id)
		)`,

		`CREATE TABLE IF NOT EXISTS conversation_tags (
			id              BIGSERIAL   PRIMARY KEY,
			conversation_id BIGINT      NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			tag             VARCHAR(50) NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (conversation_id, tag)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_conversations_status ON conversations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_creator ON conversations(creator_id)`,
		`CREATE INDEX IF NOT EXISTS idx_conv_participants_user ON conversation_participants(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, message_order)`,
		`CREATE INDEX IF NOT EXISTS idx_matching_queue_open ON matching_queue(matched, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_pairs_user_a ON conversation_pairs(user_a_id)`,
		`CREATE INDEX IF NOT EXISTS idx_pairs_user_b ON conversation_pairs(user_b_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_reader ON payments(reader_id)`,
		`CREATE INDEX IF NOT EXISTS idx_conversation_tags_tag ON conversation_tags(tag, created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w\nSQL: %s", err, stmt)
		}
	}
	return nil
}

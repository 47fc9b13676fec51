package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Carig-G/the-bench/internal/store"
)

// Dialect is the SQLite flavour of the shared repositories. SQLite has no
// row locks; writers are serialized by starting every transaction IMMEDIATE.
var Dialect = &store.Dialect{
	Name:          "sqlite",
	Like:          "LIKE",
	TagList:       "group_concat(t.tag, ',')",
	PairIncrement: "conversation_count + 1",
	IsUniqueViolation: func(err error) bool {
		var se *msqlite.Error
		if !errors.As(err, &se) {
			return false
		}
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	},
}

const connParams = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate&_time_format=sqlite"

// Open opens a SQLite database with the given DSN. An in-memory DSN is
// pinned to a single connection, since every connection would otherwise see
// its own empty database.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", dsn+sep+connParams)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
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

// Migrate runs idempotent DDL for the bench schema. Time columns are declared
// DATETIME so the driver hands them back as time.Time.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			moniker VARCHAR(100) NOT NULL,
			display_name TEXT,
			contact_info TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id INTEGER PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			topic VARCHAR(255) NOT NULL,
			description TEXT,
			status VARCHAR(20) NOT NULL DEFAULT 'matching'
				CHECK (status IN ('matching', 'active', 'completed', 'archived')),
			creator_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (creator_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS conversation_participants (
			id INTEGER PRIMARY KEY,
			conversation_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			role VARCHAR(20) NOT NULL CHECK (role IN ('initiator', 'responder')),
			joined_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (conversation_id, user_id),
			UNIQUE (conversation_id, role),
			FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY,
			conversation_id INTEGER NOT NULL,
			author_id INTEGER NOT NULL,
			parent_message_id INTEGER,
			content TEXT NOT NULL,
			is_public BOOLEAN NOT NULL DEFAULT 0,
			message_order INTEGER NOT NULL,
			is_deleted BOOLEAN NOT NULL DEFAULT 0,
			is_edited BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (conversation_id, message_order),
			FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE,
			FOREIGN KEY (author_id) REFERENCES users(id),
			FOREIGN KEY (parent_message_id) REFERENCES messages(id) ON DELETE SET NULL
		);`,
		`CREATE TABLE IF NOT EXISTS matching_queue (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			conversation_id INTEGER NOT NULL UNIQUE,
			topic VARCHAR(255) NOT NULL,
			description TEXT,
			matched BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS conversation_pairs (
			id INTEGER PRIMARY KEY,
			user_a_id INTEGER NOT NULL,
			user_b_id INTEGER NOT NULL,
			conversation_count INTEGER NOT NULL DEFAULT 0,
			revealed BOOLEAN NOT NULL DEFAULT 0,
			user_a_reveal_requested BOOLEAN NOT NULL DEFAULT 0,
			user_b_reveal_requested BOOLEAN NOT NULL DEFAULT 0,
			revealed_at DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CHECK (user_a_id < user_b_id),
			UNIQUE (user_a_id, user_b_id),
			FOREIGN KEY (user_a_id) REFERENCES users(id),
			FOREIGN KEY (user_b_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS pair_conversations (
			id INTEGER PRIMARY KEY,
			pair_id INTEGER NOT NULL,
			conversation_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (pair_id, conversation_id),
			FOREIGN KEY (pair_id) REFERENCES conversation_pairs(id) ON DELETE CASCADE,
			FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS payments (
			id INTEGER PRIMARY KEY,
			conversation_id INTEGER NOT NULL,
			reader_id INTEGER NOT NULL,
			amount_cents INTEGER NOT NULL CHECK (amount_cents > 0),
			payment_type VARCHAR(20) NOT NULL DEFAULT 'single',
			status VARCHAR(20) NOT NULL DEFAULT 'completed'
				CHECK (status IN ('pending', 'completed', 'refunded')),
			reference VARCHAR(64) NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (conversation_id, reader_id),
			FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE,
			FOREIGN KEY (reader_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS conversation_tags (
			id INTEGER PRIMARY KEY,
			conversation_id INTEGER NOT NULL,
			tag VARCHAR(50) NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (conversation_id, tag),
			FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_status ON conversations(status);`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_creator ON conversations(creator_id);`,
		`CREATE INDEX IF NOT EXISTS idx_conv_participants_user ON conversation_participants(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, message_order);`,
		`CREATE INDEX IF NOT EXISTS idx_matching_queue_open ON matching_queue(matched, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_pairs_user_a ON conversation_pairs(user_a_id);`,
		`CREATE INDEX IF NOT EXISTS idx_pairs_user_b ON conversation_pairs(user_b_id);`,
		`CREATE INDEX IF NOT EXISTS idx_payments_reader ON payments(reader_id);`,
		`CREATE INDEX IF NOT EXISTS idx_conversation_tags_tag ON conversation_tags(tag, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

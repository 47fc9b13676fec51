package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Carig-G/the-bench/internal/domain"
)

type MessageRepo struct {
	conn
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

const messageColumns = `m.id, m.conversation_id, m.author_id, m.parent_message_id, m.content, m.is_public, m.message_order, m.is_deleted, m.is_edited, m.created_at`

const messageViewSelect = `SELECT ` + messageColumns + `, u.moniker, cp.role
	FROM messages m
	JOIN users u ON u.id = m.author_id
	LEFT JOIN conversation_participants cp
		ON cp.conversation_id = m.conversation_id AND cp.user_id = m.author_id`

func messageDest(m *domain.Message) []any {
	return []any{
		&m.ID,
		&m.ConversationID,
		&m.AuthorID,
		&m.ParentMessageID,
		&m.Content,
		&m.IsPublic,
		&m.MessageOrder,
		&m.IsDeleted,
		&m.IsEdited,
		&m.CreatedAt,
	}
}

func scanMessageView(sc interface{ Scan(...any) error }) (*domain.MessageView, error) {
	v := &domain.MessageView{}
	var role sql.NullString
	if err := sc.Scan(append(messageDest(&v.Message), &v.AuthorMoniker, &role)...); err != nil {
		return nil, err
	}
	if role.Valid {
		r := domain.ParticipantRole(role.String)
		v.AuthorRole = &r
	}
	return v, nil
}

func (r *MessageRepo) Count(ctx context.Context, conversationID int64) (int, error) {
	var n int
	err := r.queryRow(ctx, `SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (conversation_id, author_id, parent_message_id, content, is_public, message_order, is_deleted, is_edited, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := r.queryRow(ctx, query,
		m.ConversationID,
		m.AuthorID,
		m.ParentMessageID,
		m.Content,
		m.IsPublic,
		m.MessageOrder,
		m.IsDeleted,
		m.IsEdited,
		m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return r.d.conflict(err, "insert message", "Message order already taken, retry")
	}
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	m := &domain.Message{}
	err := r.queryRow(ctx, `SELECT `+messageColumns+` FROM messages m WHERE m.id = ?`, id).Scan(messageDest(m)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

func (r *MessageRepo) GetView(ctx context.Context, id int64) (*domain.MessageView, error) {
	v, err := scanMessageView(r.queryRow(ctx, messageViewSelect+` WHERE m.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message view: %w", err)
	}
	return v, nil
}

func (r *MessageRepo) UpdateContent(ctx context.Context, id int64, content string) error {
	return r.execOne(ctx, "update message",
		`UPDATE messages SET content = ?, is_edited = TRUE WHERE id = ? AND is_deleted = FALSE`, content, id)
}

// SoftDelete clears the content but keeps the row so that message_order
// values are never handed out twice.
func (r *MessageRepo) SoftDelete(ctx context.Context, id int64) error {
	return r.execOne(ctx, "delete message",
		`UPDATE messages SET content = '', is_deleted = TRUE WHERE id = ?`, id)
}

func (r *MessageRepo) List(ctx context.Context, conversationID int64, publicOnly bool) ([]*domain.MessageView, error) {
	query := messageViewSelect + ` WHERE m.conversation_id = ?`
	if publicOnly {
		query += ` AND m.is_public = TRUE`
	}
	query += ` ORDER BY m.message_order ASC`

	rows, err := r.query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var res []*domain.MessageView
	for rows.Next() {
		v, err := scanMessageView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Carig-G/the-bench/internal/domain"
)

type ConversationRepo struct {
	conn
}

var _ domain.ConversationRepository = (*ConversationRepo)(nil)

const conversationColumns = `c.id, c.title, c.topic, c.description, c.status, c.creator_id, c.created_at, c.updated_at`

// summarySelect is shared by every listing that returns ConversationSummary.
// Callers join users u on the creator.
func (c conn) summarySelect() string {
	return `SELECT ` + conversationColumns + `, u.moniker,
		(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id AND m.is_deleted = FALSE) AS message_count,
		(SELECT COUNT(*) FROM payments p WHERE p.conversation_id = c.id AND p.status = 'completed') AS reader_count,
		(SELECT ` + c.d.TagList + ` FROM conversation_tags t WHERE t.conversation_id = c.id) AS tags`
}

const openingPostColumn = `(SELECT m.content FROM messages m WHERE m.conversation_id = c.id AND m.message_order = 0 AND m.is_deleted = FALSE)`

func summaryDest(s *domain.ConversationSummary, tags *sql.NullString) []any {
	return []any{
		&s.ID,
		&s.Title,
		&s.Topic,
		&s.Description,
		&s.Status,
		&s.CreatorID,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.CreatorMoniker,
		&s.MessageCount,
		&s.ReaderCount,
		tags,
	}
}

func splitTags(tags sql.NullString) []string {
	if !tags.Valid || tags.String == "" {
		return []string{}
	}
	out := strings.Split(tags.String, ",")
	sort.Strings(out)
	return out
}

func (r *ConversationRepo) Create(ctx context.Context, c *domain.Conversation) error {
	query := `
		INSERT INTO conversations (title, topic, description, status, creator_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := r.queryRow(ctx, query,
		c.Title,
		c.Topic,
		c.Description,
		string(c.Status),
		c.CreatorID,
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	return r.get(ctx, id, "")
}

func (r *ConversationRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Conversation, error) {
	return r.get(ctx, id, r.d.LockClause)
}

func (r *ConversationRepo) get(ctx context.Context, id int64, lock string) (*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations c WHERE c.id = ?` + lock
	c := &domain.Conversation{}
	err := r.queryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Title,
		&c.Topic,
		&c.Description,
		&c.Status,
		&c.CreatorID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}

func (r *ConversationRepo) UpdateStatus(ctx context.Context, id int64, status domain.ConversationStatus, at time.Time) error {
	return r.execOne(ctx, "update conversation status",
		`UPDATE conversations SET status = ?, updated_at = ? WHERE id = ?`, string(status), at, id)
}

func (r *ConversationRepo) Touch(ctx context.Context, id int64, at time.Time) error {
	return r.execOne(ctx, "touch conversation",
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, at, id)
}

func (r *ConversationRepo) Summary(ctx context.Context, id int64) (*domain.ConversationSummary, error) {
	query := r.summarySelect() + `
		FROM conversations c
		JOIN users u ON u.id = c.creator_id
		WHERE c.id = ?
	`
	s := &domain.ConversationSummary{}
	var tags sql.NullString
	err := r.queryRow(ctx, query, id).Scan(summaryDest(s, &tags)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("conversation summary: %w", err)
	}
	s.Tags = splitTags(tags)
	return s, nil
}

func (r *ConversationRepo) List(ctx context.Context, f domain.ConversationFilter) ([]*domain.ConversationSummary, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != nil {
		where = append(where, "c.status = ?")
		args = append(args, string(*f.Status))
	}
	if f.Topic != "" {
		where = append(where, "c.topic "+r.d.Like+" ?")
		args = append(args, "%"+f.Topic+"%")
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM conversations c`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count conversations: %w", err)
	}

	query := r.summarySelect() + `
		FROM conversations c
		JOIN users u ON u.id = c.creator_id` + clause + `
		ORDER BY c.updated_at DESC, c.id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	res, err := scanSummaries(rows, false)
	if err != nil {
		return nil, 0, err
	}
	return res, total, nil
}

func (r *ConversationRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.ConversationSummary, error) {
	query := r.summarySelect() + `, cp.role, lm.content, lm.created_at
		FROM conversation_participants cp
		JOIN conversations c ON c.id = cp.conversation_id
		JOIN users u ON u.id = c.creator_id
		LEFT JOIN messages lm ON lm.id = (
			SELECT m2.id FROM messages m2
			WHERE m2.conversation_id = c.id AND m2.is_deleted = FALSE
			ORDER BY m2.message_order DESC
			LIMIT 1
		)
		WHERE cp.user_id = ?
		ORDER BY CASE c.status
			WHEN 'active' THEN 1
			WHEN 'matching' THEN 2
			WHEN 'completed' THEN 3
			ELSE 4
		END, c.updated_at DESC, c.id DESC
	`
	rows, err := r.query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user conversations: %w", err)
	}
	defer rows.Close()

	var res []*domain.ConversationSummary
	for rows.Next() {
		s := &domain.ConversationSummary{}
		var (
			tags   sql.NullString
			role   domain.ParticipantRole
			last   sql.NullString
			lastAt sql.NullTime
		)
		dest := append(summaryDest(s, &tags), &role, &last, &lastAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan user conversation: %w", err)
		}
		s.Tags = splitTags(tags)
		s.MyRole = &role
		if last.Valid {
			s.LastMessage = &last.String
		}
		if lastAt.Valid {
			s.LastMessageAt = &lastAt.Time
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r *ConversationRepo) Browse(ctx context.Context, f domain.BrowseFilter) ([]*domain.ConversationSummary, error) {
	where := []string{"c.status = ?"}
	args := []any{string(f.Status)}
	if f.ExcludeCreator != 0 {
		where = append(where, "c.creator_id <> ?")
		args = append(args, f.ExcludeCreator)
	}
	if f.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM conversation_tags ft WHERE ft.conversation_id = c.id AND ft.tag = ?)")
		args = append(args, f.Tag)
	}
	order := "c.created_at DESC, c.id DESC"
	if f.ByReaders {
		order = "reader_count DESC, c.updated_at DESC, c.id DESC"
	}

	query := r.summarySelect() + `, ` + openingPostColumn + ` AS opening_post
		FROM conversations c
		JOIN users u ON u.id = c.creator_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ` + order + `
		LIMIT ?
	`
	rows, err := r.query(ctx, query, append(args, f.Limit)...)
	if err != nil {
		return nil, fmt.Errorf("browse conversations: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows, true)
}

func scanSummaries(rows *sql.Rows, withOpening bool) ([]*domain.ConversationSummary, error) {
	var res []*domain.ConversationSummary
	for rows.Next() {
		s := &domain.ConversationSummary{}
		var (
			tags    sql.NullString
			opening sql.NullString
		)
		dest := summaryDest(s, &tags)
		if withOpening {
			dest = append(dest, &opening)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan conversation summary: %w", err)
		}
		s.Tags = splitTags(tags)
		if opening.Valid {
			s.OpeningPost = &opening.String
		}
		res = append(res, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation summaries: %w", err)
	}
	return res, nil
}

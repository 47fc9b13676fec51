package store

import (
	"context"
	"fmt"

	"github.com/Carig-G/the-bench/internal/domain"
)

type QueueRepo struct {
	conn
}

var _ domain.QueueRepository = (*QueueRepo)(nil)

func (r *QueueRepo) Enqueue(ctx context.Context, e *domain.QueueEntry) error {
	query := `
		INSERT INTO matching_queue (user_id, conversation_id, topic, description, matched, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := r.queryRow(ctx, query, e.UserID, e.ConversationID, e.Topic, e.Description, e.Matched, e.CreatedAt).Scan(&e.ID)
	if err != nil {
		return r.d.conflict(err, "enqueue conversation", "Conversation is already queued")
	}
	return nil
}

func (r *QueueRepo) MarkMatched(ctx context.Context, conversationID int64) error {
	return r.execOne(ctx, "mark matched",
		`UPDATE matching_queue SET matched = TRUE WHERE conversation_id = ?`, conversationID)
}

func (r *QueueRepo) Browse(ctx context.Context, f domain.QueueFilter) ([]*domain.QueueItem, error) {
	query := `
		SELECT c.id, c.title, c.topic, c.description, c.created_at, u.moniker, ` + openingPostColumn + `
		FROM matching_queue q
		JOIN conversations c ON c.id = q.conversation_id
		JOIN users u ON u.id = q.user_id
		WHERE q.matched = FALSE AND c.status = 'matching' AND q.user_id <> ?`
	args := []any{f.ExcludeUser}
	if f.Topic != "" {
		query += ` AND q.topic ` + r.d.Like + ` ?`
		args = append(args, "%"+f.Topic+"%")
	}
	query += ` ORDER BY q.created_at DESC, q.id DESC LIMIT ?`
	args = append(args, f.Limit)

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("browse queue: %w", err)
	}
	defer rows.Close()

	var res []*domain.QueueItem
	for rows.Next() {
		it := &domain.QueueItem{}
		if err := rows.Scan(
			&it.ID,
			&it.Title,
			&it.Topic,
			&it.Description,
			&it.CreatedAt,
			&it.CreatorMoniker,
			&it.OpeningMessage,
		); err != nil {
			return nil, fmt.Errorf("scan queue item: %w", err)
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

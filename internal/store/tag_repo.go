package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Carig-G/the-bench/internal/domain"
)

type TagRepo struct {
	conn
}

var _ domain.TagRepository = (*TagRepo)(nil)

func (r *TagRepo) Add(ctx context.Context, conversationID int64, tags []string, at time.Time) error {
	query := `
		INSERT INTO conversation_tags (conversation_id, tag, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (conversation_id, tag) DO NOTHING
	`
	for _, tag := range tags {
		if _, err := r.exec(ctx, query, conversationID, tag, at); err != nil {
			return fmt.Errorf("insert tag %q: %w", tag, err)
		}
	}
	return nil
}

func (r *TagRepo) Trending(ctx context.Context, since time.Time, limit int) ([]domain.TagCount, error) {
	query := `
		SELECT t.tag, COUNT(DISTINCT t.conversation_id) AS conversation_count
		FROM conversation_tags t
		JOIN conversations c ON c.id = t.conversation_id
		WHERE t.created_at >= ? AND c.status IN ('matching', 'active')
		GROUP BY t.tag
		ORDER BY conversation_count DESC, t.tag ASC
		LIMIT ?
	`
	rows, err := r.query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("trending tags: %w", err)
	}
	defer rows.Close()

	res := []domain.TagCount{}
	for rows.Next() {
		var tc domain.TagCount
		if err := rows.Scan(&tc.Tag, &tc.ConversationCount); err != nil {
			return nil, fmt.Errorf("scan tag count: %w", err)
		}
		res = append(res, tc)
	}
	return res, rows.Err()
}

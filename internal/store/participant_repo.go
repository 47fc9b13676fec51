package store

import (
	"context"
	"fmt"

	"github.com/Carig-G/the-bench/internal/domain"
)

type ParticipantRepo struct {
	conn
}

var _ domain.ParticipantRepository = (*ParticipantRepo)(nil)

func (r *ParticipantRepo) Add(ctx context.Context, p *domain.ConversationParticipant) error {
	query := `
		INSERT INTO conversation_participants (conversation_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := r.exec(ctx, query, p.ConversationID, p.UserID, string(p.Role), p.JoinedAt); err != nil {
		return r.d.conflict(err, "add participant", "Conversation already has this participant or role")
	}
	return nil
}

func (r *ParticipantRepo) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM conversation_participants
			WHERE conversation_id = ? AND user_id = ?
		)
	`
	var ok bool
	if err := r.queryRow(ctx, query, conversationID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return ok, nil
}

func (r *ParticipantRepo) List(ctx context.Context, conversationID int64) ([]*domain.ParticipantView, error) {
	query := `
		SELECT cp.user_id, cp.role, u.moniker, cp.joined_at
		FROM conversation_participants cp
		JOIN users u ON u.id = cp.user_id
		WHERE cp.conversation_id = ?
		ORDER BY CASE cp.role WHEN 'initiator' THEN 0 ELSE 1 END
	`
	rows, err := r.query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var res []*domain.ParticipantView
	for rows.Next() {
		p := &domain.ParticipantView{}
		if err := rows.Scan(&p.UserID, &p.Role, &p.Moniker, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *ParticipantRepo) CountForUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.queryRow(ctx, `SELECT COUNT(*) FROM conversation_participants WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count user conversations: %w", err)
	}
	return n, nil
}

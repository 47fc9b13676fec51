package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Carig-G/the-bench/internal/domain"
)

type PairRepo struct {
	conn
}

var _ domain.PairRepository = (*PairRepo)(nil)

const pairColumns = `cp.id, cp.user_a_id, cp.user_b_id, cp.conversation_count, cp.revealed,
	cp.user_a_reveal_requested, cp.user_b_reveal_requested, cp.revealed_at, cp.created_at, cp.updated_at`

func pairDest(p *domain.ConversationPair) []any {
	return []any{
		&p.ID,
		&p.UserAID,
		&p.UserBID,
		&p.ConversationCount,
		&p.Revealed,
		&p.UserARevealRequested,
		&p.UserBRevealRequested,
		&p.RevealedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
}

// Upsert is a single statement so that concurrent joins by the same two
// users can neither create duplicate pairs nor lose an increment.
func (r *PairRepo) Upsert(ctx context.Context, key domain.PairKey, at time.Time) (*domain.ConversationPair, error) {
	query := `
		INSERT INTO conversation_pairs (user_a_id, user_b_id, conversation_count, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT (user_a_id, user_b_id) DO UPDATE
		SET conversation_count = ` + r.d.PairIncrement + `, updated_at = excluded.updated_at
		RETURNING id
	`
	var id int64
	if err := r.queryRow(ctx, query, key.Low(), key.High(), at, at).Scan(&id); err != nil {
		return nil, fmt.Errorf("upsert pair: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *PairRepo) LinkConversation(ctx context.Context, pairID, conversationID int64, at time.Time) error {
	query := `
		INSERT INTO pair_conversations (pair_id, conversation_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (pair_id, conversation_id) DO NOTHING
	`
	if _, err := r.exec(ctx, query, pairID, conversationID, at); err != nil {
		return fmt.Errorf("link pair conversation: %w", err)
	}
	return nil
}

func (r *PairRepo) GetByID(ctx context.Context, id int64) (*domain.ConversationPair, error) {
	return r.get(ctx, `SELECT `+pairColumns+` FROM conversation_pairs cp WHERE cp.id = ?`, id)
}

func (r *PairRepo) GetForUpdate(ctx context.Context, id int64) (*domain.ConversationPair, error) {
	return r.get(ctx, `SELECT `+pairColumns+` FROM conversation_pairs cp WHERE cp.id = ?`+r.d.LockClause, id)
}

func (r *PairRepo) GetByKey(ctx context.Context, key domain.PairKey) (*domain.ConversationPair, error) {
	return r.get(ctx, `SELECT `+pairColumns+` FROM conversation_pairs cp WHERE cp.user_a_id = ? AND cp.user_b_id = ?`,
		key.Low(), key.High())
}

func (r *PairRepo) get(ctx context.Context, query string, args ...any) (*domain.ConversationPair, error) {
	p := &domain.ConversationPair{}
	err := r.queryRow(ctx, query, args...).Scan(pairDest(p)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pair: %w", err)
	}
	return p, nil
}

func (r *PairRepo) SetRevealRequested(ctx context.Context, id int64, sideA bool, at time.Time) error {
	column := "user_b_reveal_requested"
	if sideA {
		column = "user_a_reveal_requested"
	}
	return r.execOne(ctx, "request reveal",
		`UPDATE conversation_pairs SET `+column+` = TRUE, updated_at = ? WHERE id = ? AND revealed = FALSE`, at, id)
}

func (r *PairRepo) Reveal(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE conversation_pairs
		SET user_a_reveal_requested = TRUE,
		    user_b_reveal_requested = TRUE,
		    revealed = TRUE,
		    revealed_at = ?,
		    updated_at = ?
		WHERE id = ? AND revealed = FALSE
	`
	err := r.execOne(ctx, "reveal pair", query, at, at, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Conflict("This pair has already been revealed")
	}
	return err
}

// ListForUser never selects partner identity columns for unrevealed pairs.
func (r *PairRepo) ListForUser(ctx context.Context, userID int64, scope domain.PairScope, threshold int) ([]*domain.PairView, error) {
	query := `SELECT ` + pairColumns + `, pu.id, pu.moniker,
		CASE WHEN cp.revealed = TRUE THEN pu.username END,
		CASE WHEN cp.revealed = TRUE THEN pu.display_name END,
		CASE WHEN cp.revealed = TRUE THEN pu.contact_info END
		FROM conversation_pairs cp
		JOIN users pu ON pu.id = CASE WHEN cp.user_a_id = ? THEN cp.user_b_id ELSE cp.user_a_id END
		WHERE (cp.user_a_id = ? OR cp.user_b_id = ?)`
	args := []any{userID, userID, userID}

	switch scope {
	case domain.PairScopeEligible:
		query += ` AND cp.revealed = FALSE AND cp.conversation_count >= ?
			ORDER BY cp.conversation_count DESC, cp.updated_at DESC, cp.id DESC`
		args = append(args, threshold)
	case domain.PairScopeRevealed:
		query += ` AND cp.revealed = TRUE
			ORDER BY cp.revealed_at DESC, cp.id DESC`
	default:
		query += ` ORDER BY cp.conversation_count DESC, cp.updated_at DESC, cp.id DESC`
	}

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}
	defer rows.Close()

	res := []*domain.PairView{}
	for rows.Next() {
		v := &domain.PairView{}
		dest := append(pairDest(&v.ConversationPair),
			&v.PartnerID,
			&v.PartnerMoniker,
			&v.PartnerUsername,
			&v.PartnerDisplayName,
			&v.PartnerContactInfo,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		v.IRequestedReveal = v.Requested(userID)
		v.PartnerRequestedReveal = v.Requested(v.PartnerID)
		res = append(res, v)
	}
	return res, rows.Err()
}

func (r *PairRepo) Conversations(ctx context.Context, pairID int64) ([]*domain.ConversationSummary, error) {
	query := r.summarySelect() + `
		FROM pair_conversations pc
		JOIN conversations c ON c.id = pc.conversation_id
		JOIN users u ON u.id = c.creator_id
		WHERE pc.pair_id = ?
		ORDER BY c.created_at DESC, c.id DESC
	`
	rows, err := r.query(ctx, query, pairID)
	if err != nil {
		return nil, fmt.Errorf("pair conversations: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows, false)
}

func (r *PairRepo) Stats(ctx context.Context, userID int64, threshold int) (*domain.PairStats, error) {
	query := `
		SELECT COUNT(*),
			MAX(CASE WHEN revealed = FALSE AND conversation_count < ? THEN conversation_count END),
			COUNT(CASE WHEN revealed = FALSE AND conversation_count >= ? THEN 1 END)
		FROM conversation_pairs
		WHERE user_a_id = ? OR user_b_id = ?
	`
	var (
		st      domain.PairStats
		closest sql.NullInt64
	)
	if err := r.queryRow(ctx, query, threshold, threshold, userID, userID).Scan(&st.UniquePartners, &closest, &st.PendingReveals); err != nil {
		return nil, fmt.Errorf("pair stats: %w", err)
	}
	if closest.Valid {
		n := int(closest.Int64)
		st.MaxBelowThreshold = &n
	}
	return &st, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Carig-G/the-bench/internal/domain"
)

type PaymentRepo struct {
	conn
}

var _ domain.PaymentRepository = (*PaymentRepo)(nil)

const paymentColumns = `p.id, p.conversation_id, p.reader_id, p.amount_cents, p.payment_type, p.status, p.reference, p.created_at`

func paymentDest(p *domain.Payment) []any {
	return []any{
		&p.ID,
		&p.ConversationID,
		&p.ReaderID,
		&p.AmountCents,
		&p.PaymentType,
		&p.Status,
		&p.Reference,
		&p.CreatedAt,
	}
}

// Create inserts the payment unless the reader already has one for the
// conversation, in which case it returns a conflict.
func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	query := `
		INSERT INTO payments (conversation_id, reader_id, amount_cents, payment_type, status, reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (conversation_id, reader_id) DO NOTHING
		RETURNING id
	`
	err := r.queryRow(ctx, query,
		p.ConversationID,
		p.ReaderID,
		p.AmountCents,
		p.PaymentType,
		string(p.Status),
		p.Reference,
		p.CreatedAt,
	).Scan(&p.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Conflict("You have already paid for this conversation")
	}
	if err != nil {
		return r.d.conflict(err, "insert payment", "You have already paid for this conversation")
	}
	return nil
}

func (r *PaymentRepo) Exists(ctx context.Context, conversationID, readerID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE conversation_id = ? AND reader_id = ?)`
	var ok bool
	if err := r.queryRow(ctx, query, conversationID, readerID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check payment: %w", err)
	}
	return ok, nil
}

func (r *PaymentRepo) GetCompleted(ctx context.Context, conversationID, readerID int64) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p
		WHERE p.conversation_id = ? AND p.reader_id = ? AND p.status = 'completed'`
	p := &domain.Payment{}
	err := r.queryRow(ctx, query, conversationID, readerID).Scan(paymentDest(p)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

func (r *PaymentRepo) History(ctx context.Context, readerID int64) ([]*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + `, c.title, c.topic
		FROM payments p
		JOIN conversations c ON c.id = p.conversation_id
		WHERE p.reader_id = ?
		ORDER BY p.created_at DESC, p.id DESC`
	rows, err := r.query(ctx, query, readerID)
	if err != nil {
		return nil, fmt.Errorf("payment history: %w", err)
	}
	defer rows.Close()

	res := []*domain.PaymentRecord{}
	for rows.Next() {
		rec := &domain.PaymentRecord{}
		dest := append(paymentDest(&rec.Payment), &rec.ConversationTitle, &rec.ConversationTopic)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

func (r *PaymentRepo) Revenue(ctx context.Context, conversationID int64) (int, int64, error) {
	query := `
		SELECT COUNT(*), CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT)
		FROM payments
		WHERE conversation_id = ? AND status = 'completed'
	`
	var (
		readers int
		total   int64
	)
	if err := r.queryRow(ctx, query, conversationID).Scan(&readers, &total); err != nil {
		return 0, 0, fmt.Errorf("conversation revenue: %w", err)
	}
	return readers, total, nil
}

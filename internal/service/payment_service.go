package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/Carig-G/the-bench/internal/domain"
)

// PaymentService records one-time unlocks. No money moves; a payment row
// stands for a successful external charge identified by its reference.
type PaymentService struct {
	Deps
}

func NewPaymentService(deps Deps) *PaymentService {
	return &PaymentService{Deps: deps.withDefaults()}
}

type CreatePaymentInput struct {
	ConversationID int64
	// Amount is in currency units; nil charges the default price.
	Amount *float64
}

// Receipt is a payment with its amount in currency units.
type Receipt struct {
	*domain.Payment
	Amount float64 `json:"amount"`
}

type HistoryItem struct {
	*domain.PaymentRecord
	Amount float64 `json:"amount"`
}

func toUnits(cents int64) float64 { return float64(cents) / 100 }

func (s *PaymentService) Create(ctx context.Context, readerID int64, in CreatePaymentInput) (*Receipt, error) {
	if in.ConversationID <= 0 {
		return nil, domain.Validation("Conversation ID is required")
	}
	cents := s.Rules.DefaultPriceCents
	if in.Amount != nil {
		if math.IsNaN(*in.Amount) || math.IsInf(*in.Amount, 0) {
			return nil, domain.Validation("Amount must be a number")
		}
		if *in.Amount*100 > float64(domain.MaxPriceCents) {
			return nil, domain.Validation(fmt.Sprintf("Amount must be at most %.2f", toUnits(domain.MaxPriceCents)))
		}
		cents = int64(math.Round(*in.Amount * 100))
	}
	if cents <= 0 {
		return nil, domain.Validation("Amount must be positive")
	}

	conv, err := s.Store.Conversations().GetByID(ctx, in.ConversationID)
	if err != nil {
		return nil, notFound(err, "Conversation not found")
	}
	participant, err := s.Store.Participants().IsParticipant(ctx, conv.ID, readerID)
	if err != nil {
		return nil, err
	}
	if participant {
		return nil, domain.Conflict("Participants do not need to pay to read the conversation")
	}
	// The unique (conversation, reader) constraint is the real guard; this
	// only spares a round trip in the common case.
	paid, err := s.Store.Payments().Exists(ctx, conv.ID, readerID)
	if err != nil {
		return nil, err
	}
	if paid {
		return nil, domain.Conflict("You have already paid for this conversation")
	}

	p := &domain.Payment{
		ConversationID: conv.ID,
		ReaderID:       readerID,
		AmountCents:    cents,
		PaymentType:    domain.PaymentTypeSingle,
		Status:         domain.PaymentCompleted,
		Reference:      uuid.NewString(),
		CreatedAt:      s.now(),
	}
	if err := s.Store.Payments().Create(ctx, p); err != nil {
		return nil, err
	}
	s.Logger.InfoContext(ctx, "payment recorded",
		"payment_id", p.ID,
		"conversation_id", p.ConversationID,
		"amount_cents", p.AmountCents,
	)
	return &Receipt{Payment: p, Amount: toUnits(p.AmountCents)}, nil
}

type PaymentCheck struct {
	HasPaid bool     `json:"has_paid"`
	Payment *Receipt `json:"payment"`
}

func (s *PaymentService) Check(ctx context.Context, conversationID, readerID int64) (*PaymentCheck, error) {
	p, err := s.Store.Payments().GetCompleted(ctx, conversationID, readerID)
	if errors.Is(err, domain.ErrNotFound) {
		return &PaymentCheck{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &PaymentCheck{HasPaid: true, Payment: &Receipt{Payment: p, Amount: toUnits(p.AmountCents)}}, nil
}

func (s *PaymentService) History(ctx context.Context, readerID int64) ([]HistoryItem, error) {
	records, err := s.Store.Payments().History(ctx, readerID)
	if err != nil {
		return nil, err
	}
	items := make([]HistoryItem, 0, len(records))
	for _, r := range records {
		items = append(items, HistoryItem{PaymentRecord: r, Amount: toUnits(r.AmountCents)})
	}
	return items, nil
}

type Revenue struct {
	TotalReaders      int     `json:"total_readers"`
	TotalRevenue      float64 `json:"total_revenue"`
	YourShare         float64 `json:"your_share"`
	TotalRevenueCents int64   `json:"total_revenue_cents"`
}

// Revenue splits a conversation's completed payments evenly between its
// two participants.
func (s *PaymentService) Revenue(ctx context.Context, conversationID, requesterID int64) (*Revenue, error) {
	if _, err := s.Store.Conversations().GetByID(ctx, conversationID); err != nil {
		return nil, notFound(err, "Conversation not found")
	}
	ok, err := s.Store.Participants().IsParticipant(ctx, conversationID, requesterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Authorization("Only participants can view revenue")
	}
	readers, cents, err := s.Store.Payments().Revenue(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return &Revenue{
		TotalReaders:      readers,
		TotalRevenue:      toUnits(cents),
		YourShare:         float64(cents) / 200,
		TotalRevenueCents: cents,
	}, nil
}

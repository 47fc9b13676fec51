package service

import (
	"context"
	"fmt"

	"github.com/Carig-G/the-bench/internal/domain"
)

// PairService tracks how often two users have shared a conversation and
// runs the mutual-consent reveal.
type PairService struct {
	Deps
	users *UserService
}

func NewPairService(deps Deps, users *UserService) *PairService {
	return &PairService{Deps: deps.withDefaults(), users: users}
}

// RecordPairing counts one more shared conversation for a and b. It must be
// called with the repositories of the transaction that performs the join.
func (s *PairService) RecordPairing(ctx context.Context, tx domain.Repos, a, b, conversationID int64) (*domain.ConversationPair, error) {
	key, err := domain.NewPairKey(a, b)
	if err != nil {
		return nil, err
	}
	now := s.now()
	pair, err := tx.Pairs().Upsert(ctx, key, now)
	if err != nil {
		return nil, fmt.Errorf("record pairing: %w", err)
	}
	if err := tx.Pairs().LinkConversation(ctx, pair.ID, conversationID, now); err != nil {
		return nil, err
	}
	return pair, nil
}

// Identity is what a revealed pair learns about each other.
type Identity struct {
	UserID      int64   `json:"user_id"`
	Username    string  `json:"username"`
	Moniker     string  `json:"moniker"`
	DisplayName *string `json:"display_name"`
	ContactInfo *string `json:"contact_info"`
}

type RevealResult struct {
	Pair       *domain.PairView `json:"pair"`
	Revealed   bool             `json:"revealed"`
	Message    string           `json:"message"`
	Identities []Identity       `json:"identities,omitempty"`
}

// RequestReveal records userID's consent. When the partner has already
// consented the pair is revealed in the same transaction.
func (s *PairService) RequestReveal(ctx context.Context, pairID, userID int64) (*RevealResult, error) {
	var (
		pair    *domain.ConversationPair
		members [2]*domain.User
	)
	err := s.Store.InTx(ctx, func(tx domain.Repos) error {
		p, err := tx.Pairs().GetForUpdate(ctx, pairID)
		if err != nil {
			return notFound(err, "Pair not found")
		}
		if !p.Has(userID) {
			return domain.Authorization("Not authorized to request reveal for this pair")
		}
		if p.Revealed {
			return domain.Conflict("This pair has already been revealed")
		}
		if p.ConversationCount < s.Rules.RevealThreshold {
			return domain.Threshold(fmt.Sprintf("Need %d more conversations to reveal", s.Rules.RevealThreshold-p.ConversationCount))
		}

		now := s.now()
		switch {
		case p.Requested(p.Partner(userID)):
			if err := tx.Pairs().Reveal(ctx, p.ID, now); err != nil {
				return err
			}
		case !p.Requested(userID):
			if err := tx.Pairs().SetRevealRequested(ctx, p.ID, p.UserAID == userID, now); err != nil {
				return fmt.Errorf("set reveal request: %w", err)
			}
		}

		if pair, err = tx.Pairs().GetByID(ctx, p.ID); err != nil {
			return err
		}
		for i, id := range []int64{pair.UserAID, pair.UserBID} {
			if members[i], err = tx.Users().GetByID(ctx, id); err != nil {
				return fmt.Errorf("load pair member %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	partner := members[0]
	if partner.ID == userID {
		partner = members[1]
	}
	view, err := s.view(pair, partner, userID)
	if err != nil {
		return nil, err
	}

	if !pair.Revealed {
		return &RevealResult{
			Pair:    view,
			Message: "Reveal requested! Waiting for your conversation partner to agree.",
		}, nil
	}

	s.Logger.InfoContext(ctx, "pair revealed", "pair_id", pair.ID)
	res := &RevealResult{
		Pair:     view,
		Revealed: true,
		Message:  "Both users agreed to reveal! You can now see each other's contact info.",
	}
	for _, u := range members {
		name, contact, err := s.users.identity(u)
		if err != nil {
			return nil, err
		}
		res.Identities = append(res.Identities, Identity{
			UserID:      u.ID,
			Username:    u.Username,
			Moniker:     u.Moniker,
			DisplayName: name,
			ContactInfo: contact,
		})
	}
	return res, nil
}

// view projects pair for viewerID. Partner identity is only attached once
// the pair is revealed.
func (s *PairService) view(pair *domain.ConversationPair, partner *domain.User, viewerID int64) (*domain.PairView, error) {
	v := &domain.PairView{
		ConversationPair:       *pair,
		State:                  pair.State(s.Rules.RevealThreshold),
		PartnerID:              partner.ID,
		PartnerMoniker:         partner.Moniker,
		IRequestedReveal:       pair.Requested(viewerID),
		PartnerRequestedReveal: pair.Requested(partner.ID),
	}
	if !pair.Revealed {
		return v, nil
	}
	name, contact, err := s.users.identity(partner)
	if err != nil {
		return nil, err
	}
	username := partner.Username
	v.PartnerUsername = &username
	v.PartnerDisplayName = name
	v.PartnerContactInfo = contact
	return v, nil
}

func (s *PairService) List(ctx context.Context, userID int64) ([]*domain.PairView, error) {
	return s.list(ctx, userID, domain.PairScopeAll)
}

func (s *PairService) RevealEligible(ctx context.Context, userID int64) ([]*domain.PairView, error) {
	return s.list(ctx, userID, domain.PairScopeEligible)
}

func (s *PairService) Revealed(ctx context.Context, userID int64) ([]*domain.PairView, error) {
	return s.list(ctx, userID, domain.PairScopeRevealed)
}

func (s *PairService) list(ctx context.Context, userID int64, scope domain.PairScope) ([]*domain.PairView, error) {
	pairs, err := s.Store.Pairs().ListForUser(ctx, userID, scope, s.Rules.RevealThreshold)
	if err != nil {
		return nil, err
	}
	for _, p := range pairs {
		p.State = p.ConversationPair.State(s.Rules.RevealThreshold)
		if !p.Revealed {
			p.PartnerUsername, p.PartnerDisplayName, p.PartnerContactInfo = nil, nil, nil
			continue
		}
		if p.PartnerDisplayName, err = s.users.enc.DecryptOptional(p.PartnerDisplayName); err != nil {
			return nil, fmt.Errorf("decrypt partner %d display name: %w", p.PartnerID, err)
		}
		if p.PartnerContactInfo, err = s.users.enc.DecryptOptional(p.PartnerContactInfo); err != nil {
			return nil, fmt.Errorf("decrypt partner %d contact info: %w", p.PartnerID, err)
		}
	}
	return pairs, nil
}

// Conversations lists the conversations that built a pair. Members only.
func (s *PairService) Conversations(ctx context.Context, pairID, userID int64) ([]*domain.ConversationSummary, error) {
	pair, err := s.Store.Pairs().GetByID(ctx, pairID)
	if err != nil {
		return nil, notFound(err, "Pair not found")
	}
	if !pair.Has(userID) {
		return nil, domain.Authorization("Not authorized to view this pair")
	}
	return s.Store.Pairs().Conversations(ctx, pairID)
}

type UserStats struct {
	TotalConversations int `json:"total_conversations"`
	UniquePartners     int `json:"unique_partners"`
	ClosestToReveal    int `json:"closest_to_reveal"`
	PendingReveals     int `json:"pending_reveals"`
}

func (s *PairService) Stats(ctx context.Context, userID int64) (*UserStats, error) {
	total, err := s.Store.Participants().CountForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ps, err := s.Store.Pairs().Stats(ctx, userID, s.Rules.RevealThreshold)
	if err != nil {
		return nil, err
	}
	closest := s.Rules.RevealThreshold
	if ps.MaxBelowThreshold != nil {
		closest = s.Rules.RevealThreshold - *ps.MaxBelowThreshold
	}
	return &UserStats{
		TotalConversations: total,
		UniquePartners:     ps.UniquePartners,
		ClosestToReveal:    closest,
		PendingReveals:     ps.PendingReveals,
	}, nil
}

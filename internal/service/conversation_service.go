package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Carig-G/the-bench/internal/domain"
)

const (
	defaultPageSize     = 20
	maxPageSize         = 100
	queueBrowseLimit    = 50
	openBenchesLimit    = 6
	activeBrowseLimit   = 10
	defaultTrendingTags = 15
	maxTrendingTags     = 30
	trendingWindow      = 7 * 24 * time.Hour
)

// TrendingCache memoizes the trending-tag aggregate.
type TrendingCache interface {
	Get(ctx context.Context, limit int) ([]domain.TagCount, bool, error)
	Set(ctx context.Context, limit int, tags []domain.TagCount) error
}

// ConversationService owns starting, joining and moving conversations
// through their lifecycle, plus the read-only listings.
type ConversationService struct {
	Deps
	messages *MessageService
	pairs    *PairService
	trending TrendingCache
}

func NewConversationService(deps Deps, messages *MessageService, pairs *PairService, trending TrendingCache) *ConversationService {
	return &ConversationService{
		Deps:     deps.withDefaults(),
		messages: messages,
		pairs:    pairs,
		trending: trending,
	}
}

type StartInput struct {
	Title          string
	Topic          string
	Description    *string
	OpeningMessage string
	Tags           []string
}

// NormalizeTags trims and lowercases tags, drops empty and duplicate ones and
// keeps at most domain.MaxTags.
func NormalizeTags(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, domain.MaxTags)
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		if utf8.RuneCountInString(t) > domain.MaxTagLength {
			return nil, domain.Validation(fmt.Sprintf("Tags must be under %d characters", domain.MaxTagLength))
		}
		if strings.Contains(t, ",") {
			return nil, domain.Validation("Tags cannot contain commas")
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == domain.MaxTags {
			break
		}
	}
	return out, nil
}

func (s *ConversationService) Start(ctx context.Context, creatorID int64, in StartInput) (*domain.Conversation, error) {
	title := strings.TrimSpace(in.Title)
	topic := strings.TrimSpace(in.Topic)
	opening := strings.TrimSpace(in.OpeningMessage)
	if title == "" || topic == "" || opening == "" {
		return nil, domain.Validation("Title, topic, and opening message are required")
	}
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return nil, domain.Validation(fmt.Sprintf("Title must be under %d characters", domain.MaxTitleLength))
	}
	if utf8.RuneCountInString(topic) > domain.MaxTitleLength {
		return nil, domain.Validation(fmt.Sprintf("Topic must be under %d characters", domain.MaxTitleLength))
	}
	if _, err := validateContent(opening); err != nil {
		return nil, err
	}
	tags, err := NormalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	var description *string
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			description = &d
		}
	}

	now := s.now()
	conv := &domain.Conversation{
		Title:       title,
		Topic:       topic,
		Description: description,
		Status:      domain.StatusMatching,
		CreatorID:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = s.Store.InTx(ctx, func(tx domain.Repos) error {
		if err := tx.Conversations().Create(ctx, conv); err != nil {
			return err
		}
		if err := tx.Participants().Add(ctx, &domain.ConversationParticipant{
			ConversationID: conv.ID,
			UserID:         creatorID,
			Role:           domain.RoleInitiator,
			JoinedAt:       now,
		}); err != nil {
			return err
		}
		if _, err := s.messages.append(ctx, tx, conv.ID, creatorID, opening, nil); err != nil {
			return err
		}
		if err := tx.Queue().Enqueue(ctx, &domain.QueueEntry{
			UserID:         creatorID,
			ConversationID: conv.ID,
			Topic:          topic,
			Description:    description,
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		return tx.Tags().Add(ctx, conv.ID, tags, now)
	})
	if err != nil {
		return nil, err
	}
	s.Logger.InfoContext(ctx, "conversation started", "conversation_id", conv.ID, "user_id", creatorID)
	return conv, nil
}

// Join makes userID the responder. The status flip, the queue update and the
// pair counter commit together or not at all.
func (s *ConversationService) Join(ctx context.Context, conversationID, userID int64) (*domain.Conversation, error) {
	var (
		conv *domain.Conversation
		pair *domain.ConversationPair
	)
	err := s.Store.InTx(ctx, func(tx domain.Repos) error {
		var err error
		conv, err = tx.Conversations().GetForUpdate(ctx, conversationID)
		if err != nil {
			return notFound(err, "Conversation not found")
		}
		if conv.Status != domain.StatusMatching {
			return domain.Conflict("Conversation is not available for joining")
		}
		already, err := tx.Participants().IsParticipant(ctx, conv.ID, userID)
		if err != nil {
			return err
		}
		if already {
			return domain.Conflict("You are already a participant in this conversation")
		}

		now := s.now()
		if err := tx.Participants().Add(ctx, &domain.ConversationParticipant{
			ConversationID: conv.ID,
			UserID:         userID,
			Role:           domain.RoleResponder,
			JoinedAt:       now,
		}); err != nil {
			return err
		}
		if err := tx.Conversations().UpdateStatus(ctx, conv.ID, domain.StatusActive, now); err != nil {
			return err
		}
		if err := tx.Queue().MarkMatched(ctx, conv.ID); err != nil {
			return fmt.Errorf("mark queue entry of conversation %d: %w", conv.ID, err)
		}
		if pair, err = s.pairs.RecordPairing(ctx, tx, conv.CreatorID, userID, conv.ID); err != nil {
			return err
		}
		conv.Status = domain.StatusActive
		conv.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Logger.InfoContext(ctx, "conversation joined",
		"conversation_id", conv.ID,
		"user_id", userID,
		"pair_id", pair.ID,
		"pair_count", pair.ConversationCount,
	)
	return conv, nil
}

// UpdateStatus moves a conversation forward along the transition table.
// Activation only happens through Join.
func (s *ConversationService) UpdateStatus(ctx context.Context, conversationID, userID int64, status string) (*domain.Conversation, error) {
	next, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var conv *domain.Conversation
	err = s.Store.InTx(ctx, func(tx domain.Repos) error {
		var err error
		conv, err = tx.Conversations().GetForUpdate(ctx, conversationID)
		if err != nil {
			return notFound(err, "Conversation not found")
		}
		ok, err := tx.Participants().IsParticipant(ctx, conv.ID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Authorization("Only participants can update conversation status")
		}
		if next == domain.StatusActive && conv.Status == domain.StatusMatching {
			return domain.Conflict("A conversation becomes active when a responder joins")
		}
		if !domain.CanTransition(conv.Status, next) {
			return domain.Conflict(fmt.Sprintf("Cannot change status from %s to %s", conv.Status, next))
		}
		now := s.now()
		if err := tx.Conversations().UpdateStatus(ctx, conv.ID, next, now); err != nil {
			return err
		}
		conv.Status = next
		conv.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// Detail is the full view of one conversation for a viewer.
type Detail struct {
	Conversation  *domain.ConversationSummary `json:"conversation"`
	Participants  []*domain.ParticipantView   `json:"participants"`
	Messages      []*domain.MessageView       `json:"messages"`
	HasPaid       bool                        `json:"has_paid"`
	IsParticipant bool                        `json:"is_participant"`
}

// Get returns a conversation with the messages viewerID may read; zero is
// an anonymous viewer.
func (s *ConversationService) Get(ctx context.Context, conversationID, viewerID int64) (*Detail, error) {
	summary, err := s.Store.Conversations().Summary(ctx, conversationID)
	if err != nil {
		return nil, notFound(err, "Conversation not found")
	}
	participants, err := s.Store.Participants().List(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	vis, err := s.messages.visible(ctx, s.Store, conversationID, viewerID)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Conversation:  summary,
		Participants:  participants,
		Messages:      vis.Messages,
		HasPaid:       vis.HasPaid,
		IsParticipant: vis.IsParticipant,
	}, nil
}

type ListInput struct {
	Status string
	Topic  string
	Page   int
	Limit  int
}

type ConversationPage struct {
	Conversations []*domain.ConversationSummary `json:"conversations"`
	Pagination    Pagination                    `json:"pagination"`
}

func (s *ConversationService) List(ctx context.Context, in ListInput) (*ConversationPage, error) {
	f := domain.ConversationFilter{Topic: strings.TrimSpace(in.Topic)}
	if in.Status != "" {
		st, err := domain.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		f.Status = &st
	}
	page, limit := in.Page, in.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	f.Limit, f.Offset = limit, (page-1)*limit

	convs, total, err := s.Store.Conversations().List(ctx, f)
	if err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []*domain.ConversationSummary{}
	}
	return &ConversationPage{Conversations: convs, Pagination: newPagination(page, limit, total)}, nil
}

func (s *ConversationService) Mine(ctx context.Context, userID int64) ([]*domain.ConversationSummary, error) {
	convs, err := s.Store.Conversations().ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []*domain.ConversationSummary{}
	}
	return convs, nil
}

// Queue lists conversations waiting for a responder, leaving out the
// viewer's own.
func (s *ConversationService) Queue(ctx context.Context, viewerID int64, topic string) ([]*domain.QueueItem, error) {
	items, err := s.Store.Queue().Browse(ctx, domain.QueueFilter{
		ExcludeUser: viewerID,
		Topic:       strings.TrimSpace(topic),
		Limit:       queueBrowseLimit,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.QueueItem{}
	}
	return items, nil
}

func (s *ConversationService) TrendingTags(ctx context.Context, limit int) ([]domain.TagCount, error) {
	if limit < 1 {
		limit = defaultTrendingTags
	}
	if limit > maxTrendingTags {
		limit = maxTrendingTags
	}

	if s.trending != nil {
		tags, ok, err := s.trending.Get(ctx, limit)
		if err != nil {
			s.Logger.WarnContext(ctx, "trending cache read failed", "error", err)
		} else if ok {
			return tags, nil
		}
	}

	tags, err := s.Store.Tags().Trending(ctx, s.now().Add(-trendingWindow), limit)
	if err != nil {
		return nil, err
	}
	if s.trending != nil {
		if err := s.trending.Set(ctx, limit, tags); err != nil {
			s.Logger.WarnContext(ctx, "trending cache write failed", "error", err)
		}
	}
	return tags, nil
}

type BrowseResult struct {
	OpenBenches         []*domain.ConversationSummary `json:"openBenches"`
	ActiveConversations []*domain.ConversationSummary `json:"activeConversations"`
}

// Browse returns the two lanes of the landing page, optionally narrowed to
// one tag.
func (s *ConversationService) Browse(ctx context.Context, viewerID int64, tag string) (*BrowseResult, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	open, err := s.Store.Conversations().Browse(ctx, domain.BrowseFilter{
		Status:         domain.StatusMatching,
		Tag:            tag,
		ExcludeCreator: viewerID,
		Limit:          openBenchesLimit,
	})
	if err != nil {
		return nil, err
	}
	active, err := s.Store.Conversations().Browse(ctx, domain.BrowseFilter{
		Status:    domain.StatusActive,
		Tag:       tag,
		ByReaders: true,
		Limit:     activeBrowseLimit,
	})
	if err != nil {
		return nil, err
	}
	if open == nil {
		open = []*domain.ConversationSummary{}
	}
	if active == nil {
		active = []*domain.ConversationSummary{}
	}
	return &BrowseResult{OpenBenches: open, ActiveConversations: active}, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Carig-G/the-bench/internal/domain"
)

// MessageService orders messages, classifies them as public or paywalled
// and filters what each viewer may read.
type MessageService struct {
	Deps
}

func NewMessageService(deps Deps) *MessageService {
	return &MessageService{Deps: deps.withDefaults()}
}

type PostInput struct {
	ConversationID  int64
	Content         string
	ParentMessageID *int64
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", domain.Validation("Content is required")
	}
	if utf8.RuneCountInString(content) > domain.MaxContentLength {
		return "", domain.Validation(fmt.Sprintf("Message must be under %d characters", domain.MaxContentLength))
	}
	return content, nil
}

// Post appends a message. The conversation row is locked for the duration
// of the transaction so concurrent posters get consecutive orders.
func (s *MessageService) Post(ctx context.Context, authorID int64, in PostInput) (*domain.MessageView, error) {
	if in.ConversationID <= 0 || strings.TrimSpace(in.Content) == "" {
		return nil, domain.Validation("Conversation ID and content are required")
	}
	content, err := validateContent(in.Content)
	if err != nil {
		return nil, err
	}

	var view *domain.MessageView
	err = s.Store.InTx(ctx, func(tx domain.Repos) error {
		conv, err := tx.Conversations().GetForUpdate(ctx, in.ConversationID)
		if err != nil {
			return notFound(err, "Conversation not found")
		}
		ok, err := tx.Participants().IsParticipant(ctx, conv.ID, authorID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Authorization("Only participants can add messages")
		}
		if !conv.Status.Postable() {
			return domain.Conflict("Cannot add messages to this conversation")
		}
		if in.ParentMessageID != nil {
			parent, err := tx.Messages().GetByID(ctx, *in.ParentMessageID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			if parent == nil || parent.ConversationID != conv.ID {
				return domain.Validation("Parent message must belong to the same conversation")
			}
		}

		msg, err := s.append(ctx, tx, conv.ID, authorID, content, in.ParentMessageID)
		if err != nil {
			return err
		}
		if err := tx.Conversations().Touch(ctx, conv.ID, msg.CreatedAt); err != nil {
			return err
		}
		view, err = tx.Messages().GetView(ctx, msg.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// append assigns the next order and derives visibility from it. Callers
// hold the conversation lock.
func (s *MessageService) append(ctx context.Context, tx domain.Repos, conversationID, authorID int64, content string, parent *int64) (*domain.Message, error) {
	order, err := tx.Messages().Count(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	msg := &domain.Message{
		ConversationID:  conversationID,
		AuthorID:        authorID,
		ParentMessageID: parent,
		Content:         content,
		IsPublic:        s.Rules.IsPublicOrder(order),
		MessageOrder:    order,
		CreatedAt:       s.now(),
	}
	if err := tx.Messages().Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Visibility is the outcome of the paywall for one viewer.
type Visibility struct {
	Messages      []*domain.MessageView `json:"messages"`
	IsParticipant bool                  `json:"is_participant"`
	HasPaid       bool                  `json:"has_paid"`
}

// Visible returns the messages viewerID may read; zero means anonymous.
// Participation and payment are looked up on every call.
func (s *MessageService) Visible(ctx context.Context, conversationID, viewerID int64) (*Visibility, error) {
	if _, err := s.Store.Conversations().GetByID(ctx, conversationID); err != nil {
		return nil, notFound(err, "Conversation not found")
	}
	return s.visible(ctx, s.Store, conversationID, viewerID)
}

func (s *MessageService) visible(ctx context.Context, r domain.Repos, conversationID, viewerID int64) (*Visibility, error) {
	v := &Visibility{}
	if viewerID != 0 {
		var err error
		if v.IsParticipant, err = r.Participants().IsParticipant(ctx, conversationID, viewerID); err != nil {
			return nil, err
		}
		if v.HasPaid, err = hasPaid(ctx, r, conversationID, viewerID); err != nil {
			return nil, err
		}
	}
	msgs, err := r.Messages().List(ctx, conversationID, !v.IsParticipant && !v.HasPaid)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*domain.MessageView{}
	}
	v.Messages = msgs
	return v, nil
}

func hasPaid(ctx context.Context, r domain.Repos, conversationID, readerID int64) (bool, error) {
	_, err := r.Payments().GetCompleted(ctx, conversationID, readerID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Edit replaces the content of the caller's own message.
func (s *MessageService) Edit(ctx context.Context, userID, messageID int64, content string) (*domain.MessageView, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	msg, err := s.authored(ctx, userID, messageID, "Only the author can edit this message")
	if err != nil {
		return nil, err
	}
	if msg.IsDeleted {
		return nil, domain.Conflict("Cannot edit a deleted message")
	}
	if err := s.Store.Messages().UpdateContent(ctx, messageID, content); err != nil {
		return nil, notFound(err, "Message not found")
	}
	return s.Store.Messages().GetView(ctx, messageID)
}

// Delete tombstones the caller's own message. Deleting twice is a no-op.
func (s *MessageService) Delete(ctx context.Context, userID, messageID int64) error {
	msg, err := s.authored(ctx, userID, messageID, "Only the author can delete this message")
	if err != nil {
		return err
	}
	if msg.IsDeleted {
		return nil
	}
	if err := s.Store.Messages().SoftDelete(ctx, messageID); err != nil {
		return notFound(err, "Message not found")
	}
	return nil
}

func (s *MessageService) authored(ctx context.Context, userID, messageID int64, denied string) (*domain.Message, error) {
	msg, err := s.Store.Messages().GetByID(ctx, messageID)
	if err != nil {
		return nil, notFound(err, "Message not found")
	}
	if msg.AuthorID != userID {
		return nil, domain.Authorization(denied)
	}
	return msg, nil
}

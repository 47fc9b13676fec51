package domain

import (
	"context"
	"time"
)

// Lookups that find nothing return an error matching ErrNotFound. Inserts
// that hit a uniqueness constraint return an error matching ErrConflict.

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// UpdateProfile applies a patch whose values are already encoded for storage.
	UpdateProfile(ctx context.Context, id int64, patch ProfilePatch) error
	SetMoniker(ctx context.Context, id int64, moniker string) error
}

// ConversationRepository defines persistence operations for conversations.
type ConversationRepository interface {
	Create(ctx context.Context, c *Conversation) error
	GetByID(ctx context.Context, id int64) (*Conversation, error)
	// GetForUpdate reads the conversation and holds it against concurrent
	// writers until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*Conversation, error)
	UpdateStatus(ctx context.Context, id int64, status ConversationStatus, at time.Time) error
	Touch(ctx context.Context, id int64, at time.Time) error
	Summary(ctx context.Context, id int64) (*ConversationSummary, error)
	List(ctx context.Context, f ConversationFilter) ([]*ConversationSummary, int, error)
	ListForUser(ctx context.Context, userID int64) ([]*ConversationSummary, error)
	Browse(ctx context.Context, f BrowseFilter) ([]*ConversationSummary, error)
}

// ParticipantRepository defines operations around conversation participants.
type ParticipantRepository interface {
	Add(ctx context.Context, p *ConversationParticipant) error
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
	List(ctx context.Context, conversationID int64) ([]*ParticipantView, error)
	CountForUser(ctx context.Context, userID int64) (int, error)
}

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	// Count returns how many messages, deleted ones included, the
	// conversation holds.
	Count(ctx context.Context, conversationID int64) (int, error)
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id int64) (*Message, error)
	GetView(ctx context.Context, id int64) (*MessageView, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, conversationID int64, publicOnly bool) ([]*MessageView, error)
}

// QueueRepository defines operations on the matching queue.
type QueueRepository interface {
	Enqueue(ctx context.Context, e *QueueEntry) error
	MarkMatched(ctx context.Context, conversationID int64) error
	Browse(ctx context.Context, f QueueFilter) ([]*QueueItem, error)
}

// TagRepository defines operations on conversation tags.
type TagRepository interface {
	// Add attaches tags, ignoring ones the conversation already has.
	Add(ctx context.Context, conversationID int64, tags []string, at time.Time) error
	Trending(ctx context.Context, since time.Time, limit int) ([]TagCount, error)
}

// PaymentRepository defines operations on the payment ledger.
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	Exists(ctx context.Context, conversationID, readerID int64) (bool, error)
	GetCompleted(ctx context.Context, conversationID, readerID int64) (*Payment, error)
	History(ctx context.Context, readerID int64) ([]*PaymentRecord, error)
	// Revenue sums completed payments of a conversation.
	Revenue(ctx context.Context, conversationID int64) (readers int, totalCents int64, err error)
}

// PairRepository defines operations on conversation pairs.
type PairRepository interface {
	// Upsert creates the pair with a count of one, or increments the count
	// of the existing pair, and returns the stored row.
	Upsert(ctx context.Context, key PairKey, at time.Time) (*ConversationPair, error)
	LinkConversation(ctx context.Context, pairID, conversationID int64, at time.Time) error
	GetByID(ctx context.Context, id int64) (*ConversationPair, error)
	GetByKey(ctx context.Context, key PairKey) (*ConversationPair, error)
	GetForUpdate(ctx context.Context, id int64) (*ConversationPair, error)
	SetRevealRequested(ctx context.Context, id int64, sideA bool, at time.Time) error
	// Reveal sets both request flags and the terminal revealed state.
	Reveal(ctx context.Context, id int64, at time.Time) error
	ListForUser(ctx context.Context, userID int64, scope PairScope, threshold int) ([]*PairView, error)
	Conversations(ctx context.Context, pairID int64) ([]*ConversationSummary, error)
	Stats(ctx context.Context, userID int64, threshold int) (*PairStats, error)
}

// Repos groups the repositories bound to one database handle or transaction.
type Repos interface {
	Users() UserRepository
	Conversations() ConversationRepository
	Participants() ParticipantRepository
	Messages() MessageRepository
	Queue() QueueRepository
	Tags() TagRepository
	Payments() PaymentRepository
	Pairs() PairRepository
}

// Store is the storage collaborator. InTx runs fn inside one transaction
// that is committed when fn returns nil and rolled back otherwise.
type Store interface {
	Repos
	InTx(ctx context.Context, fn func(tx Repos) error) error
	Close() error
}

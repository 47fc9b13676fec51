package domain

import "time"

// ConversationSummary is a conversation row enriched for listings. Optional
// fields are only populated by the listings that need them.
type ConversationSummary struct {
	Conversation
	CreatorMoniker string           `json:"creator_moniker"`
	MessageCount   int              `json:"message_count"`
	ReaderCount    int              `json:"reader_count"`
	OpeningPost    *string          `json:"opening_post,omitempty"`
	Tags           []string         `json:"tags,omitempty"`
	MyRole         *ParticipantRole `json:"my_role,omitempty"`
	LastMessage    *string          `json:"last_message,omitempty"`
	LastMessageAt  *time.Time       `json:"last_message_at,omitempty"`
}

// ParticipantView is a participant as shown to any viewer.
type ParticipantView struct {
	UserID   int64           `json:"user_id"`
	Role     ParticipantRole `json:"role"`
	Moniker  string          `json:"moniker"`
	JoinedAt time.Time       `json:"joined_at"`
}

// MessageView is a message with its author's public name and role.
type MessageView struct {
	Message
	AuthorMoniker string           `json:"author_moniker"`
	AuthorRole    *ParticipantRole `json:"author_role"`
}

// QueueItem is an open conversation in the matching queue.
type QueueItem struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Topic          string    `json:"topic"`
	Description    *string   `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	CreatorMoniker string    `json:"creator_moniker"`
	OpeningMessage *string   `json:"opening_message"`
}

// PaymentRecord is a payment with the conversation it unlocked.
type PaymentRecord struct {
	Payment
	ConversationTitle string `json:"conversation_title"`
	ConversationTopic string `json:"conversation_topic"`
}

// PairView is a pair from one member's perspective. PartnerDisplayName and
// PartnerContactInfo are only ever set for revealed pairs.
type PairView struct {
	ConversationPair
	State                  PairState `json:"state"`
	PartnerID              int64     `json:"partner_id"`
	PartnerMoniker         string    `json:"partner_moniker"`
	PartnerUsername        *string   `json:"partner_username,omitempty"`
	PartnerDisplayName     *string   `json:"partner_display_name,omitempty"`
	PartnerContactInfo     *string   `json:"partner_contact_info,omitempty"`
	IRequestedReveal       bool      `json:"i_requested_reveal"`
	PartnerRequestedReveal bool      `json:"partner_requested_reveal"`
}

// PairScope selects which of a user's pairs a listing returns.
type PairScope int

const (
	PairScopeAll PairScope = iota
	PairScopeEligible
	PairScopeRevealed
)

// PairStats aggregates a user's pairs.
type PairStats struct {
	UniquePartners int
	// MaxBelowThreshold is the highest count among unrevealed pairs still
	// below the threshold, or nil when there are none.
	MaxBelowThreshold *int
	PendingReveals    int
}

// ConversationFilter narrows the paginated conversation listing.
type ConversationFilter struct {
	Status *ConversationStatus
	Topic  string
	Offset int
	Limit  int
}

// BrowseFilter selects one lane of the browse page.
type BrowseFilter struct {
	Status         ConversationStatus
	Tag            string
	ExcludeCreator int64
	ByReaders      bool
	Limit          int
}

// QueueFilter narrows the matching-queue browse.
type QueueFilter struct {
	ExcludeUser int64
	Topic       string
	Limit       int
}

package domain

import "time"

// User represents an account. Username is the private login handle; Moniker
// is the generated public name. DisplayName and ContactInfo are stored
// encrypted and only leave the service layer for the owner or a revealed partner.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Moniker      string    `db:"moniker" json:"moniker"`
	DisplayName  *string   `db:"display_name" json:"-"`
	ContactInfo  *string   `db:"contact_info" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ProfilePatch carries optional profile fields; nil fields are left untouched
// and empty strings clear the stored value.
type ProfilePatch struct {
	DisplayName *string
	ContactInfo *string
}

// Empty reports whether the patch would change nothing.
func (p ProfilePatch) Empty() bool {
	return p.DisplayName == nil && p.ContactInfo == nil
}

// Conversation is a one-on-one long-form dialogue.
type Conversation struct {
	ID          int64              `db:"id" json:"id"`
	Title       string             `db:"title" json:"title"`
	Topic       string             `db:"topic" json:"topic"`
	Description *string            `db:"description" json:"description"`
	Status      ConversationStatus `db:"status" json:"status"`
	CreatorID   int64              `db:"creator_id" json:"creator_id"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}

// ConversationParticipant links a user to a conversation with a role.
type ConversationParticipant struct {
	ConversationID int64           `db:"conversation_id" json:"conversation_id"`
	UserID         int64           `db:"user_id" json:"user_id"`
	Role           ParticipantRole `db:"role" json:"role"`
	JoinedAt       time.Time       `db:"joined_at" json:"joined_at"`
}

// Message is one entry of a conversation. MessageOrder is assigned once and
// never reused; IsPublic is derived from it at creation.
type Message struct {
	ID              int64     `db:"id" json:"id"`
	ConversationID  int64     `db:"conversation_id" json:"conversation_id"`
	AuthorID        int64     `db:"author_id" json:"author_id"`
	ParentMessageID *int64    `db:"parent_message_id" json:"parent_message_id"`
	Content         string    `db:"content" json:"content"`
	IsPublic        bool      `db:"is_public" json:"is_public"`
	MessageOrder    int       `db:"message_order" json:"message_order"`
	IsDeleted       bool      `db:"is_deleted" json:"is_deleted"`
	IsEdited        bool      `db:"is_edited" json:"is_edited"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// QueueEntry is a conversation waiting for a responder.
type QueueEntry struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	ConversationID int64     `db:"conversation_id" json:"conversation_id"`
	Topic          string    `db:"topic" json:"topic"`
	Description    *string   `db:"description" json:"description"`
	Matched        bool      `db:"matched" json:"matched"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Payment is a one-time unlock of a conversation by a reader.
type Payment struct {
	ID             int64         `db:"id" json:"id"`
	ConversationID int64         `db:"conversation_id" json:"conversation_id"`
	ReaderID       int64         `db:"reader_id" json:"reader_id"`
	AmountCents    int64         `db:"amount_cents" json:"amount_cents"`
	PaymentType    string        `db:"payment_type" json:"payment_type"`
	Status         PaymentStatus `db:"status" json:"status"`
	Reference      string        `db:"reference" json:"reference"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

// ConversationPair is the symmetric relationship between two users.
// UserAID is always the smaller id.
type ConversationPair struct {
	ID                   int64      `db:"id" json:"id"`
	UserAID              int64      `db:"user_a_id" json:"user_a_id"`
	UserBID              int64      `db:"user_b_id" json:"user_b_id"`
	ConversationCount    int        `db:"conversation_count" json:"conversation_count"`
	Revealed             bool       `db:"revealed" json:"revealed"`
	UserARevealRequested bool       `db:"user_a_reveal_requested" json:"user_a_reveal_requested"`
	UserBRevealRequested bool       `db:"user_b_reveal_requested" json:"user_b_reveal_requested"`
	RevealedAt           *time.Time `db:"revealed_at" json:"revealed_at"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// Key returns the canonical key of the pair.
func (p *ConversationPair) Key() PairKey {
	return PairKey{low: p.UserAID, high: p.UserBID}
}

// Has reports whether userID is one of the two members.
func (p *ConversationPair) Has(userID int64) bool {
	return p.UserAID == userID || p.UserBID == userID
}

// Partner returns the other member's id.
func (p *ConversationPair) Partner(userID int64) int64 {
	if p.UserAID == userID {
		return p.UserBID
	}
	return p.UserAID
}

// Requested reports whether userID's side has asked for a reveal.
func (p *ConversationPair) Requested(userID int64) bool {
	if p.UserAID == userID {
		return p.UserARevealRequested
	}
	return p.UserBRevealRequested
}

// State classifies the pair relative to the reveal threshold.
func (p *ConversationPair) State(threshold int) PairState {
	switch {
	case p.Revealed:
		return PairRevealed
	case p.ConversationCount < threshold:
		return PairBuilding
	case p.UserARevealRequested || p.UserBRevealRequested:
		return PairPending
	default:
		return PairEligible
	}
}

// TagCount is a trending tag with the number of distinct conversations using it.
type TagCount struct {
	Tag               string `json:"tag"`
	ConversationCount int    `json:"conversation_count"`
}

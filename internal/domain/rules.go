package domain

import "fmt"

// ConversationStatus is the lifecycle state of a conversation.
type ConversationStatus string

const (
	StatusMatching  ConversationStatus = "matching"
	StatusActive    ConversationStatus = "active"
	StatusCompleted ConversationStatus = "completed"
	StatusArchived  ConversationStatus = "archived"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (ConversationStatus, error) {
	switch st := ConversationStatus(s); st {
	case StatusMatching, StatusActive, StatusCompleted, StatusArchived:
		return st, nil
	}
	return "", Validation(fmt.Sprintf("invalid status %q", s))
}

// Postable reports whether participants may still add messages.
func (s ConversationStatus) Postable() bool {
	return s == StatusMatching || s == StatusActive
}

var transitions = map[ConversationStatus][]ConversationStatus{
	StatusMatching:  {StatusActive},
	StatusActive:    {StatusCompleted, StatusArchived},
	StatusCompleted: {StatusArchived},
}

// CanTransition reports whether from → to is a forward lifecycle move.
func CanTransition(from, to ConversationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ParticipantRole is the side a participant takes in a conversation.
type ParticipantRole string

const (
	RoleInitiator ParticipantRole = "initiator"
	RoleResponder ParticipantRole = "responder"
)

// PaymentStatus is the ledger state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
)

const PaymentTypeSingle = "single"

// PairState is the reveal state of a pair.
type PairState string

const (
	PairBuilding PairState = "building"
	PairEligible PairState = "eligible"
	PairPending  PairState = "pending"
	PairRevealed PairState = "revealed"
)

// PairKey identifies an unordered pair of users. The zero value is invalid;
// build keys with NewPairKey.
type PairKey struct {
	low, high int64
}

// NewPairKey orders the two ids so that the same two users always map to
// the same key regardless of argument order.
func NewPairKey(a, b int64) (PairKey, error) {
	if a == b {
		return PairKey{}, Validation("a user cannot be paired with themselves")
	}
	if a > b {
		a, b = b, a
	}
	return PairKey{low: a, high: b}, nil
}

func (k PairKey) Low() int64  { return k.low }
func (k PairKey) High() int64 { return k.high }

// Product limits.
const (
	MaxTitleLength   = 255
	MaxContentLength = 10000
	MaxTags          = 5
	MaxTagLength     = 50
	MinUsernameLen   = 3
	MaxUsernameLen   = 50
	MinPasswordLen   = 6

	// MaxPriceCents caps a single payment so revenue sums stay within int64.
	MaxPriceCents int64 = 1_000_000
)

// Rules holds the tunable product constants.
type Rules struct {
	// PublicMessageCount is how many leading messages of a conversation are
	// readable without paying.
	PublicMessageCount int
	// RevealThreshold is the shared-conversation count after which a pair may
	// ask to reveal identities.
	RevealThreshold int
	// DefaultPriceCents is charged when a payment request carries no amount.
	DefaultPriceCents int64
}

// DefaultRules returns the production constants.
func DefaultRules() Rules {
	return Rules{
		PublicMessageCount: 2,
		RevealThreshold:    10,
		DefaultPriceCents:  199,
	}
}

// IsPublicOrder reports whether a message at the given order is free to read.
func (r Rules) IsPublicOrder(order int) bool {
	return order < r.PublicMessageCount
}

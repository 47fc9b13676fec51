package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/Carig-G/the-bench/internal/domain"
	"github.com/Carig-G/the-bench/internal/security"
)

const (
	maxDisplayNameLength = 100
	maxContactInfoLength = 255
)

// UserService manages the owner-facing profile. Private fields are sealed
// with the encryptor before they reach the store.
type UserService struct {
	Deps
	enc      *security.Encryptor
	monikers func() string
}

func NewUserService(deps Deps, enc *security.Encryptor) *UserService {
	return &UserService{
		Deps:     deps.withDefaults(),
		enc:      enc,
		monikers: RandomMoniker,
	}
}

func (s *UserService) Me(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return s.profile(user)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, patch domain.ProfilePatch) (*Profile, error) {
	if patch.Empty() {
		return nil, domain.Validation("No fields to update")
	}
	if patch.DisplayName != nil && utf8.RuneCountInString(*patch.DisplayName) > maxDisplayNameLength {
		return nil, domain.Validation(fmt.Sprintf("Display name must be under %d characters", maxDisplayNameLength))
	}
	if patch.ContactInfo != nil && utf8.RuneCountInString(*patch.ContactInfo) > maxContactInfoLength {
		return nil, domain.Validation(fmt.Sprintf("Contact info must be under %d characters", maxContactInfoLength))
	}

	var (
		sealed domain.ProfilePatch
		err    error
	)
	if sealed.DisplayName, err = s.enc.EncryptOptional(patch.DisplayName); err != nil {
		return nil, fmt.Errorf("encrypt display name: %w", err)
	}
	if sealed.ContactInfo, err = s.enc.EncryptOptional(patch.ContactInfo); err != nil {
		return nil, fmt.Errorf("encrypt contact info: %w", err)
	}
	if err := s.Store.Users().UpdateProfile(ctx, userID, sealed); err != nil {
		return nil, notFound(err, "User not found")
	}
	return s.Me(ctx, userID)
}

// ShuffleMoniker assigns a fresh public name, different from the current one.
func (s *UserService) ShuffleMoniker(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	next := s.monikers()
	for i := 0; next == user.Moniker && i < 8; i++ {
		next = s.monikers()
	}
	if err := s.Store.Users().SetMoniker(ctx, userID, next); err != nil {
		return nil, notFound(err, "User not found")
	}
	user.Moniker = next
	return s.profile(user)
}

func (s *UserService) profile(u *domain.User) (*Profile, error) {
	name, contact, err := s.identity(u)
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:          u.ID,
		Username:    u.Username,
		Moniker:     u.Moniker,
		DisplayName: name,
		ContactInfo: contact,
		CreatedAt:   u.CreatedAt,
	}, nil
}

// identity opens the sealed display name and contact info of u.
func (s *UserService) identity(u *domain.User) (name, contact *string, err error) {
	if name, err = s.enc.DecryptOptional(u.DisplayName); err != nil {
		return nil, nil, fmt.Errorf("decrypt display name of user %d: %w", u.ID, err)
	}
	if contact, err = s.enc.DecryptOptional(u.ContactInfo); err != nil {
		return nil, nil, fmt.Errorf("decrypt contact info of user %d: %w", u.ID, err)
	}
	return name, contact, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Carig-G/the-bench/internal/domain"
)

type UserRepo struct {
	conn
}

var _ domain.UserRepository = (*UserRepo)(nil)

const userColumns = `id, username, password_hash, moniker, display_name, contact_info, created_at`

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (username, password_hash, moniker, display_name, contact_info, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := r.queryRow(ctx, query,
		u.Username,
		u.PasswordHash,
		u.Moniker,
		u.DisplayName,
		u.ContactInfo,
		u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		return r.d.conflict(err, "insert user", "Username already taken")
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, patch domain.ProfilePatch) error {
	setName, name := patchValue(patch.DisplayName)
	setContact, contact := patchValue(patch.ContactInfo)
	query := `
		UPDATE users
		SET display_name = CASE WHEN ? THEN ? ELSE display_name END,
		    contact_info = CASE WHEN ? THEN ? ELSE contact_info END
		WHERE id = ?
	`
	return r.execOne(ctx, "update profile", query, setName, name, setContact, contact, id)
}

func (r *UserRepo) SetMoniker(ctx context.Context, id int64, moniker string) error {
	return r.execOne(ctx, "set moniker", `UPDATE users SET moniker = ? WHERE id = ?`, moniker, id)
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	err := r.queryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Moniker,
		&u.DisplayName,
		&u.ContactInfo,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// patchValue maps an optional patch field onto a (set, value) pair; an
// empty string clears the column.
func patchValue(v *string) (bool, any) {
	if v == nil {
		return false, nil
	}
	if *v == "" {
		return true, nil
	}
	return true, *v
}

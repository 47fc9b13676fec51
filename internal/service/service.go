// Package service holds the application logic of the bench: identity,
// conversation lifecycle, message visibility, payments and pair reveals.
// Services receive the acting user's id explicitly on every call.
package service

import (
	"errors"
	"log/slog"
	"time"

	"github.com/Carig-G/the-bench/internal/domain"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	Store  domain.Store
	Rules  domain.Rules
	Logger *slog.Logger
	// Clock defaults to the wall clock. Stored times are always UTC.
	Clock func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Rules == (domain.Rules{}) {
		d.Rules = domain.DefaultRules()
	}
	return d
}

func (d Deps) now() time.Time {
	return d.Clock().UTC()
}

// notFound replaces a repository miss with a caller-facing message.
func notFound(err error, msg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound(msg)
	}
	return err
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func newPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

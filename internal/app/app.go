// Package app wires configuration into a store and the service graph. It is
// shared by the server and the seeder.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Carig-G/the-bench/internal/config"
	"github.com/Carig-G/the-bench/internal/domain"
	"github.com/Carig-G/the-bench/internal/httpserver"
	"github.com/Carig-G/the-bench/internal/security"
	"github.com/Carig-G/the-bench/internal/service"
	"github.com/Carig-G/the-bench/internal/store"
	"github.com/Carig-G/the-bench/internal/store/postgres"
	"github.com/Carig-G/the-bench/internal/store/sqlite"
)

// NewLogger returns a JSON logger, or a text logger at debug level when
// debug is set.
func NewLogger(debug bool) *slog.Logger {
	if debug {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

// OpenStore opens and migrates the configured database.
func OpenStore(ctx context.Context, cfg *config.Config) (*store.DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return sqlite.New(ctx, cfg.SQLitePath)
	case "postgres":
		return postgres.New(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// NewServices builds the service graph over st. A nil trending cache
// disables caching.
func NewServices(cfg *config.Config, st domain.Store, trending service.TrendingCache, log *slog.Logger) (httpserver.Services, error) {
	enc, err := security.NewEncryptor([]byte(cfg.EncryptKey))
	if err != nil {
		return httpserver.Services{}, fmt.Errorf("init encryptor: %w", err)
	}
	deps := service.Deps{Store: st, Rules: cfg.Rules, Logger: log}

	users := service.NewUserService(deps, enc)
	pairs := service.NewPairService(deps, users)
	msgs := service.NewMessageService(deps)
	tokens := security.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL())

	return httpserver.Services{
		Auth:          service.NewAuthService(deps, tokens, security.NewPasswordHasher(0), users),
		Users:         users,
		Conversations: service.NewConversationService(deps, msgs, pairs, trending),
		Messages:      msgs,
		Payments:      service.NewPaymentService(deps),
		Pairs:         pairs,
	}, nil
}

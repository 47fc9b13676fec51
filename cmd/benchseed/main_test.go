package main

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Carig-G/the-bench/internal/app"
	"github.com/Carig-G/the-bench/internal/config"
	"github.com/Carig-G/the-bench/internal/domain"
	"github.com/Carig-G/the-bench/internal/service"
	"github.com/Carig-G/the-bench/internal/store/sqlite"
)

func TestSeedFixtures(t *testing.T) {
	ctx := context.Background()
	raw, err := os.ReadFile("seed.yaml")
	require.NoError(t, err)
	var fx fixtures
	require.NoError(t, yaml.Unmarshal(raw, &fx))

	st, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	defer st.Close()

	cfg := &config.Config{JWTSecret: "seed", EncryptKey: "seed", AccessTokenMinutes: 60, Rules: domain.DefaultRules()}
	log := slog.New(slog.DiscardHandler)
	svc, err := app.NewServices(cfg, st, nil, log)
	require.NoError(t, err)

	s := &seeder{svc: svc, log: log, users: map[string]int64{}}
	require.NoError(t, s.seed(ctx, fx))
	assert.Len(t, s.users, 3)

	page, err := svc.Conversations.List(ctx, service.ListInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Pagination.Total)

	stats, err := svc.Pairs.Stats(ctx, s.users["hypatia"])
	require.NoError(t, err)
	assert.Equal(t, 2, stats.UniquePartners)

	again := &seeder{svc: svc, log: log, users: map[string]int64{}}
	require.NoError(t, again.seed(ctx, fixtures{Users: fx.Users}), "existing users are reused")
	assert.Equal(t, s.users, again.users)
}

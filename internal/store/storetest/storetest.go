// Package storetest holds behaviour every domain.Store implementation must
// share. Each driver package runs it against its own database.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carig-G/the-bench/internal/domain"
)

// Run exercises st. The database must be freshly migrated and empty.
func Run(t *testing.T, st domain.Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	alice := mustUser(t, st, "alice", now)
	bob := mustUser(t, st, "bob", now)
	reader := mustUser(t, st, "reader", now)

	t.Run("DuplicateUsername", func(t *testing.T) {
		err := st.Users().Create(ctx, &domain.User{Username: "alice", PasswordHash: "x", Moniker: "m", CreatedAt: now})
		assert.ErrorIs(t, err, domain.ErrConflict)

		_, err = st.Users().GetByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		boom := errors.New("boom")
		err := st.InTx(ctx, func(tx domain.Repos) error {
			if err := tx.Users().Create(ctx, &domain.User{Username: "ghost", PasswordHash: "x", Moniker: "m", CreatedAt: now}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = st.Users().GetByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	conv := &domain.Conversation{
		Title:     "Storage",
		Topic:     "Databases",
		Status:    domain.StatusMatching,
		CreatorID: alice.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Conversations().Create(ctx, conv))
	require.NoError(t, st.Participants().Add(ctx, &domain.ConversationParticipant{
		ConversationID: conv.ID, UserID: alice.ID, Role: domain.RoleInitiator, JoinedAt: now,
	}))

	t.Run("SecondInitiatorRejected", func(t *testing.T) {
		err := st.Participants().Add(ctx, &domain.ConversationParticipant{
			ConversationID: conv.ID, UserID: bob.ID, Role: domain.RoleInitiator, JoinedAt: now,
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("MessageOrderUnique", func(t *testing.T) {
		first := &domain.Message{ConversationID: conv.ID, AuthorID: alice.ID, Content: "one", IsPublic: true, MessageOrder: 0, CreatedAt: now}
		require.NoError(t, st.Messages().Create(ctx, first))

		dup := &domain.Message{ConversationID: conv.ID, AuthorID: alice.ID, Content: "dup", IsPublic: true, MessageOrder: 0, CreatedAt: now}
		assert.ErrorIs(t, st.Messages().Create(ctx, dup), domain.ErrConflict)

		n, err := st.Messages().Count(ctx, conv.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		got, err := st.Messages().GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.True(t, got.CreatedAt.Equal(now), "created_at round trips: %v vs %v", got.CreatedAt, now)
	})

	t.Run("LockedRead", func(t *testing.T) {
		err := st.InTx(ctx, func(tx domain.Repos) error {
			c, err := tx.Conversations().GetForUpdate(ctx, conv.ID)
			if err != nil {
				return err
			}
			assert.Equal(t, "Storage", c.Title)
			return tx.Conversations().UpdateStatus(ctx, c.ID, domain.StatusActive, now)
		})
		require.NoError(t, err)

		c, err := st.Conversations().GetByID(ctx, conv.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, c.Status)

		_, err = st.Conversations().GetByID(ctx, 424242)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("PairUpsertCounts", func(t *testing.T) {
		key, err := domain.NewPairKey(bob.ID, alice.ID)
		require.NoError(t, err)
		var pair *domain.ConversationPair
		for i := 0; i < 3; i++ {
			pair, err = st.Pairs().Upsert(ctx, key, now)
			require.NoError(t, err)
		}
		assert.Equal(t, 3, pair.ConversationCount)
		assert.Equal(t, alice.ID, pair.UserAID)
		assert.Equal(t, bob.ID, pair.UserBID)

		require.NoError(t, st.Pairs().SetRevealRequested(ctx, pair.ID, false, now))
		require.NoError(t, st.Pairs().Reveal(ctx, pair.ID, now))
		assert.ErrorIs(t, st.Pairs().Reveal(ctx, pair.ID, now), domain.ErrConflict)

		got, err := st.Pairs().GetByKey(ctx, key)
		require.NoError(t, err)
		assert.True(t, got.Revealed)
		assert.True(t, got.UserARevealRequested)
		assert.True(t, got.UserBRevealRequested)
		require.NotNil(t, got.RevealedAt)
	})

	t.Run("PaymentsSingleUse", func(t *testing.T) {
		p := &domain.Payment{
			ConversationID: conv.ID,
			ReaderID:       reader.ID,
			AmountCents:    199,
			PaymentType:    domain.PaymentTypeSingle,
			Status:         domain.PaymentCompleted,
			Reference:      "ref-1",
			CreatedAt:      now,
		}
		require.NoError(t, st.Payments().Create(ctx, p))

		again := *p
		again.ID, again.Reference = 0, "ref-2"
		assert.ErrorIs(t, st.Payments().Create(ctx, &again), domain.ErrConflict)

		readers, cents, err := st.Payments().Revenue(ctx, conv.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, readers)
		assert.Equal(t, int64(199), cents)
	})

	t.Run("Tags", func(t *testing.T) {
		require.NoError(t, st.Tags().Add(ctx, conv.ID, []string{"sql", "go", "sql"}, now))
		tags, err := st.Tags().Trending(ctx, now.Add(-time.Hour), 10)
		require.NoError(t, err)
		assert.Equal(t, []domain.TagCount{
			{Tag: "go", ConversationCount: 1},
			{Tag: "sql", ConversationCount: 1},
		}, tags)

		s, err := st.Conversations().Summary(ctx, conv.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"go", "sql"}, s.Tags)
		assert.Equal(t, 1, s.ReaderCount)
		assert.Equal(t, "alice-moniker", s.CreatorMoniker)
	})
}

func mustUser(t *testing.T, st domain.Store, username string, now time.Time) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, PasswordHash: "hash", Moniker: username + "-moniker", CreatedAt: now}
	require.NoError(t, st.Users().Create(context.Background(), u))
	return u
}

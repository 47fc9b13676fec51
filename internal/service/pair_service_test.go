package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carig-G/the-bench/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestPairCounterIsSymmetric(t *testing.T) {
	b := newBench(t, domain.DefaultRules())
	ctx := context.Background()
	alice := b.register(t, "alice")
	bob := b.register(t, "bob")

	b.converse(t, bob, alice, 3)

	key, err := domain.NewPairKey(bob, alice)
	require.NoError(t, err)
	pair, err := b.store.Pairs().GetByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, alice, pair.UserAID)
	assert.Equal(t, bob, pair.UserBID)
	assert.Equal(t, 3, pair.ConversationCount)

	convs, err := b.pairs.Conversations(ctx, pair.ID, bob)
	require.NoError(t, err)
	assert.Len(t, convs, 3)

	list, err := b.pairs.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, bob, list[0].PartnerID)
	assert.Equal(t, domain.PairBuilding, list[0].State)
	assert.Nil(t, list[0].PartnerUsername)
}

func TestRevealBelowThreshold(t *testing.T) {
	b := newBench(t, domain.DefaultRules())
	ctx := context.Background()
	alice := b.register(t, "alice")
	bob := b.register(t, "bob")
	b.converse(t, alice, bob, 7)

	list, err := b.pairs.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = b.pairs.RequestReveal(ctx, list[0].ID, alice)
	assert.Equal(t, domain.KindThreshold, kindOf(t, err))
	assert.Equal(t, "Need 3 more conversations to reveal", domain.PublicMessage(err))

	stats, err := b.pairs.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalConversations)
	assert.Equal(t, 1, stats.UniquePartners)
	assert.Equal(t, 3, stats.ClosestToReveal)
	assert.Equal(t, 0, stats.PendingReveals)
}

func TestMutualReveal(t *testing.T) {
	b := newBench(t, domain.DefaultRules())
	ctx := context.Background()
	alice := b.register(t, "alice")
	bob := b.register(t, "bob")
	carol := b.register(t, "carol")

	_, err := b.users.UpdateProfile(ctx, bob, domain.ProfilePatch{DisplayName: strPtr("Bob B."), ContactInfo: strPtr("bob@example.com")})
	require.NoError(t, err)

	b.converse(t, alice, bob, 10)

	eligible, err := b.pairs.RevealEligible(ctx, alice)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	pairID := eligible[0].ID
	assert.Equal(t, domain.PairEligible, eligible[0].State)
	assert.Nil(t, eligible[0].PartnerContactInfo)

	t.Run("outsider", func(t *testing.T) {
		_, err := b.pairs.RequestReveal(ctx, pairID, carol)
		assert.Equal(t, domain.KindAuthorization, kindOf(t, err))
	})

	t.Run("first side waits", func(t *testing.T) {
		res, err := b.pairs.RequestReveal(ctx, pairID, alice)
		require.NoError(t, err)
		assert.False(t, res.Revealed)
		assert.Equal(t, domain.PairPending, res.Pair.State)
		assert.True(t, res.Pair.IRequestedReveal)
		assert.Nil(t, res.Pair.PartnerContactInfo)
		assert.Empty(t, res.Identities)

		again, err := b.pairs.RequestReveal(ctx, pairID, alice)
		require.NoError(t, err)
		assert.False(t, again.Revealed, "asking twice does not reveal")

		list, err := b.pairs.List(ctx, bob)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.True(t, list[0].PartnerRequestedReveal)
		assert.Nil(t, list[0].PartnerUsername)

		stats, err := b.pairs.Stats(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.PendingReveals)
	})

	t.Run("second side reveals", func(t *testing.T) {
		res, err := b.pairs.RequestReveal(ctx, pairID, bob)
		require.NoError(t, err)
		assert.True(t, res.Revealed)
		assert.Equal(t, domain.PairRevealed, res.Pair.State)
		assert.NotNil(t, res.Pair.RevealedAt)
		require.Len(t, res.Identities, 2)

		revealed, err := b.pairs.Revealed(ctx, alice)
		require.NoError(t, err)
		require.Len(t, revealed, 1)
		require.NotNil(t, revealed[0].PartnerUsername)
		assert.Equal(t, "bob", *revealed[0].PartnerUsername)
		require.NotNil(t, revealed[0].PartnerContactInfo)
		assert.Equal(t, "bob@example.com", *revealed[0].PartnerContactInfo)
	})

	t.Run("reveal is final", func(t *testing.T) {
		key, err := domain.NewPairKey(alice, bob)
		require.NoError(t, err)
		before, err := b.store.Pairs().GetByKey(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, before.RevealedAt)

		_, err = b.pairs.RequestReveal(ctx, pairID, alice)
		assert.Equal(t, domain.KindConflict, kindOf(t, err))
		_, err = b.pairs.RequestReveal(ctx, pairID, bob)
		assert.Equal(t, domain.KindConflict, kindOf(t, err))

		b.converse(t, alice, bob, 1)
		pair, err := b.store.Pairs().GetByKey(ctx, key)
		require.NoError(t, err)
		assert.True(t, pair.Revealed)
		assert.True(t, pair.UserARevealRequested)
		assert.True(t, pair.UserBRevealRequested)
		require.NotNil(t, pair.RevealedAt)
		assert.True(t, before.RevealedAt.Equal(*pair.RevealedAt), "revealed_at must not move")
		assert.Equal(t, 11, pair.ConversationCount)

		eligible, err := b.pairs.RevealEligible(ctx, bob)
		require.NoError(t, err)
		assert.Empty(t, eligible)
	})
}

func TestPairConversationsMembersOnly(t *testing.T) {
	b := newBench(t, domain.DefaultRules())
	ctx := context.Background()
	alice := b.register(t, "alice")
	bob := b.register(t, "bob")
	carol := b.register(t, "carol")
	b.converse(t, alice, bob, 1)

	list, err := b.pairs.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = b.pairs.Conversations(ctx, list[0].ID, carol)
	assert.Equal(t, domain.KindAuthorization, kindOf(t, err))

	_, err = b.pairs.Conversations(ctx, 999, alice)
	assert.Equal(t, domain.KindNotFound, kindOf(t, err))
}

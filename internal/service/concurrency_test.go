package service_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carig-G/the-bench/internal/domain"
	"github.com/Carig-G/the-bench/internal/service"
)

func newFileBench(t *testing.T) *bench {
	t.Helper()
	return newBenchAt(t, domain.DefaultRules(), filepath.Join(t.TempDir(), "bench.db"))
}

func TestConcurrentRevealRequests(t *testing.T) {
	b := newFileBench(t)
	ctx := context.Background()

	for round := 0; round < 5; round++ {
		alice := b.register(t, fmt.Sprintf("alice%d", round))
		bob := b.register(t, fmt.Sprintf("bob%d", round))
		b.converse(t, alice, bob, 10)
		key, err := domain.NewPairKey(alice, bob)
		require.NoError(t, err)
		pair, err := b.store.Pairs().GetByKey(ctx, key)
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, user := range []int64{alice, bob} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = b.pairs.RequestReveal(ctx, pair.ID, user)
			}()
		}
		wg.Wait()
		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		pair, err = b.store.Pairs().GetByID(ctx, pair.ID)
		require.NoError(t, err)
		assert.True(t, pair.Revealed, "round %d", round)
		assert.True(t, pair.UserARevealRequested)
		assert.True(t, pair.UserBRevealRequested)
		assert.NotNil(t, pair.RevealedAt)
	}
}

func TestConcurrentPostsGetDistinctOrders(t *testing.T) {
	b := newFileBench(t)
	ctx := context.Background()
	alice := b.register(t, "alice")
	bob := b.register(t, "bob")
	conv := b.start(t, alice, "Crowded bench")
	b.join(t, conv.ID, bob)

	const posts = 20
	var wg sync.WaitGroup
	errs := make([]error, posts)
	for i := 0; i < posts; i++ {
		author := alice
		if i%2 == 1 {
			author = bob
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = b.msgs.Post(ctx, author, service.PostInput{ConversationID: conv.ID, Content: fmt.Sprintf("message %d", i)})
		}()
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "post %d", i)
	}

	vis, err := b.msgs.Visible(ctx, conv.ID, alice)
	require.NoError(t, err)
	require.Len(t, vis.Messages, posts+1)
	orders := make([]int, 0, len(vis.Messages))
	public := 0
	for _, m := range vis.Messages {
		orders = append(orders, m.MessageOrder)
		if m.IsPublic {
			public++
		}
	}
	sort.Ints(orders)
	for i, order := range orders {
		assert.Equal(t, i, order)
	}
	assert.Equal(t, 2, public)
}

func TestConcurrentJoinsAdmitOneResponder(t *testing.T) {
	b := newFileBench(t)
	ctx := context.Background()
	alice := b.register(t, "alice")
	conv := b.start(t, alice, "One seat")

	joiners := make([]int64, 3)
	for i := range joiners {
		joiners[i] = b.register(t, fmt.Sprintf("joiner%d", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, len(joiners))
	for i, user := range joiners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = b.convs.Join(ctx, conv.ID, user)
		}()
	}
	wg.Wait()

	var winner int64
	for i, err := range errs {
		if err == nil {
			assert.Zero(t, winner, "only one join may succeed")
			winner = joiners[i]
			continue
		}
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	}
	require.NotZero(t, winner)

	participants, err := b.store.Participants().List(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	responders := 0
	for _, p := range participants {
		if p.Role == domain.RoleResponder {
			responders++
			assert.Equal(t, winner, p.UserID)
		}
	}
	assert.Equal(t, 1, responders)

	key, err := domain.NewPairKey(alice, winner)
	require.NoError(t, err)
	pair, err := b.store.Pairs().GetByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, pair.ConversationCount)
}

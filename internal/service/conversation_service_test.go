package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carig-G/the-bench/internal/domain"
	"github.com/Carig-G/the-bench/internal/service"
)

func TestStartConversation(t *testing.T) {
	b := newBench(t, domain.DefaultRules())
	ctx := context.Background()
	alice := b.register(t, "alice")

	conv := b.start(t, alice, "On strangers", " Ethics ", "ethics", "", "Kindness")
	assert.Equal(t, domain.StatusMatching, conv.Status)

	detail, err := b.convs.Get(ctx, conv.ID, 0)
	require.NoError(t, err)
	require.Len(t, detail.Participants, 1)
	assert.Equal(t, domain.RoleInitiator, detail.Participants[0].Role)
	require.Len(t, detail.Messages, 1)
	assert.Equal(t, 0, detail.Messages[0].MessageOrder)
	assert.True(t, detail.Messages[0].IsPublic)
	assert.Equal(t, []string{"ethics", "kindness"}, detail.Conversation.Tags)

	queue, err := b.convs.Queue(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, conv.ID, queue[0].ID)
	require.NotNil(t, queue[0].OpeningMessage)
	assert.Equal(t, "What do we owe strangers?", *queue[0].OpeningMessage)

	own, err := b.convs.Queue(ctx, alice, "")
	require.NoError(t, err)
	assert.Empty(t, own)
}

func TestStartConversationValidation(t *testing.T) {
	b := newBench(t, domain.DefaultRules())
	alice := b.register(t, "alice")

	tests := []struct {
		name string
		in   service.StartInput
	}{
		{"missing title", service.StartInput{Topic: "t", OpeningMessage: "m"}},
		{"missing opening", service.StartInput{Title: "t", Topic: "t"}},
		{"long title", service.StartInput{Title: strings.Repeat("x", 256), Topic: "t", OpeningMessage: "m"}},
		{"long tag", service.StartInput{Title: "t", Topic: "t", OpeningMessage: "m", Tags: []string{strings.Repeat("x", 51)}}},
		{"comma tag", service.StartInput{Title: "t", Topic: "t", OpeningMessage: "m", Tags: []string{"a,b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.convs.Start(context.Background(), alice, tt.in)
			assert.Equal(t, domain.KindValidation, kindOf(t, err))
		})
	}
}

func TestNormalizeTagsKeepsFive(t *testing.T) {
	tags, err := service.NormalizeTags([]string{"a", "B", "c", "a", "d", "e", "f"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, tags)
}

func TestJoinConversation(t *testing.T) {
	b := newBench(t, domain.DefaultRules())
	ctx := context.Background()
	alice := b.register(t, "alice")
	bob := b.register(t, "bob")
	carol := b.register(t, "carol")
	conv := b.start(t, alice, "On strangers")

	t.Run("creator cannot join", func(t *testing.T) {
		_, err := b.convs.Join(ctx, conv.ID, alice)
		require.Error(t, err)
		assert.Equal(t, "You are already a participant in this conversation", domain.PublicMessage(err))
	})

	t.Run("responder joins", func(t *testing.T) {
		got, err := b.convs.Join(ctx, conv.ID, bob)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, got.Status)

		detail, err := b.convs.Get(ctx, conv.ID, bob)
		require.NoError(t, err)
		require.Len(t, detail.Participants, 2)
		assert.Equal(t, domain.RoleResponder, detail.Participants[1].Role)
		assert.True(t, detail.IsParticipant)
	})

	t.Run("second join fails", func(t *testing.T) {
		_, err := b.convs.Join(ctx, conv.ID, carol)
		assert.Equal(t, domain.KindConflict, kindOf(t, err))
		assert.Equal(t, "Conversation is not available for joining", domain.PublicMessage(err))

		detail, err := b.convs.Get(ctx, conv.ID, 0)
		require.NoError(t, err)
		assert.Len(t, detail.Participants, 2)
	})

	t.Run("left the queue", func(t *testing.T) {
		queue, err := b.convs.Queue(ctx, carol, "")
		require.NoError(t, err)
		assert.Empty(t, queue)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		_, err := b.convs.Join(ctx, 9999, carol)
		assert.Equal(t, domain.KindNotFound, kindOf(t, err))
	})
}

func TestUpdateStatus(t *testing.T) {
	b := newBench(t, domain.DefaultRules())
	ctx := context.Background()
	alice := b.register(t, "alice")
	bob := b.register(t, "bob")
	carol := b.register(t, "carol")
	conv := b.start(t, alice, "On strangers")

	_, err := b.convs.UpdateStatus(ctx, conv.ID, alice, "active")
	assert.Equal(t, domain.KindConflict, kindOf(t, err), "joining is the only way to activate")

	_, err = b.convs.UpdateStatus(ctx, conv.ID, alice, "completed")
	assert.Equal(t, domain.KindConflict, kindOf(t, err))

	_, err = b.convs.UpdateStatus(ctx, conv.ID, alice, "paused")
	assert.Equal(t, domain.KindValidation, kindOf(t, err))

	b.join(t, conv.ID, bob)

	_, err = b.convs.UpdateStatus(ctx, conv.ID, carol, "completed")
	assert.Equal(t, domain.KindAuthorization, kindOf(t, err))

	got, err := b.convs.UpdateStatus(ctx, conv.ID, bob, "completed")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	_, err = b.msgs.Post(ctx, alice, service.PostInput{ConversationID: conv.ID, Content: "one more thing"})
	assert.Equal(t, domain.KindConflict, kindOf(t, err))

	_, err = b.convs.UpdateStatus(ctx, conv.ID, alice, "active")
	assert.Equal(t, domain.KindConflict, kindOf(t, err))

	got, err = b.convs.UpdateStatus(ctx, conv.ID, alice, "archived")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, got.Status)
}

func TestListAndMine(t *testing.T) {
	b := newBench(t, domain.DefaultRules())
	ctx := context.Background()
	alice := b.register(t, "alice")
	bob := b.register(t, "bob")

	first := b.start(t, alice, "First")
	b.start(t, alice, "Second")
	third := b.start(t, bob, "Third")
	b.join(t, first.ID, bob)
	b.post(t, first.ID, bob, "latest word")

	page, err := b.convs.List(ctx, service.ListInput{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Conversations, 2)
	assert.Equal(t, service.Pagination{Page: 1, Limit: 2, Total: 3, Pages: 2}, page.Pagination)

	page, err = b.convs.List(ctx, service.ListInput{Status: "matching"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.Total)

	_, err = b.convs.List(ctx, service.ListInput{Status: "bogus"})
	assert.Equal(t, domain.KindValidation, kindOf(t, err))

	mine, err := b.convs.Mine(ctx, bob)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, first.ID, mine[0].ID, "active conversations come first")
	require.NotNil(t, mine[0].MyRole)
	assert.Equal(t, domain.RoleResponder, *mine[0].MyRole)
	require.NotNil(t, mine[0].LastMessage)
	assert.Equal(t, "latest word", *mine[0].LastMessage)
	assert.Equal(t, 2, mine[0].MessageCount)
	assert.Equal(t, third.ID, mine[1].ID)
}

func TestBrowseAndTrending(t *testing.T) {
	b := newBench(t, domain.DefaultRules())
	ctx := context.Background()
	alice := b.register(t, "alice")
	bob := b.register(t, "bob")
	reader := b.register(t, "reader")

	open := b.start(t, alice, "Open", "ethics", "cities")
	busy := b.start(t, bob, "Busy", "ethics")
	b.join(t, busy.ID, alice)
	_, err := b.pays.Create(ctx, reader, service.CreatePaymentInput{ConversationID: busy.ID})
	require.NoError(t, err)

	res, err := b.convs.Browse(ctx, alice, "")
	require.NoError(t, err)
	assert.Empty(t, res.OpenBenches, "own benches are hidden")
	require.Len(t, res.ActiveConversations, 1)
	assert.Equal(t, 1, res.ActiveConversations[0].ReaderCount)
	require.NotNil(t, res.ActiveConversations[0].OpeningPost)

	res, err = b.convs.Browse(ctx, bob, "Cities")
	require.NoError(t, err)
	require.Len(t, res.OpenBenches, 1)
	assert.Equal(t, open.ID, res.OpenBenches[0].ID)
	assert.Empty(t, res.ActiveConversations)

	tags, err := b.convs.TrendingTags(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []domain.TagCount{
		{Tag: "ethics", ConversationCount: 2},
		{Tag: "cities", ConversationCount: 1},
	}, tags)
}

package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carig-G/the-bench/internal/domain"
	"github.com/Carig-G/the-bench/internal/service"
)

func amount(v float64) *float64 { return &v }

func TestCreatePayment(t *testing.T) {
	b := newBench(t, domain.DefaultRules())
	ctx := context.Background()
	alice := b.register(t, "alice")
	bob := b.register(t, "bob")
	reader := b.register(t, "reader")
	conv := b.start(t, alice, "Paid")
	b.join(t, conv.ID, bob)

	t.Run("default price", func(t *testing.T) {
		r, err := b.pays.Create(ctx, reader, service.CreatePaymentInput{ConversationID: conv.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(199), r.AmountCents)
		assert.InDelta(t, 1.99, r.Amount, 1e-9)
		assert.Equal(t, domain.PaymentCompleted, r.Status)
		assert.Equal(t, domain.PaymentTypeSingle, r.PaymentType)
		assert.NotEmpty(t, r.Reference)
	})

	t.Run("single use", func(t *testing.T) {
		_, err := b.pays.Create(ctx, reader, service.CreatePaymentInput{ConversationID: conv.ID})
		assert.Equal(t, domain.KindConflict, kindOf(t, err))
		assert.Equal(t, "You have already paid for this conversation", domain.PublicMessage(err))
	})

	t.Run("participants do not pay", func(t *testing.T) {
		_, err := b.pays.Create(ctx, bob, service.CreatePaymentInput{ConversationID: conv.ID})
		assert.Equal(t, domain.KindConflict, kindOf(t, err))
	})

	t.Run("non-positive amount", func(t *testing.T) {
		other := b.register(t, "other")
		_, err := b.pays.Create(ctx, other, service.CreatePaymentInput{ConversationID: conv.ID, Amount: amount(0)})
		assert.Equal(t, domain.KindValidation, kindOf(t, err))
		_, err = b.pays.Create(ctx, other, service.CreatePaymentInput{ConversationID: conv.ID, Amount: amount(-2)})
		assert.Equal(t, domain.KindValidation, kindOf(t, err))
	})

	t.Run("amount ceiling", func(t *testing.T) {
		top := b.register(t, "top")
		r, err := b.pays.Create(ctx, top, service.CreatePaymentInput{ConversationID: conv.ID, Amount: amount(10000)})
		require.NoError(t, err)
		assert.Equal(t, domain.MaxPriceCents, r.AmountCents)

		over := b.register(t, "over")
		for _, v := range []float64{10000.01, 9e16, 1e300} {
			_, err := b.pays.Create(ctx, over, service.CreatePaymentInput{ConversationID: conv.ID, Amount: amount(v)})
			assert.Equal(t, domain.KindValidation, kindOf(t, err), "amount %g", v)
			assert.Equal(t, "Amount must be at most 10000.00", domain.PublicMessage(err))
		}

		_, err = b.pays.Revenue(ctx, conv.ID, alice)
		require.NoError(t, err)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		_, err := b.pays.Create(ctx, reader, service.CreatePaymentInput{ConversationID: 1234})
		assert.Equal(t, domain.KindNotFound, kindOf(t, err))
	})
}

func TestPaymentCheckHistoryRevenue(t *testing.T) {
	b := newBench(t, domain.DefaultRules())
	ctx := context.Background()
	alice := b.register(t, "alice")
	bob := b.register(t, "bob")
	r1 := b.register(t, "reader1")
	r2 := b.register(t, "reader2")
	conv := b.start(t, alice, "Popular")
	b.join(t, conv.ID, bob)

	check, err := b.pays.Check(ctx, conv.ID, r1)
	require.NoError(t, err)
	assert.False(t, check.HasPaid)
	assert.Nil(t, check.Payment)

	_, err = b.pays.Create(ctx, r1, service.CreatePaymentInput{ConversationID: conv.ID, Amount: amount(2.5)})
	require.NoError(t, err)
	_, err = b.pays.Create(ctx, r2, service.CreatePaymentInput{ConversationID: conv.ID})
	require.NoError(t, err)

	check, err = b.pays.Check(ctx, conv.ID, r1)
	require.NoError(t, err)
	assert.True(t, check.HasPaid)
	assert.Equal(t, int64(250), check.Payment.AmountCents)

	history, err := b.pays.History(ctx, r1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Popular", history[0].ConversationTitle)
	assert.InDelta(t, 2.5, history[0].Amount, 1e-9)

	rev, err := b.pays.Revenue(ctx, conv.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, 2, rev.TotalReaders)
	assert.Equal(t, int64(449), rev.TotalRevenueCents)
	assert.InDelta(t, 4.49, rev.TotalRevenue, 1e-9)
	assert.InDelta(t, 2.245, rev.YourShare, 1e-9)

	_, err = b.pays.Revenue(ctx, conv.ID, r1)
	assert.Equal(t, domain.KindAuthorization, kindOf(t, err))
}

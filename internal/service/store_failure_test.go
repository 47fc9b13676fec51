package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Carig-G/the-bench/internal/domain"
	"github.com/Carig-G/the-bench/internal/service"
)

// MockStore only implements what the failure tests touch; the embedded
// interfaces panic on anything else.
type MockStore struct {
	domain.Store
	mock.Mock
	convs *MockConversationRepo
}

func (m *MockStore) Conversations() domain.ConversationRepository { return m.convs }

func (m *MockStore) InTx(ctx context.Context, fn func(tx domain.Repos) error) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockConversationRepo struct {
	domain.ConversationRepository
	mock.Mock
}

func (m *MockConversationRepo) GetByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepo) Summary(ctx context.Context, id int64) (*domain.ConversationSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConversationSummary), args.Error(1)
}

func newMockStore() *MockStore {
	return &MockStore{convs: new(MockConversationRepo)}
}

func TestStoreFailuresStayInternal(t *testing.T) {
	boom := errors.New("connection reset")
	ctx := context.Background()

	t.Run("Join", func(t *testing.T) {
		st := newMockStore()
		st.On("InTx", mock.Anything).Return(boom)
		svc := service.NewConversationService(service.Deps{Store: st}, nil, nil, nil)

		_, err := svc.Join(ctx, 1, 2)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, domain.Kind(""), domain.KindOf(err))
		assert.Equal(t, "internal server error", domain.PublicMessage(err))
		st.AssertExpectations(t)
	})

	t.Run("Get", func(t *testing.T) {
		st := newMockStore()
		st.convs.On("Summary", mock.Anything, int64(7)).Return(nil, boom)
		svc := service.NewConversationService(service.Deps{Store: st}, nil, nil, nil)

		_, err := svc.Get(ctx, 7, 0)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, domain.Kind(""), domain.KindOf(err))
		st.convs.AssertExpectations(t)
	})

	t.Run("MissingIsNotFound", func(t *testing.T) {
		st := newMockStore()
		st.convs.On("GetByID", mock.Anything, int64(3)).Return(nil, domain.ErrNotFound)
		svc := service.NewPaymentService(service.Deps{Store: st})

		_, err := svc.Create(ctx, 5, service.CreatePaymentInput{ConversationID: 3})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, "Conversation not found", domain.PublicMessage(err))
	})
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Carig-G/the-bench/internal/domain"
	"github.com/Carig-G/the-bench/internal/security"
	"github.com/Carig-G/the-bench/internal/service"
	"github.com/Carig-G/the-bench/internal/store"
	"github.com/Carig-G/the-bench/internal/store/sqlite"
)

// bench wires every service over a fresh database.
type bench struct {
	store *store.DB
	auth  *service.AuthService
	users *service.UserService
	convs *service.ConversationService
	msgs  *service.MessageService
	pays  *service.PaymentService
	pairs *service.PairService
}

func newBench(t *testing.T, rules domain.Rules) *bench {
	t.Helper()
	return newBenchAt(t, rules, ":memory:")
}

// newBenchAt opens dsn instead of an in-memory database. A file-backed dsn
// gets a real connection pool, so concurrent calls actually race.
func newBenchAt(t *testing.T, rules domain.Rules, dsn string) *bench {
	t.Helper()
	st, err := sqlite.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	enc, err := security.NewEncryptor([]byte("test-encryption-key"))
	require.NoError(t, err)

	deps := service.Deps{Store: st, Rules: rules}
	users := service.NewUserService(deps, enc)
	pairs := service.NewPairService(deps, users)
	msgs := service.NewMessageService(deps)
	return &bench{
		store: st,
		auth:  service.NewAuthService(deps, security.NewTokenService("test-secret", time.Hour), security.NewPasswordHasher(bcrypt.MinCost), users),
		users: users,
		convs: service.NewConversationService(deps, msgs, pairs, nil),
		msgs:  msgs,
		pays:  service.NewPaymentService(deps),
		pairs: pairs,
	}
}

func (b *bench) register(t *testing.T, username string) int64 {
	t.Helper()
	res, err := b.auth.Register(context.Background(), service.RegisterInput{Username: username, Password: "secret123"})
	require.NoError(t, err)
	return res.User.ID
}

func (b *bench) start(t *testing.T, creatorID int64, title string, tags ...string) *domain.Conversation {
	t.Helper()
	conv, err := b.convs.Start(context.Background(), creatorID, service.StartInput{
		Title:          title,
		Topic:          "Philosophy",
		OpeningMessage: "What do we owe strangers?",
		Tags:           tags,
	})
	require.NoError(t, err)
	return conv
}

func (b *bench) join(t *testing.T, conversationID, userID int64) {
	t.Helper()
	_, err := b.convs.Join(context.Background(), conversationID, userID)
	require.NoError(t, err)
}

func (b *bench) post(t *testing.T, conversationID, authorID int64, content string) *domain.MessageView {
	t.Helper()
	m, err := b.msgs.Post(context.Background(), authorID, service.PostInput{ConversationID: conversationID, Content: content})
	require.NoError(t, err)
	return m
}

// converse has a and b share n conversations, alternating who starts.
func (b *bench) converse(t *testing.T, a, b2 int64, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		creator, responder := a, b2
		if i%2 == 1 {
			creator, responder = b2, a
		}
		conv := b.start(t, creator, "Shared bench")
		b.join(t, conv.ID, responder)
	}
}

func kindOf(t *testing.T, err error) domain.Kind {
	t.Helper()
	require.Error(t, err)
	return domain.KindOf(err)
}

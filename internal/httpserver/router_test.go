package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Carig-G/the-bench/internal/domain"
	"github.com/Carig-G/the-bench/internal/httpserver"
	"github.com/Carig-G/the-bench/internal/security"
	"github.com/Carig-G/the-bench/internal/service"
	"github.com/Carig-G/the-bench/internal/store/sqlite"
)

type client struct {
	t   *testing.T
	srv *httptest.Server
}

func newClient(t *testing.T) *client {
	t.Helper()
	st, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	enc, err := security.NewEncryptor([]byte("http-test-key"))
	require.NoError(t, err)
	deps := service.Deps{Store: st, Rules: domain.DefaultRules()}
	users := service.NewUserService(deps, enc)
	pairs := service.NewPairService(deps, users)
	msgs := service.NewMessageService(deps)

	router := httpserver.NewRouter(httpserver.Options{AppName: "test"}, httpserver.Services{
		Auth:          service.NewAuthService(deps, security.NewTokenService("http-secret", time.Hour), security.NewPasswordHasher(bcrypt.MinCost), users),
		Users:         users,
		Conversations: service.NewConversationService(deps, msgs, pairs, nil),
		Messages:      msgs,
		Payments:      service.NewPaymentService(deps),
		Pairs:         pairs,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &client{t: t, srv: srv}
}

// do sends body as JSON and decodes the response into out when non-nil.
func (c *client) do(method, path, token string, body, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.srv.URL+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type tokenBody struct {
	Token string `json:"token"`
	User  struct {
		ID      int64  `json:"id"`
		Moniker string `json:"moniker"`
	} `json:"user"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *client) register(username string) tokenBody {
	c.t.Helper()
	var tb tokenBody
	status := c.do(http.MethodPost, "/api/auth/register", "", map[string]string{"username": username, "password": "secret123"}, &tb)
	require.Equal(c.t, http.StatusCreated, status)
	return tb
}

func TestHealth(t *testing.T) {
	c := newClient(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health", "", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestAuthEndpoints(t *testing.T) {
	c := newClient(t)
	alice := c.register("alice")

	var e errorBody
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/api/auth/register", "", map[string]string{"username": "alice", "password": "secret123"}, &e))
	assert.Equal(t, "Username already taken", e.Error)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "nope-nope"}, nil))
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/auth/me", "", nil, nil))
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, "/api/auth/me", "garbage", nil, nil))

	var me struct {
		Username    string  `json:"username"`
		DisplayName *string `json:"display_name"`
	}
	assert.Equal(t, http.StatusOK, c.do(http.MethodPatch, "/api/auth/profile", alice.Token, map[string]string{"display_name": "Alice"}, &me))
	require.NotNil(t, me.DisplayName)
	assert.Equal(t, "Alice", *me.DisplayName)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPatch, "/api/auth/profile", alice.Token, map[string]string{}, nil))
	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/auth/shuffle-moniker", alice.Token, nil, nil))
}

func TestConversationFlow(t *testing.T) {
	c := newClient(t)
	alice := c.register("alice")
	bob := c.register("bob")
	carol := c.register("carol")

	var conv domain.Conversation
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/conversations", alice.Token, map[string]any{
		"title":          "On strangers",
		"topic":          "Philosophy",
		"openingMessage": "What do we owe strangers?",
		"tags":           []string{"ethics"},
	}, &conv))
	convPath := fmt.Sprintf("/api/conversations/%d", conv.ID)

	var queue []map[string]any
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/conversations/queue/browse", "", nil, &queue))
	assert.Len(t, queue, 1)

	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, convPath+"/join", bob.Token, nil, nil))
	var e errorBody
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, convPath+"/join", carol.Token, nil, &e))
	assert.Equal(t, "Conversation is not available for joining", e.Error)

	for i, tok := range []string{bob.Token, alice.Token, bob.Token} {
		status := c.do(http.MethodPost, "/api/messages", tok, map[string]any{"conversationId": conv.ID, "content": fmt.Sprintf("reply %d", i)}, nil)
		require.Equal(t, http.StatusCreated, status)
	}
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPost, "/api/messages", carol.Token, map[string]any{"conversationId": conv.ID, "content": "let me in"}, nil))

	msgsPath := fmt.Sprintf("/api/messages/conversation/%d", conv.ID)
	var vis struct {
		Messages []domain.MessageView `json:"messages"`
		HasPaid  bool                 `json:"has_paid"`
	}
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, msgsPath, "", nil, &vis))
	assert.Len(t, vis.Messages, 2)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, msgsPath, "not-a-token", nil, &vis), "optional auth falls back to anonymous")
	assert.Len(t, vis.Messages, 2)

	var receipt struct {
		Amount float64 `json:"amount"`
	}
	assert.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/payments", carol.Token, map[string]any{"conversationId": conv.ID}, &receipt))
	assert.InDelta(t, 1.99, receipt.Amount, 1e-9)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/payments", carol.Token, map[string]any{"conversationId": conv.ID}, nil))

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, msgsPath, carol.Token, nil, &vis))
	assert.True(t, vis.HasPaid)
	assert.Len(t, vis.Messages, 4)

	var rev struct {
		TotalReaders int     `json:"total_readers"`
		YourShare    float64 `json:"your_share"`
	}
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, fmt.Sprintf("/api/payments/revenue/%d", conv.ID), alice.Token, nil, &rev))
	assert.Equal(t, 1, rev.TotalReaders)
	assert.InDelta(t, 0.995, rev.YourShare, 1e-9)
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, fmt.Sprintf("/api/payments/revenue/%d", conv.ID), carol.Token, nil, nil))

	assert.Equal(t, http.StatusOK, c.do(http.MethodPatch, convPath, alice.Token, map[string]string{"status": "completed"}, nil))
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPatch, convPath, alice.Token, map[string]string{"status": "active"}, nil))

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/conversations/9999", "", nil, nil))
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/conversations/abc", "", nil, nil))
}

func TestPairEndpoints(t *testing.T) {
	c := newClient(t)
	alice := c.register("alice")
	bob := c.register("bob")

	var conv domain.Conversation
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/conversations", alice.Token, map[string]any{
		"title": "Once", "topic": "Cities", "openingMessage": "Which city taught you the most?",
	}, &conv))
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, fmt.Sprintf("/api/conversations/%d/join", conv.ID), bob.Token, nil, nil))

	var pairs []struct {
		ID                int64  `json:"id"`
		ConversationCount int    `json:"conversation_count"`
		State             string `json:"state"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/pairs", bob.Token, nil, &pairs))
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].ConversationCount)
	assert.Equal(t, "building", pairs[0].State)

	var e errorBody
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, fmt.Sprintf("/api/pairs/%d/request-reveal", pairs[0].ID), alice.Token, nil, &e))
	assert.Equal(t, "Need 9 more conversations to reveal", e.Error)

	var stats map[string]int
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/pairs/stats", alice.Token, nil, &stats))
	assert.Equal(t, 9, stats["closest_to_reveal"])

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/pairs", "", nil, nil))
}

package httpserver

import (
	"net/http"

	"github.com/Carig-G/the-bench/internal/service"
)

type conversationCreateRequest struct {
	Title          string   `json:"title"`
	Topic          string   `json:"topic"`
	Description    *string  `json:"description"`
	OpeningMessage string   `json:"openingMessage"`
	Tags           []string `json:"tags"`
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// @Summary      List conversations
// @Tags         conversations
// @Produce      json
// @Param        status query string false "Filter by status"
// @Param        topic  query string false "Filter by topic substring"
// @Param        page   query int    false "Page, from 1"
// @Param        limit  query int    false "Page size, at most 100"
// @Success      200  {object}  service.ConversationPage
// @Router       /conversations [get]
func handleListConversations(convSvc *service.ConversationService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := convSvc.List(r.Context(), service.ListInput{
			Status: q.Get("status"),
			Topic:  q.Get("topic"),
			Page:   queryInt(r, "page"),
			Limit:  queryInt(r, "limit"),
		})
		if err != nil {
			errs.write(w, r, "list conversations", err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func handleMyConversations(convSvc *service.ConversationService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		convs, err := convSvc.Mine(r.Context(), user.ID)
		if err != nil {
			errs.write(w, r, "my conversations", err, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusOK, convs)
	}
}

func handleQueueBrowse(convSvc *service.ConversationService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := convSvc.Queue(r.Context(), viewerID(r), r.URL.Query().Get("topic"))
		if err != nil {
			errs.write(w, r, "browse queue", err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func handleTrendingTags(convSvc *service.ConversationService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := convSvc.TrendingTags(r.Context(), queryInt(r, "limit"))
		if err != nil {
			errs.write(w, r, "trending tags", err)
			return
		}
		writeJSON(w, http.StatusOK, tags)
	}
}

// @Summary      Browse benches
// @Description  Open benches waiting for a responder and the most read active conversations
// @Tags         conversations
// @Produce      json
// @Param        tag query string false "Only conversations with this tag"
// @Success      200  {object}  service.BrowseResult
// @Router       /conversations/browse [get]
func handleBrowse(convSvc *service.ConversationService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := convSvc.Browse(r.Context(), viewerID(r), r.URL.Query().Get("tag"))
		if err != nil {
			errs.write(w, r, "browse", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// @Summary      Get conversation
// @Description  Conversation with the messages the caller may read
// @Tags         conversations
// @Produce      json
// @Param        conversationID path int true "Conversation ID"
// @Success      200  {object}  service.Detail
// @Failure      404  {object}  errorResponse
// @Router       /conversations/{conversationID} [get]
func handleGetConversation(convSvc *service.ConversationService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "conversationID", "conversation")
		if !ok {
			return
		}
		detail, err := convSvc.Get(r.Context(), id, viewerID(r))
		if err != nil {
			errs.write(w, r, "get conversation", err, "conversation_id", id)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// @Summary      Start a conversation
// @Tags         conversations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body conversationCreateRequest true "Conversation"
// @Success      201  {object}  domain.Conversation
// @Failure      400  {object}  errorResponse
// @Router       /conversations [post]
func handleStartConversation(convSvc *service.ConversationService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req conversationCreateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		user := CurrentUser(r)
		conv, err := convSvc.Start(r.Context(), user.ID, service.StartInput{
			Title:          req.Title,
			Topic:          req.Topic,
			Description:    req.Description,
			OpeningMessage: req.OpeningMessage,
			Tags:           req.Tags,
		})
		if err != nil {
			errs.write(w, r, "start conversation", err, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusCreated, conv)
	}
}

// @Summary      Join a conversation
// @Description  Become the responder of a conversation waiting in the queue
// @Tags         conversations
// @Security     BearerAuth
// @Produce      json
// @Param        conversationID path int true "Conversation ID"
// @Success      200  {object}  domain.Conversation
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /conversations/{conversationID}/join [post]
func handleJoinConversation(convSvc *service.ConversationService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "conversationID", "conversation")
		if !ok {
			return
		}
		user := CurrentUser(r)
		conv, err := convSvc.Join(r.Context(), id, user.ID)
		if err != nil {
			errs.write(w, r, "join conversation", err, "conversation_id", id, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	}
}

func handleUpdateConversation(convSvc *service.ConversationService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "conversationID", "conversation")
		if !ok {
			return
		}
		var req statusUpdateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		user := CurrentUser(r)
		conv, err := convSvc.UpdateStatus(r.Context(), id, user.ID, req.Status)
		if err != nil {
			errs.write(w, r, "update conversation", err, "conversation_id", id, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	}
}

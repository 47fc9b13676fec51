package httpserver

import (
	"net/http"

	"github.com/Carig-G/the-bench/internal/service"
)

type messageCreateRequest struct {
	ConversationID  int64  `json:"conversationId"`
	Content         string `json:"content"`
	ParentMessageID *int64 `json:"parentMessageId"`
}

type messageEditRequest struct {
	Content string `json:"content"`
}

// @Summary      Post a message
// @Tags         messages
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body messageCreateRequest true "Message"
// @Success      201  {object}  domain.MessageView
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /messages [post]
func handleCreateMessage(msgSvc *service.MessageService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req messageCreateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		user := CurrentUser(r)
		msg, err := msgSvc.Post(r.Context(), user.ID, service.PostInput{
			ConversationID:  req.ConversationID,
			Content:         req.Content,
			ParentMessageID: req.ParentMessageID,
		})
		if err != nil {
			errs.write(w, r, "post message", err, "conversation_id", req.ConversationID, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	}
}

// @Summary      List messages
// @Description  Public messages for everyone; the full conversation for participants and paying readers
// @Tags         messages
// @Produce      json
// @Param        conversationID path int true "Conversation ID"
// @Success      200  {object}  service.Visibility
// @Failure      404  {object}  errorResponse
// @Router       /messages/conversation/{conversationID} [get]
func handleListMessages(msgSvc *service.MessageService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "conversationID", "conversation")
		if !ok {
			return
		}
		vis, err := msgSvc.Visible(r.Context(), id, viewerID(r))
		if err != nil {
			errs.write(w, r, "list messages", err, "conversation_id", id)
			return
		}
		writeJSON(w, http.StatusOK, vis)
	}
}

func handleEditMessage(msgSvc *service.MessageService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "messageID", "message")
		if !ok {
			return
		}
		var req messageEditRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		user := CurrentUser(r)
		msg, err := msgSvc.Edit(r.Context(), user.ID, id, req.Content)
		if err != nil {
			errs.write(w, r, "edit message", err, "message_id", id, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

func handleDeleteMessage(msgSvc *service.MessageService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "messageID", "message")
		if !ok {
			return
		}
		user := CurrentUser(r)
		if err := msgSvc.Delete(r.Context(), user.ID, id); err != nil {
			errs.write(w, r, "delete message", err, "message_id", id, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Message deleted"})
	}
}

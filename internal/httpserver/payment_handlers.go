package httpserver

import (
	"net/http"

	"github.com/Carig-G/the-bench/internal/service"
)

type paymentCreateRequest struct {
	ConversationID int64    `json:"conversationId"`
	Amount         *float64 `json:"amount"`
}

func handleCheckPayment(paySvc *service.PaymentService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "conversationID", "conversation")
		if !ok {
			return
		}
		user := CurrentUser(r)
		check, err := paySvc.Check(r.Context(), id, user.ID)
		if err != nil {
			errs.write(w, r, "check payment", err, "conversation_id", id, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusOK, check)
	}
}

// @Summary      Unlock a conversation
// @Description  Record a one-time payment; amount is in currency units and defaults to the configured price
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body paymentCreateRequest true "Payment"
// @Success      201  {object}  service.Receipt
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /payments [post]
func handleCreatePayment(paySvc *service.PaymentService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentCreateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		user := CurrentUser(r)
		receipt, err := paySvc.Create(r.Context(), user.ID, service.CreatePaymentInput{
			ConversationID: req.ConversationID,
			Amount:         req.Amount,
		})
		if err != nil {
			errs.write(w, r, "create payment", err, "conversation_id", req.ConversationID, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusCreated, receipt)
	}
}

func handlePaymentHistory(paySvc *service.PaymentService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		items, err := paySvc.History(r.Context(), user.ID)
		if err != nil {
			errs.write(w, r, "payment history", err, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func handleRevenue(paySvc *service.PaymentService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "conversationID", "conversation")
		if !ok {
			return
		}
		user := CurrentUser(r)
		rev, err := paySvc.Revenue(r.Context(), id, user.ID)
		if err != nil {
			errs.write(w, r, "revenue", err, "conversation_id", id, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusOK, rev)
	}
}

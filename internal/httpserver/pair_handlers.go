package httpserver

import (
	"context"
	"net/http"

	"github.com/Carig-G/the-bench/internal/domain"
	"github.com/Carig-G/the-bench/internal/service"
)

func handleListPairs(pairSvc *service.PairService, errs errorWriter) http.HandlerFunc {
	return pairListing("list pairs", pairSvc.List, errs)
}

func handleRevealEligible(pairSvc *service.PairService, errs errorWriter) http.HandlerFunc {
	return pairListing("reveal eligible pairs", pairSvc.RevealEligible, errs)
}

func handleRevealedPairs(pairSvc *service.PairService, errs errorWriter) http.HandlerFunc {
	return pairListing("revealed pairs", pairSvc.Revealed, errs)
}

func pairListing(op string, list func(context.Context, int64) ([]*domain.PairView, error), errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		pairs, err := list(r.Context(), user.ID)
		if err != nil {
			errs.write(w, r, op, err, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusOK, pairs)
	}
}

func handlePairStats(pairSvc *service.PairService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		stats, err := pairSvc.Stats(r.Context(), user.ID)
		if err != nil {
			errs.write(w, r, "pair stats", err, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func handlePairConversations(pairSvc *service.PairService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "pairID", "pair")
		if !ok {
			return
		}
		user := CurrentUser(r)
		convs, err := pairSvc.Conversations(r.Context(), id, user.ID)
		if err != nil {
			errs.write(w, r, "pair conversations", err, "pair_id", id, "user_id", user.ID)
			return
		}
		if convs == nil {
			convs = []*domain.ConversationSummary{}
		}
		writeJSON(w, http.StatusOK, convs)
	}
}

// @Summary      Request identity reveal
// @Description  Consent to reveal identities; the pair is revealed once both members consent
// @Tags         pairs
// @Security     BearerAuth
// @Produce      json
// @Param        pairID path int true "Pair ID"
// @Success      200  {object}  service.RevealResult
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /pairs/{pairID}/request-reveal [post]
func handleRequestReveal(pairSvc *service.PairService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "pairID", "pair")
		if !ok {
			return
		}
		user := CurrentUser(r)
		res, err := pairSvc.RequestReveal(r.Context(), id, user.ID)
		if err != nil {
			errs.write(w, r, "request reveal", err, "pair_id", id, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

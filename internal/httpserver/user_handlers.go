package httpserver

import (
	"net/http"

	"github.com/Carig-G/the-bench/internal/domain"
	"github.com/Carig-G/the-bench/internal/service"
)

type profileRequest struct {
	DisplayName *string `json:"display_name"`
	ContactInfo *string `json:"contact_info"`
}

// @Summary      Get Current User
// @Description  Own profile including the private display name and contact info
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  service.Profile
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func handleMe(userSvc *service.UserService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		profile, err := userSvc.Me(r.Context(), user.ID)
		if err != nil {
			errs.write(w, r, "me", err, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// @Summary      Shuffle moniker
// @Description  Assign a new random public name
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  service.Profile
// @Router       /auth/shuffle-moniker [post]
func handleShuffleMoniker(userSvc *service.UserService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		profile, err := userSvc.ShuffleMoniker(r.Context(), user.ID)
		if err != nil {
			errs.write(w, r, "shuffle moniker", err, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// @Summary      Update profile
// @Description  Set or clear (empty string) the display name and contact info
// @Tags         auth
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body profileRequest true "Profile fields"
// @Success      200  {object}  service.Profile
// @Failure      400  {object}  errorResponse
// @Router       /auth/profile [patch]
func handleUpdateProfile(userSvc *service.UserService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		user := CurrentUser(r)
		profile, err := userSvc.UpdateProfile(r.Context(), user.ID, domain.ProfilePatch{
			DisplayName: req.DisplayName,
			ContactInfo: req.ContactInfo,
		})
		if err != nil {
			errs.write(w, r, "update profile", err, "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

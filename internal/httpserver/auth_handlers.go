package httpserver

import (
	"net/http"

	"github.com/Carig-G/the-bench/internal/domain"
	"github.com/Carig-G/the-bench/internal/service"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// @Summary      Register a new user
// @Description  Register a new user with a random public moniker and return an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body credentialsRequest true "Register input"
// @Success      201  {object}  service.TokenResponse
// @Failure      400  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /auth/register [post]
func handleRegister(authSvc *service.AuthService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, err := authSvc.Register(r.Context(), service.RegisterInput{
			Username: req.Username,
			Password: req.Password,
		})
		if domain.KindOf(err) == domain.KindConflict {
			errs.writeStatus(w, r, http.StatusConflict, "register", err)
			return
		}
		if err != nil {
			errs.write(w, r, "register", err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

// @Summary      Login
// @Description  Login with username and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body credentialsRequest true "Login input"
// @Success      200  {object}  service.TokenResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/login [post]
func handleLogin(authSvc *service.AuthService, errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, err := authSvc.Login(r.Context(), service.LoginInput{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			errs.write(w, r, "login", err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

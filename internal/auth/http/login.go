package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/redgum-dev/gatehouse/internal/auth/service"
	"github.com/redgum-dev/gatehouse/pkg/httpx"
	"github.com/redgum-dev/gatehouse/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/login.
type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Validates a username/password pair and issues an access/refresh token pair.
//	@Description	All credential failures return the same 401 regardless of whether the username exists.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	{object}	LoginRequest	true	"Credentials"
//	@Success		200		{object}	TokenResponse	"access_token, refresh_token, token_type, expires_in"
//	@Failure		400		{object}	ErrorResponse	"error, error_description"
//	@Failure		401		{object}	ErrorResponse	"error, error_description"
//	@Failure		500		{object}	ErrorResponse	"error, error_description"
//	@Header			200		{string}	Cache-Control	"no-store"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		errInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.AuthService.Login(ctx, username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthenticationFailed):
			errInvalidCredentials.WriteError(w)
		default:
			log.Error("login failed", "err", err)
			errServerError.WriteError(w)
		}
		return
	}

	response := TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(h.AuthService.AccessTTL / time.Second),
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, response)
}

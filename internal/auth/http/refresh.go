package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/redgum-dev/gatehouse/internal/auth/domain"
	"github.com/redgum-dev/gatehouse/internal/auth/service"
	"github.com/redgum-dev/gatehouse/pkg/httpx"
	"github.com/redgum-dev/gatehouse/pkg/slogx"
)

// RefreshHandler serves POST /v1/auth/refresh.
type RefreshHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Refresh
//	@Description	Exchanges an expired access token plus its refresh token for a new access token.
//	@Description	The refresh token itself is returned unchanged and stays valid until its stored expiry.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	{object}	RefreshRequest	true	"Previously issued token pair"
//	@Success		200		{object}	TokenResponse	"access_token, refresh_token, token_type, expires_in"
//	@Failure		400		{object}	ErrorResponse	"error, error_description"
//	@Failure		401		{object}	ErrorResponse	"error, error_description"
//	@Failure		500		{object}	ErrorResponse	"error, error_description"
//	@Header			200		{string}	Cache-Control	"no-store"
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AccessToken == "" || req.RefreshToken == "" {
		errInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.AuthService.Refresh(ctx, domain.TokenPair{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			errInvalidToken.WriteError(w)
		case errors.Is(err, service.ErrInvalidRefresh):
			errInvalidRefresh.WriteError(w)
		default:
			log.Error("refresh failed", "err", err)
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

package http

import (
	"net/http"

	"github.com/redgum-dev/gatehouse/pkg/httpx"
)

// UserInfoHandler serves GET /v1/userinfo. It echoes the principal the
// authentication middleware extracted from the bearer token; no store
// round trip is needed because the token carries name and roles.
type UserInfoHandler struct{}

// ServeHTTP godoc
//
//	@Summary		Get user information
//	@Description	Returns the authenticated principal's username and roles as carried in the access token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	UserInfoResponse	"username, roles"
//	@Failure		401	{object}	ErrorResponse		"Invalid or missing access token"
//	@Router			/v1/userinfo [get].
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := httpx.UsernameFromCtx(ctx)
	if username == "" {
		errInvalidToken.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, UserInfoResponse{
		Username: username,
		Roles:    httpx.RolesFromCtx(ctx),
	})
}

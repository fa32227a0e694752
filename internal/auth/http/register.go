package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/redgum-dev/gatehouse/internal/auth/service"
	"github.com/redgum-dev/gatehouse/pkg/httpx"
	"github.com/redgum-dev/gatehouse/pkg/slogx"
)

// RegisterHandler serves POST /v1/auth/register.
type RegisterHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Register
//	@Description	Creates a user account with an argon2id password hash and assigns the requested roles.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	{object}	RegisterRequest		true	"New account details"
//	@Success		201		{object}	RegisterResponse	"user_id, username, roles"
//	@Failure		400		{object}	ErrorResponse		"error, error_description"
//	@Failure		409		{object}	ErrorResponse		"error, error_description"
//	@Failure		500		{object}	ErrorResponse		"error, error_description"
//	@Router			/v1/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		errInvalidRequest.WriteError(w)
		return
	}

	user, err := h.AuthService.Register(ctx, service.RegisterRequest{
		Username:  username,
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Roles:     req.Roles,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			errUsernameTaken.WriteError(w)
		case errors.Is(err, service.ErrUnknownRole):
			errUnknownRole.WriteError(w)
		default:
			log.Error("registration failed", "err", err)
			errServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, RegisterResponse{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    req.Roles,
	})
}

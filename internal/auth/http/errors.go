package http

import (
	"net/http"

	"github.com/redgum-dev/gatehouse/pkg/httpx"
)

// ErrorResponse is the wire shape for every error this API returns.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// apiError pairs an HTTP status with its wire body so handlers can map
// service sentinels to responses in one statement.
type apiError struct {
	Status int
	Code   string
	Desc   string
}

func (e apiError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.Status, ErrorResponse{
		Error:            e.Code,
		ErrorDescription: e.Desc,
	})
}

var (
	errInvalidRequest = apiError{
		Status: http.StatusBadRequest,
		Code:   "invalid_request",
		Desc:   "The request body is missing or malformed.",
	}
	errInvalidContentType = apiError{
		Status: http.StatusUnsupportedMediaType,
		Code:   "invalid_request",
		Desc:   "Content-Type must be application/json.",
	}
	errInvalidCredentials = apiError{
		Status: http.StatusUnauthorized,
		Code:   "invalid_credentials",
		Desc:   "Invalid username or password.",
	}
	errInvalidToken = apiError{
		Status: http.StatusUnauthorized,
		Code:   "invalid_token",
		Desc:   "The access token could not be verified.",
	}
	errInvalidRefresh = apiError{
		Status: http.StatusUnauthorized,
		Code:   "invalid_refresh",
		Desc:   "The refresh request was rejected.",
	}
	errUsernameTaken = apiError{
		Status: http.StatusConflict,
		Code:   "username_taken",
		Desc:   "A user with that username already exists.",
	}
	errUnknownRole = apiError{
		Status: http.StatusBadRequest,
		Code:   "unknown_role",
		Desc:   "One or more requested roles do not exist.",
	}
	errServerError = apiError{
		Status: http.StatusInternalServerError,
		Code:   "server_error",
		Desc:   "The server encountered an unexpected condition.",
	}
)

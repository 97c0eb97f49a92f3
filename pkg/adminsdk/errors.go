package adminsdk

import (
	"fmt"
	"net/http"

	"github.com/forkful/menuboard/pkg/httpx"
)

const (
	ErrorCodeBadRequest         = "bad_request"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeUnauthorized       = "unauthorized"
	ErrorCodeForbidden          = "forbidden"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeConflict           = "conflict"
	ErrorCodeWeakPassword       = "weak_password"
	ErrorCodeAccountDisabled    = "account_disabled"
	ErrorCodeServerError        = "server_error"
)

// APIError is the wire shape of every failed admin API response. It
// implements error so the SDK client can surface it directly.
type APIError struct {
	StatusCode int `json:"-"`

	Code    string `json:"error"`
	Message string `json:"message"`

	// Details carries field-level information, e.g. the list of violated
	// password rules.
	Details []string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError sends the error as JSON on the response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, e.StatusCode, e)
}

// WithDetails returns a copy carrying field-level details.
func (e *APIError) WithDetails(details ...string) *APIError {
	clone := *e
	clone.Details = details
	return &clone
}

var (
	ErrBadRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeBadRequest,
		Message:    "the request is malformed or missing required fields",
	}

	// ErrInvalidCredentials is shared by unknown-email and wrong-password
	// failures. The message must stay identical for both.
	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidCredentials,
		Message:    "invalid email or password",
	}

	ErrUnauthorized = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeUnauthorized,
		Message:    "missing or invalid session",
	}

	ErrForbidden = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeForbidden,
		Message:    "you do not have permission to perform this action",
	}

	ErrNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeNotFound,
		Message:    "the requested resource does not exist",
	}

	ErrConflict = &APIError{
		StatusCode: http.StatusConflict,
		Code:       ErrorCodeConflict,
		Message:    "the resource already exists",
	}

	ErrWeakPassword = &APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       ErrorCodeWeakPassword,
		Message:    "the password does not meet the strength policy",
	}

	ErrAccountDisabled = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeAccountDisabled,
		Message:    "this account has been disabled",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Message:    "an internal error occurred",
	}
)

package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/yungbote/leontief-backend/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// StatusClientClosedRequest is nginx's non-standard status for a request the
// client abandoned before a response was ready.
const StatusClientClosedRequest = 499

// FromError resolves err to a status and code. An *Error anywhere in the
// chain wins; otherwise the domain sentinels and context errors decide, and
// anything else is a 500.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		return New(http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, pkgerrors.ErrOutOfRange):
		return New(http.StatusBadRequest, "out_of_range", err)
	case errors.Is(err, pkgerrors.ErrDimensionMismatch):
		return New(http.StatusUnprocessableEntity, "dimension_mismatch", err)
	case errors.Is(err, pkgerrors.ErrSingularMatrix):
		return New(http.StatusUnprocessableEntity, "singular_matrix", err)
	case errors.Is(err, pkgerrors.ErrConflict):
		return New(http.StatusConflict, "conflict", err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, context.Canceled):
		return New(StatusClientClosedRequest, "canceled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return New(http.StatusGatewayTimeout, "timeout", err)
	default:
		return New(http.StatusInternalServerError, "internal", err)
	}
}

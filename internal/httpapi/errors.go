package httpapi

import (
	"errors"
	"net/http"

	"github.com/jfenske/homeledger/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeErr(w, http.StatusBadRequest, msg, "invalid_argument")
}

// writeDomainErr maps sentinel errors from the service layer onto HTTP
// statuses. Unknown errors never leak details to the client.
func (s *Server) writeDomainErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errs.ErrUnauthenticated):
		writeErr(w, http.StatusUnauthorized, "unauthenticated", "unauthenticated")
	case errors.Is(err, errs.ErrInvalid):
		writeErr(w, http.StatusBadRequest, err.Error(), "invalid_argument")
	case errors.Is(err, errs.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not_found", "not_found")
	case errors.Is(err, errs.ErrForbidden):
		writeErr(w, http.StatusForbidden, "permission_denied", "permission_denied")
	case errors.Is(err, errs.ErrConflict):
		writeErr(w, http.StatusConflict, err.Error(), "already_exists")
	case errors.Is(err, errs.ErrInactiveAccount):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "inactive_account")
	case errors.Is(err, errs.ErrInternal):
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErr(w, http.StatusInternalServerError, "internal error", "internal")
	default:
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErr(w, http.StatusInternalServerError, "internal error", "internal")
	}
}

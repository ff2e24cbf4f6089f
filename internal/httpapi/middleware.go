package httpapi

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const ctxKeyOwner ctxKey = "ownerID"

// authenticate resolves the caller's identity and stores the owner id in the
// request context. A request that cannot be resolved is rejected before any
// handler runs. Freshly seen owners get their default accounts provisioned
// here so the very first request already operates on a usable ledger.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := s.resolver.Resolve(r)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "unauthenticated", "unauthenticated")
			return
		}
		s.lifecycle.EnsureSeeded(r.Context(), ownerID)
		ctx := context.WithValue(r.Context(), ctxKeyOwner, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ownerFromContext returns the owner id stored by authenticate.
func ownerFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyOwner).(string)
	return id
}

// requireJSON ensures the request has Content-Type application/json
// (optionally with params). Writes 415 and returns false otherwise.
func requireJSON(w http.ResponseWriter, r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		writeErr(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "unsupported_media_type")
		return false
	}
	mime := strings.ToLower(strings.TrimSpace(strings.Split(ct, ";")[0]))
	if mime != "application/json" {
		writeErr(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "unsupported_media_type")
		return false
	}
	return true
}

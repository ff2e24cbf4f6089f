package httpapi

import "net/http"

// deleteUserData removes every record owned by the caller and reports what was
// deleted. The next authenticated request re-seeds the default accounts.
func (s *Server) deleteUserData(w http.ResponseWriter, r *http.Request) {
	counts, err := s.lifecycle.DeleteAllOwnedData(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, counts)
}

package httpapi

import (
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jfenske/homeledger/internal/service/account"
)

func (s *Server) postAccount(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req postAccountRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	acc, err := s.accounts.Create(r.Context(), ownerFromContext(r.Context()), account.CreateInput{
		Name:                req.Name,
		Type:                req.Type,
		ParentCategory:      req.ParentCategory,
		SubCategory:         req.SubCategory,
		OpeningBalanceMinor: req.OpeningBalanceMinor,
		Icon:                req.Icon,
		Color:               req.Color,
	})
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, s.toAccountResponse(acc))
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accs, err := s.accounts.List(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	out := make([]accountResponse, 0, len(accs))
	for _, a := range accs {
		out = append(out, s.toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	acc, err := s.accounts.Get(r.Context(), ownerFromContext(r.Context()), id)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, s.toAccountResponse(acc))
}

func (s *Server) patchAccount(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	var req patchAccountRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	acc, err := s.accounts.Update(r.Context(), ownerFromContext(r.Context()), id, account.UpdateInput{
		Name:   req.Name,
		Icon:   req.Icon,
		Color:  req.Color,
		Active: req.Active,
	})
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, s.toAccountResponse(acc))
}

func (s *Server) deactivateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	if err := s.accounts.Deactivate(r.Context(), ownerFromContext(r.Context()), id); err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

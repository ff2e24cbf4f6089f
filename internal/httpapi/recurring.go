package httpapi

import (
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jfenske/homeledger/internal/service/recurring"
)

func (s *Server) postRecurring(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req postRecurringRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	rt, err := s.recurring.Create(r.Context(), ownerFromContext(r.Context()), recurring.CreateInput{
		AmountMinor:      req.AmountMinor,
		DebitAccountID:   req.DebitAccountID,
		CreditAccountID:  req.CreditAccountID,
		Frequency:        req.Frequency,
		DayOfRecurrence:  req.DayOfRecurrence,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		NotifyBeforeDays: req.NotifyBeforeDays,
		Note:             req.Note,
	})
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, s.toRecurringResponse(rt))
}

func (s *Server) listRecurring(w http.ResponseWriter, r *http.Request) {
	rts, err := s.recurring.List(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	out := make([]recurringResponse, 0, len(rts))
	for _, rt := range rts {
		out = append(out, s.toRecurringResponse(rt))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid recurring transaction id")
		return
	}
	rt, err := s.recurring.Get(r.Context(), ownerFromContext(r.Context()), id)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, s.toRecurringResponse(rt))
}

func (s *Server) patchRecurring(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid recurring transaction id")
		return
	}
	var req patchRecurringRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	rt, err := s.recurring.Update(r.Context(), ownerFromContext(r.Context()), id, recurring.UpdateInput{
		AmountMinor:      req.AmountMinor,
		DebitAccountID:   req.DebitAccountID,
		CreditAccountID:  req.CreditAccountID,
		Frequency:        req.Frequency,
		DayOfRecurrence:  req.DayOfRecurrence,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		NotifyBeforeDays: req.NotifyBeforeDays,
		Note:             req.Note,
		Active:           req.Active,
	})
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, s.toRecurringResponse(rt))
}

func (s *Server) deleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid recurring transaction id")
		return
	}
	if err := s.recurring.Delete(r.Context(), ownerFromContext(r.Context()), id); err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

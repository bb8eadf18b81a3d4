package http

import (
	"net/http"
	"strings"

	"finsight/internal/core"
)

type transactionRequest struct {
	Date     string  `json:"date"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tx, err := s.ledger.CreateTransaction(r.Context(), core.Transaction{
		UserID:   userID,
		Date:     strings.TrimSpace(req.Date),
		Category: strings.TrimSpace(req.Category),
		Amount:   req.Amount,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.bumpUserEpoch(userID)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	month := strings.TrimSpace(r.URL.Query().Get("month"))
	txs, err := s.ledger.ListTransactions(r.Context(), userID, month)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tx, err := s.ledger.GetTransaction(r.Context(), userID, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tx := core.Transaction{
		ID:       id,
		UserID:   userID,
		Date:     strings.TrimSpace(req.Date),
		Category: strings.TrimSpace(req.Category),
		Amount:   req.Amount,
	}
	if err := s.ledger.UpdateTransaction(r.Context(), tx); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.bumpUserEpoch(userID)
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), userID, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.bumpUserEpoch(userID)
	w.WriteHeader(http.StatusNoContent)
}

type budgetRequest struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req budgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	b := core.Budget{
		UserID: userID,
		Month:  strings.TrimSpace(req.Month),
		Amount: req.Amount,
	}
	if err := s.ledger.SetBudget(r.Context(), b); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.bumpUserEpoch(userID)
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		writeError(w, http.StatusBadRequest, "missing month query parameter")
		return
	}

	b, err := s.ledger.GetBudget(r.Context(), userID, month)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

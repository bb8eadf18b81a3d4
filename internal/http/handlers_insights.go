package http

import (
	"net/http"
	"strings"
	"time"

	"finsight/internal/analytics"
	"finsight/internal/core"
)

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	ids, err := s.insights.Anomalies(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"anomaly_ids": ids})
}

func (s *Server) handleRecommendBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	amount, err := s.insights.RecommendBudget(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{"recommended_budget": amount})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	amount, err := s.insights.PredictMonthSpend(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{"predicted_spend": amount})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	result, err := s.insights.Forecast(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if result.Daily == nil {
		result.Daily = []analytics.ForecastPoint{}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleOptimizeBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		month = time.Now().Format(core.MonthLayout)
	}

	alerts, err := s.insights.OptimizeBudget(r.Context(), userID, month)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []analytics.Alert{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"month": month, "alerts": alerts})
}

func (s *Server) handleSavings(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	report, err := s.insights.Savings(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCategoryEfficiency(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	grades, err := s.insights.CategoryEfficiency(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if grades == nil {
		grades = []analytics.CategoryEfficiency{}
	}

	writeJSON(w, http.StatusOK, grades)
}

func (s *Server) handleNecessityScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req analytics.PurchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	score, err := s.insights.NecessityScore(r.Context(), userID, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, score)
}

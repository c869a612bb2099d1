package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ReadinessBot/internal/definition"
	"ReadinessBot/internal/evaluation"
	"ReadinessBot/internal/models/domain"
	"ReadinessBot/internal/qualifying"
	"ReadinessBot/internal/scoring"
	"ReadinessBot/internal/utils/logger/sl"

	"github.com/google/uuid"
)

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", sl.Err(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{Error: &apiError{Code: code, Message: message}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", sl.Err(err))
	}
}

// respondDomainError maps catalog errors to HTTP statuses. Load failures are
// logged; clients only get a fixed message.
func (s *Server) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, definition.ErrLoading):
		respondError(w, http.StatusServiceUnavailable, "loading", "evaluation is loading")
	case errors.Is(err, definition.ErrNoEvaluation):
		respondError(w, http.StatusNotFound, "no_evaluation", "no evaluation available")
	default:
		s.log.Error("evaluation definition unavailable",
			slog.String("path", r.URL.Path), sl.Err(err))
		respondError(w, http.StatusServiceUnavailable, "unavailable", "evaluation is unavailable")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.catalog.Domain(); err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleGetDomain(w http.ResponseWriter, r *http.Request) {
	d, err := s.catalog.Domain()
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

type scoreEvaluationRequest struct {
	Answers map[uuid.UUID]uuid.UUID `json:"answers"`
}

type scoreEvaluationResponse struct {
	Scores   scoring.Snapshot `json:"scores"`
	Progress scoring.Progress `json:"progress"`
	Band     scoring.Band     `json:"band"`
}

func (s *Server) handleScoreEvaluation(w http.ResponseWriter, r *http.Request) {
	d, err := s.catalog.Domain()
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	var req scoreEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	session, err := evaluation.NewSession(d)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	for criterionID, optionID := range req.Answers {
		if err := session.AnswerCriterion(criterionID, optionID); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_answer", err.Error())
			return
		}
	}

	snap := session.Scores()
	respondJSON(w, http.StatusOK, scoreEvaluationResponse{
		Scores:   snap,
		Progress: session.Progress(),
		Band:     snap.Band(),
	})
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"questions": s.questions,
		"maxScore":  qualifying.MaxFor(s.questions),
		"threshold": qualifying.QualificationThreshold,
	})
}

type scoreAssessmentRequest struct {
	Answers map[string]string `json:"answers"`
}

type scoreAssessmentResponse struct {
	domain.AssessmentResult
	Answers []domain.AssessmentAnswer `json:"answers"`
}

func (s *Server) handleScoreAssessment(w http.ResponseWriter, r *http.Request) {
	var req scoreAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	selections := make(map[int]string, len(req.Answers))
	for key, optionID := range req.Answers {
		qid, err := strconv.Atoi(key)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "question ids must be integers")
			return
		}
		selections[qid] = optionID
	}

	res, answers, err := qualifying.ScoreAnswers(s.questions, selections)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_answer", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, scoreAssessmentResponse{AssessmentResult: res, Answers: answers})
}

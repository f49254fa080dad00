package api

import (
	"claims_manager/internal/domain"
	"claims_manager/internal/query"
	"claims_manager/internal/repository"
	"claims_manager/internal/workflow"
	"claims_manager/pkg/crypto"
	"claims_manager/pkg/validator"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const dateLayout = "2006-01-02"

type APIHandler struct {
	engine         *workflow.Engine
	queries        *query.Engine
	signer         *crypto.Signer
	logger         *slog.Logger
	requestTimeout time.Duration
}

func NewAPIHandler(
	engine *workflow.Engine,
	queries *query.Engine,
	signer *crypto.Signer,
	logger *slog.Logger,
) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &APIHandler{
		engine:         engine,
		queries:        queries,
		signer:         signer,
		logger:         logger,
		requestTimeout: 30 * time.Second,
	}
}

type SubmitClaimRequest struct {
	PolicyholderID   string            `json:"policyholder_id"`
	PolicyholderName string            `json:"policyholder_name"`
	Type             string            `json:"type"`
	Amount           float64           `json:"amount"`
	DateOfIncident   string            `json:"date_of_incident"`
	Description      string            `json:"description"`
	Documents        []domain.Document `json:"documents,omitempty"`
	Signature        string            `json:"signature,omitempty"`
}

type TransitionRequest struct {
	Target     string `json:"target"`
	AssignedTo string `json:"assigned_to,omitempty"`
	Note       string `json:"note,omitempty"`
}

type AddNoteRequest struct {
	Text string `json:"text"`
}

type EditClaimRequest struct {
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	DateSubmitted string  `json:"date_submitted"`
	AssignedTo    *string `json:"assigned_to,omitempty"`
}

type ErrorResponse struct {
	Error  string                 `json:"error"`
	Code   string                 `json:"code,omitempty"`
	Fields []validator.FieldError `json:"fields,omitempty"`
}

// actorFromRequest builds the acting identity from the request headers.
// Authentication itself is out of scope here; an upstream proxy is expected
// to have verified the identity before setting these.
func actorFromRequest(r *http.Request) (domain.Actor, bool) {
	id := r.Header.Get("X-Actor-ID")
	role := r.Header.Get("X-Actor-Role")
	if id == "" || role == "" {
		return domain.Actor{}, false
	}
	return domain.Actor{
		ID:          id,
		Role:        domain.Role(role),
		DisplayName: r.Header.Get("X-Actor-Name"),
	}, true
}

func (h *APIHandler) SubmitClaimHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	actor, ok := actorFromRequest(r)
	if !ok {
		h.sendError(w, "Actor headers are required", http.StatusUnauthorized, "MISSING_ACTOR", nil)
		return
	}

	var req SubmitClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST", nil)
		return
	}

	if req.Signature != "" {
		valid, err := h.signer.VerifySubmission(req.PolicyholderID, req.Amount, req.Type, req.Signature)
		if err != nil || !valid {
			h.logger.Warn("Invalid submission signature",
				slog.String("policyholder_id", req.PolicyholderID))
			h.sendError(w, "Invalid signature", http.StatusUnauthorized, "INVALID_SIGNATURE", nil)
			return
		}
	}

	incident, err := parseDate(req.DateOfIncident)
	if err != nil {
		h.sendError(w, "date_of_incident must be YYYY-MM-DD", http.StatusBadRequest, "INVALID_DATE", nil)
		return
	}

	claim, err := h.engine.Submit(ctx, actor, workflow.SubmitRequest{
		Policyholder: domain.Policyholder{
			ID:   req.PolicyholderID,
			Name: req.PolicyholderName,
		},
		Type:           req.Type,
		Amount:         req.Amount,
		DateOfIncident: incident,
		Description:    req.Description,
		Documents:      req.Documents,
	})
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	h.sendJSON(w, claim, http.StatusCreated)
}

func (h *APIHandler) ListClaimsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	actor, ok := actorFromRequest(r)
	if !ok {
		h.sendError(w, "Actor headers are required", http.StatusUnauthorized, "MISSING_ACTOR", nil)
		return
	}

	q := r.URL.Query()
	opts := query.ListOptions{
		Status:    q.Get("status"),
		Search:    q.Get("q"),
		SortKey:   query.SortKey(q.Get("sort")),
		Direction: query.Direction(q.Get("dir")),
	}

	claims, err := h.queries.ListVisible(ctx, actor, opts)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	h.sendJSON(w, map[string]interface{}{
		"claims": claims,
		"count":  len(claims),
	}, http.StatusOK)
}

func (h *APIHandler) GetClaimHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	actor, ok := actorFromRequest(r)
	if !ok {
		h.sendError(w, "Actor headers are required", http.StatusUnauthorized, "MISSING_ACTOR", nil)
		return
	}

	claimID := r.PathValue("id")
	if claimID == "" {
		h.sendError(w, "Claim ID is required", http.StatusBadRequest, "MISSING_ID", nil)
		return
	}

	claim, err := h.engine.Get(ctx, claimID)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	if !h.queries.Visible(actor, claim) {
		h.sendError(w, "Claim not found", http.StatusNotFound, "NOT_FOUND", nil)
		return
	}

	h.sendJSON(w, claim, http.StatusOK)
}

func (h *APIHandler) TransitionClaimHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	actor, ok := actorFromRequest(r)
	if !ok {
		h.sendError(w, "Actor headers are required", http.StatusUnauthorized, "MISSING_ACTOR", nil)
		return
	}

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST", nil)
		return
	}

	claim, err := h.engine.Transition(ctx, actor, r.PathValue("id"), domain.Status(req.Target), req.AssignedTo, req.Note)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	h.sendJSON(w, claim, http.StatusOK)
}

func (h *APIHandler) AddNoteHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	actor, ok := actorFromRequest(r)
	if !ok {
		h.sendError(w, "Actor headers are required", http.StatusUnauthorized, "MISSING_ACTOR", nil)
		return
	}

	var req AddNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST", nil)
		return
	}

	claim, err := h.engine.AddNote(ctx, actor, r.PathValue("id"), req.Text)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	h.sendJSON(w, claim, http.StatusOK)
}

func (h *APIHandler) EditClaimHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	actor, ok := actorFromRequest(r)
	if !ok {
		h.sendError(w, "Actor headers are required", http.StatusUnauthorized, "MISSING_ACTOR", nil)
		return
	}

	var req EditClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST", nil)
		return
	}

	submitted, err := parseDate(req.DateSubmitted)
	if err != nil {
		h.sendError(w, "date_submitted must be YYYY-MM-DD", http.StatusBadRequest, "INVALID_DATE", nil)
		return
	}

	claim, err := h.engine.Edit(ctx, actor, r.PathValue("id"), workflow.EditRequest{
		Type:          req.Type,
		Amount:        req.Amount,
		DateSubmitted: submitted,
		AssignedTo:    req.AssignedTo,
	})
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	h.sendJSON(w, claim, http.StatusOK)
}

func (h *APIHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	actor, ok := actorFromRequest(r)
	if !ok {
		h.sendError(w, "Actor headers are required", http.StatusUnauthorized, "MISSING_ACTOR", nil)
		return
	}

	summary, err := h.queries.Summarize(ctx, actor)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	h.sendJSON(w, summary, http.StatusOK)
}

func (h *APIHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	}
	h.sendJSON(w, response, http.StatusOK)
}

// sendDomainError translates the engine's error taxonomy into HTTP codes.
func (h *APIHandler) sendDomainError(w http.ResponseWriter, err error) {
	var vErr *validator.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.sendError(w, vErr.Error(), http.StatusUnprocessableEntity, "VALIDATION_ERROR", vErr.Fields)
	case errors.Is(err, repository.ErrNotFound):
		h.sendError(w, "Claim not found", http.StatusNotFound, "NOT_FOUND", nil)
	case errors.Is(err, repository.ErrDuplicate):
		h.sendError(w, "Claim ID already exists", http.StatusConflict, "DUPLICATE_ID", nil)
	case errors.Is(err, workflow.ErrForbidden):
		h.sendError(w, err.Error(), http.StatusForbidden, "FORBIDDEN", nil)
	case errors.Is(err, workflow.ErrInvalidTransition):
		h.sendError(w, err.Error(), http.StatusConflict, "INVALID_TRANSITION", nil)
	case errors.Is(err, workflow.ErrEmptyNote):
		h.sendError(w, "Note text must not be empty", http.StatusBadRequest, "EMPTY_NOTE", nil)
	default:
		h.sendError(w, fmt.Sprintf("Request failed: %v", err), http.StatusInternalServerError, "SERVER_ERROR", nil)
	}
}

func (h *APIHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func (h *APIHandler) sendError(w http.ResponseWriter, message string, statusCode int, code string, fields []validator.FieldError) {
	errorResponse := ErrorResponse{
		Error:  message,
		Code:   code,
		Fields: fields,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponse)

	h.logger.Warn("API error response",
		slog.String("message", message),
		slog.String("code", code),
		slog.Int("status", statusCode))
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, value)
}

func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/claims", h.SubmitClaimHandler)
	mux.HandleFunc("GET /api/v1/claims", h.ListClaimsHandler)
	mux.HandleFunc("GET /api/v1/claims/{id}", h.GetClaimHandler)
	mux.HandleFunc("POST /api/v1/claims/{id}/transition", h.TransitionClaimHandler)
	mux.HandleFunc("POST /api/v1/claims/{id}/notes", h.AddNoteHandler)
	mux.HandleFunc("PUT /api/v1/claims/{id}", h.EditClaimHandler)
	mux.HandleFunc("GET /api/v1/summary", h.SummaryHandler)
	mux.HandleFunc("GET /api/health", h.HealthCheckHandler)
}

package interfaces

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"dogschool-admin/internal/audit"
	ledgerapp "dogschool-admin/internal/training/application"
	training "dogschool-admin/internal/training/domain"
)

const (
	clientsPrefix  = "/api/v1/clients/"
	sessionsPrefix = "/api/v1/sessions/"
)

// LedgerHandler handles session ledger APIs.
type LedgerHandler struct {
	service     *ledgerapp.LedgerService
	auditLogger audit.Logger
	logger      *log.Logger
}

// NewLedgerHandler constructs a handler.
func NewLedgerHandler(service *ledgerapp.LedgerService, auditLogger audit.Logger, logger *log.Logger) (*LedgerHandler, error) {
	if service == nil {
		return nil, errors.New("ledger handler: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &LedgerHandler{service: service, auditLogger: auditLogger, logger: logger}, nil
}

// ServeHTTP handles /api/v1/clients/{id}/sessions and /api/v1/sessions/{id}/complete.
func (h *LedgerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, clientsPrefix):
		parts := strings.Split(strings.TrimPrefix(path, clientsPrefix), "/")
		if len(parts) == 2 && parts[0] != "" && parts[1] == "sessions" {
			switch r.Method {
			case http.MethodGet:
				h.handleLedger(w, r, parts[0])
				return
			case http.MethodPost:
				h.handleSchedule(w, r, parts[0])
				return
			}
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
	case strings.HasPrefix(path, sessionsPrefix):
		parts := strings.Split(strings.TrimPrefix(path, sessionsPrefix), "/")
		if len(parts) == 2 && parts[0] != "" && parts[1] == "complete" {
			if r.Method == http.MethodPost {
				h.handleComplete(w, r, parts[0])
				return
			}
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *LedgerHandler) handleLedger(w http.ResponseWriter, r *http.Request, clientID string) {
	ledger, err := h.service.ClientLedger(r.Context(), clientID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger)
}

func (h *LedgerHandler) handleSchedule(w http.ResponseWriter, r *http.Request, clientID string) {
	var req ledgerapp.ScheduleSessionInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	req.ClientID = clientID
	session, err := h.service.ScheduleSession(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
	h.logAudit(r, "session.schedule", session.ID, map[string]any{
		"client_id":      session.ClientID,
		"session_number": session.SessionNumber,
		"date":           session.Date.Format("2006-01-02T15:04"),
	})
}

func (h *LedgerHandler) handleComplete(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := h.service.MarkCompleted(r.Context(), sessionID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
	h.logAudit(r, "session.complete", session.ID, map[string]any{
		"client_id":      session.ClientID,
		"session_number": session.SessionNumber,
		"finished":       session.FinishesProgram(),
	})
}

func (h *LedgerHandler) logAudit(r *http.Request, action, sessionID string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	if err := h.auditLogger.Log(r.Context(), audit.FromRequest(r, action, "session", sessionID, meta)); err != nil {
		h.logger.Printf("audit log failed: action=%s err=%v", action, err)
	}
}

type errorResponse struct {
	Error  string                `json:"error"`
	Fields []training.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *LedgerHandler) respondError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	var verr *training.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, training.ErrEmptyClientID), errors.Is(err, training.ErrEmptySessionID):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, training.ErrClientNotFound), errors.Is(err, training.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		h.logger.Printf("ledger request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

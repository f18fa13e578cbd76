package interfaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"dogschool-admin/internal/audit"
	"dogschool-admin/internal/auth"
	"dogschool-admin/internal/observability/metrics"
	settlementapp "dogschool-admin/internal/settlement/application"
	settlement "dogschool-admin/internal/settlement/domain"
)

const settlementsPath = "/api/v1/settlements"

// SettlementHandler handles trainer settlement APIs.
type SettlementHandler struct {
	service     *settlementapp.SettlementService
	auditLogger audit.Logger
	logger      *log.Logger
}

// NewSettlementHandler constructs a handler.
func NewSettlementHandler(service *settlementapp.SettlementService, auditLogger audit.Logger, logger *log.Logger) (*SettlementHandler, error) {
	if service == nil {
		return nil, errors.New("settlement handler: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SettlementHandler{service: service, auditLogger: auditLogger, logger: logger}, nil
}

// ServeHTTP handles routes under /api/v1/settlements.
func (h *SettlementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == settlementsPath && r.Method == http.MethodGet:
		h.handlePreview(w, r)
		return
	case path == settlementsPath+"/history" && r.Method == http.MethodGet:
		h.handleHistory(w, r)
		return
	case path == settlementsPath+"/record" && r.Method == http.MethodPost:
		h.handleRecord(w, r)
		return
	case path == settlementsPath+"/paid" && r.Method == http.MethodPost:
		h.handlePaid(w, r)
		return
	case path == settlementsPath+"/export.pdf" && r.Method == http.MethodGet:
		h.handleExport(w, r, "pdf")
		return
	case path == settlementsPath+"/export.xlsx" && r.Method == http.MethodGet:
		h.handleExport(w, r, "xlsx")
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *SettlementHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	trainerID := h.trainerFromQuery(r)
	if err := auth.EnsureTrainerAccess(r.Context(), trainerID); err != nil {
		h.respondError(w, err)
		return
	}
	stmt, err := h.service.Preview(r.Context(), trainerID, r.URL.Query().Get("month"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stmt)
}

func (h *SettlementHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	trainerID := h.trainerFromQuery(r)
	if err := auth.EnsureTrainerAccess(r.Context(), trainerID); err != nil {
		h.respondError(w, err)
		return
	}
	list, err := h.service.List(r.Context(), trainerID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if list == nil {
		list = []settlement.Settlement{}
	}
	writeJSON(w, http.StatusOK, list)
}

type monthRequest struct {
	TrainerID string `json:"trainer_id"`
	Month     string `json:"month"`
}

func (h *SettlementHandler) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req monthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	snap, err := h.service.Record(r.Context(), req.TrainerID, req.Month)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
	h.logAudit(r, "settlement.record", snap.TrainerID, snap.ID, map[string]any{
		"month": snap.Month,
		"total": snap.Total,
	})
}

func (h *SettlementHandler) handlePaid(w http.ResponseWriter, r *http.Request) {
	var req monthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	snap, err := h.service.MarkPaid(r.Context(), req.TrainerID, req.Month)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
	h.logAudit(r, "settlement.paid", snap.TrainerID, snap.ID, map[string]any{
		"month": snap.Month,
	})
}

func (h *SettlementHandler) handleExport(w http.ResponseWriter, r *http.Request, format string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveSettlementExport(format, result, time.Since(start))
	}()

	trainerID := h.trainerFromQuery(r)
	if err := auth.EnsureTrainerAccess(r.Context(), trainerID); err != nil {
		result = metrics.ResultError
		h.respondError(w, err)
		return
	}
	stmt, err := h.service.Preview(r.Context(), trainerID, r.URL.Query().Get("month"))
	if err != nil {
		result = metrics.ResultError
		h.respondError(w, err)
		return
	}

	var (
		data        []byte
		contentType string
	)
	switch format {
	case "pdf":
		data, err = BuildStatementPDF(stmt, time.Now())
		contentType = "application/pdf"
	default:
		data, err = BuildStatementXLSX(stmt)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export "+format+" error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"settlement-%s-%s.%s\"", stmt.TrainerID, stmt.Month, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, "settlement.export", stmt.TrainerID, "", map[string]any{
		"format": format,
		"month":  stmt.Month,
	})
}

// trainerFromQuery defaults to the caller's own id for trainers.
func (h *SettlementHandler) trainerFromQuery(r *http.Request) string {
	trainerID := strings.TrimSpace(r.URL.Query().Get("trainer_id"))
	if trainerID == "" && auth.RoleFromContext(r.Context()) == auth.RoleTrainer {
		trainerID = auth.SubjectFromContext(r.Context())
	}
	return trainerID
}

func (h *SettlementHandler) logAudit(r *http.Request, action, trainerID, settlementID string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	entry := audit.FromRequest(r, action, "settlement", settlementID, meta)
	entry.TrainerID = trainerID
	if err := h.auditLogger.Log(r.Context(), entry); err != nil {
		h.logger.Printf("audit log failed: action=%s err=%v", action, err)
	}
}

type fieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type errorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *SettlementHandler) respondError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	var (
		verr  *settlement.ValidationError
		fetch *settlement.FetchError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "validation failed",
			Fields: []fieldError{{Field: verr.Field, Error: verr.Err.Error()}},
		})
	case errors.Is(err, auth.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
	case errors.Is(err, settlement.ErrSettlementNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, settlement.ErrSettlementExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.As(err, &fetch):
		h.logger.Printf("settlement fetch failed: source=%s err=%v", fetch.Source, fetch.Err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "data store unavailable"})
	default:
		h.logger.Printf("settlement request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

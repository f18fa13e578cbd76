package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dogschool-admin/internal/audit"
	"dogschool-admin/internal/auth"
	settlementapp "dogschool-admin/internal/settlement/application"
	settlement "dogschool-admin/internal/settlement/domain"
	"dogschool-admin/internal/settlement/infrastructure/memory"
)

func TestSettlementHandler_PreviewOwnTrainer(t *testing.T) {
	handler, _ := newTestHandler(t, &stubRoster{clients: []settlement.ClientRecord{oneBlockClient()}})

	req := asRole(httptest.NewRequest(http.MethodGet, "/api/v1/settlements?month=2024-03", nil), auth.RoleTrainer, "t-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("status %d: %s", resp.Code, resp.Body.String())
	}
	var stmt settlement.Statement
	if err := json.NewDecoder(resp.Body).Decode(&stmt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stmt.TrainerID != "t-1" || stmt.Totals.Blocks != 1 || stmt.Totals.Total != 120 {
		t.Fatalf("unexpected statement %+v", stmt)
	}
}

func TestSettlementHandler_TrainerCannotReadOthers(t *testing.T) {
	handler, _ := newTestHandler(t, &stubRoster{})

	req := asRole(httptest.NewRequest(http.MethodGet, "/api/v1/settlements?trainer_id=t-2&month=2024-03", nil), auth.RoleTrainer, "t-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestSettlementHandler_ValidationError(t *testing.T) {
	handler, _ := newTestHandler(t, &stubRoster{})

	req := asRole(httptest.NewRequest(http.MethodGet, "/api/v1/settlements?trainer_id=t-1&month=03-2024", nil), auth.RoleAdmin, "boss")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Fields) != 1 || body.Fields[0].Field != "month" {
		t.Fatalf("unexpected fields %+v", body.Fields)
	}
}

func TestSettlementHandler_FetchErrorIsBadGateway(t *testing.T) {
	handler, _ := newTestHandler(t, &stubRoster{err: errors.New("connection refused")})

	req := asRole(httptest.NewRequest(http.MethodGet, "/api/v1/settlements?trainer_id=t-1&month=2024-03", nil), auth.RoleAdmin, "boss")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "connection refused") {
		t.Fatalf("fetch details must not leak: %s", resp.Body.String())
	}
}

func TestSettlementHandler_RecordPaidHistory(t *testing.T) {
	handler, auditLog := newTestHandler(t, &stubRoster{clients: []settlement.ClientRecord{oneBlockClient()}})

	body := `{"trainer_id":"t-1","month":"2024-03"}`
	req := asRole(httptest.NewRequest(http.MethodPost, "/api/v1/settlements/record", strings.NewReader(body)), auth.RoleAdmin, "boss")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("record status %d: %s", resp.Code, resp.Body.String())
	}

	req = asRole(httptest.NewRequest(http.MethodPost, "/api/v1/settlements/record", strings.NewReader(body)), auth.RoleAdmin, "boss")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second record, got %d", resp.Code)
	}

	req = asRole(httptest.NewRequest(http.MethodPost, "/api/v1/settlements/paid", strings.NewReader(body)), auth.RoleAdmin, "boss")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("paid status %d: %s", resp.Code, resp.Body.String())
	}

	req = asRole(httptest.NewRequest(http.MethodGet, "/api/v1/settlements/history?trainer_id=t-1", nil), auth.RoleAdmin, "boss")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("history status %d", resp.Code)
	}
	var list []settlement.Settlement
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].Status != settlement.SettlementStatusPaid {
		t.Fatalf("unexpected history %+v", list)
	}

	entries := auditLog.Entries()
	if len(entries) != 2 || entries[0].Action != "settlement.record" || entries[1].Action != "settlement.paid" {
		t.Fatalf("unexpected audit entries %+v", entries)
	}
}

func TestSettlementHandler_PaidWithoutRecordIsNotFound(t *testing.T) {
	handler, _ := newTestHandler(t, &stubRoster{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlements/paid", strings.NewReader(`{"trainer_id":"t-1","month":"2024-03"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestSettlementHandler_Export(t *testing.T) {
	handler, auditLog := newTestHandler(t, &stubRoster{clients: []settlement.ClientRecord{oneBlockClient()}})

	pdfReq := asRole(httptest.NewRequest(http.MethodGet, "/api/v1/settlements/export.pdf?month=2024-03", nil), auth.RoleTrainer, "t-1")
	pdfResp := httptest.NewRecorder()
	handler.ServeHTTP(pdfResp, pdfReq)
	if pdfResp.Code != http.StatusOK {
		t.Fatalf("pdf status %d", pdfResp.Code)
	}
	if pdfResp.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("pdf content-type mismatch")
	}
	if !bytes.HasPrefix(pdfResp.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("pdf body missing header")
	}

	xlsxReq := asRole(httptest.NewRequest(http.MethodGet, "/api/v1/settlements/export.xlsx?month=2024-03", nil), auth.RoleTrainer, "t-1")
	xlsxResp := httptest.NewRecorder()
	handler.ServeHTTP(xlsxResp, xlsxReq)
	if xlsxResp.Code != http.StatusOK {
		t.Fatalf("xlsx status %d", xlsxResp.Code)
	}
	if xlsxResp.Header().Get("Content-Type") != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("xlsx content-type mismatch")
	}
	// xlsx is a zip archive.
	if !bytes.HasPrefix(xlsxResp.Body.Bytes(), []byte("PK")) {
		t.Fatalf("xlsx body is not a zip archive")
	}
	if len(auditLog.Entries()) != 2 {
		t.Fatalf("expected 2 export audit entries, got %d", len(auditLog.Entries()))
	}
}

func TestSettlementHandler_UnknownRoute(t *testing.T) {
	handler, _ := newTestHandler(t, &stubRoster{})
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/settlements", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func newTestHandler(t *testing.T, roster settlementapp.RosterReader) (*SettlementHandler, *audit.MemoryLogger) {
	t.Helper()
	calc, err := settlement.NewCalculator(settlement.DefaultPricing())
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	svc, err := settlementapp.NewSettlementService(roster, memory.NewSettlementRepository(), calc)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	auditLog := &audit.MemoryLogger{}
	handler, err := NewSettlementHandler(svc, auditLog, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, auditLog
}

func asRole(r *http.Request, role auth.Role, subject string) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), role, subject))
}

func oneBlockClient() settlement.ClientRecord {
	day := func(d int) time.Time { return time.Date(2024, time.March, d, 10, 0, 0, 0, time.UTC) }
	return settlement.ClientRecord{
		ID:   "c-1",
		Name: "Luna",
		Sessions: []settlement.SessionRecord{
			{Number: 1, Date: day(1), Completed: true},
			{Number: 2, Date: day(2), Completed: true},
			{Number: 3, Date: day(3), Completed: true},
			{Number: 4, Date: day(4), Completed: true},
		},
		Evaluations: []settlement.EvaluationRecord{
			{ID: "e-1", ClientID: "c-1", TrainerID: "t-1", Result: settlement.EvaluationApproved, CreatedAt: time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)},
		},
	}
}

type stubRoster struct {
	clients []settlement.ClientRecord
	err     error
}

func (s *stubRoster) TrainerEvaluations(ctx context.Context, trainerID string) ([]settlement.EvaluationRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return nil, nil
}

func (s *stubRoster) TrainerClients(ctx context.Context, trainerID string) ([]settlement.ClientRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.clients, nil
}

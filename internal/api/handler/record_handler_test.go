package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deppen/custody-registry/internal/api/middleware"
	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/core/ports"
)

type stubRecordService struct {
	listFn     func(ctx context.Context, p domain.Principal, f ports.RecordFilter) ([]domain.Record, error)
	createFn   func(ctx context.Context, p domain.Principal, in ports.CreateRecordInput) (*domain.Record, error)
	completeFn func(ctx context.Context, p domain.Principal, id string, at time.Time) (*domain.Record, error)
}

func (s *stubRecordService) ListVisible(ctx context.Context, p domain.Principal, f ports.RecordFilter) ([]domain.Record, error) {
	return s.listFn(ctx, p, f)
}

func (s *stubRecordService) Summary(ctx context.Context, p domain.Principal, vc domain.ViewContext) (*ports.RecordSummary, error) {
	return &ports.RecordSummary{ActiveEscorts: 2, Closed: 1}, nil
}

func (s *stubRecordService) CreateRecord(ctx context.Context, p domain.Principal, in ports.CreateRecordInput) (*domain.Record, error) {
	return s.createFn(ctx, p, in)
}

func (s *stubRecordService) EditRecord(ctx context.Context, p domain.Principal, id string, in ports.UpdateRecordInput) (*domain.Record, error) {
	return nil, domain.ErrAuthorization
}

func (s *stubRecordService) DeleteRecord(ctx context.Context, p domain.Principal, id string) error {
	return domain.ErrAuthorization
}

func (s *stubRecordService) CompleteRecord(ctx context.Context, p domain.Principal, id string, at time.Time) (*domain.Record, error) {
	return s.completeFn(ctx, p, id, at)
}

var operator = domain.Principal{
	Email:    "op@policiapenal.pr.gov.br",
	Role:     domain.RoleOperator,
	HomeUnit: domain.UnitPublicJails,
}

func TestRecordHandler_List_PassesFilter(t *testing.T) {
	e := newTestEcho()
	svc := &stubRecordService{
		listFn: func(ctx context.Context, p domain.Principal, f ports.RecordFilter) ([]domain.Record, error) {
			if f.Context != domain.UnitSpecialOperations || f.Search != "silva" || f.Date != "2024-05-01" || f.Type != domain.RecordEscort {
				t.Fatalf("unexpected filter: %+v", f)
			}
			return []domain.Record{{ID: "PRT-ABC123", Type: domain.RecordEscort, UnitOfOrigin: domain.UnitPublicJails}}, nil
		},
	}
	h := NewRecordHandler(svc)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet,
		"/v1/records?context=special_operations&q=silva&date=2024-05-01&type=escort", nil), rec)
	middleware.SetPrincipal(c, operator)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp recordListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	// operators are pinned to their home unit whatever the query says
	if resp.Context != "public_jails" {
		t.Fatalf("expected effective context public_jails, got %q", resp.Context)
	}
	if len(resp.Records) != 1 || resp.Records[0].ID != "PRT-ABC123" {
		t.Fatalf("unexpected records: %+v", resp.Records)
	}
}

func TestRecordHandler_Create(t *testing.T) {
	e := newTestEcho()
	svc := &stubRecordService{
		createFn: func(ctx context.Context, p domain.Principal, in ports.CreateRecordInput) (*domain.Record, error) {
			if in.Type != domain.RecordEscort || in.Risk != domain.RiskHigh || in.ScheduledAt.IsZero() {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Record{ID: "PRT-XYZ789", Type: in.Type, Risk: in.Risk, Status: domain.RecordPending}, nil
		},
	}
	h := NewRecordHandler(svc)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/records",
		`{"type":"escort","subject_name":"J. Silva","file_number":"123","destination":"Court","scheduled_at":"2024-05-01T09:00:00Z","risk":"high"}`), rec)
	middleware.SetPrincipal(c, operator)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/v1/records/PRT-XYZ789" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestRecordHandler_Create_ExternalOperationNeedsNoFile(t *testing.T) {
	e := newTestEcho()
	svc := &stubRecordService{
		createFn: func(ctx context.Context, p domain.Principal, in ports.CreateRecordInput) (*domain.Record, error) {
			return &domain.Record{ID: "PRT-EXT001", Type: in.Type}, nil
		},
	}
	h := NewRecordHandler(svc)

	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/records",
		`{"type":"external_operation","destination":"Airport","scheduled_at":"2024-05-01T09:00:00Z"}`), httptest.NewRecorder())
	middleware.SetPrincipal(c, operator)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestRecordHandler_Create_MissingFileNumber(t *testing.T) {
	e := newTestEcho()
	h := NewRecordHandler(&stubRecordService{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/records",
		`{"type":"internment","subject_name":"J. Silva","destination":"Hospital","scheduled_at":"2024-05-01T09:00:00Z"}`), httptest.NewRecorder())
	middleware.SetPrincipal(c, operator)

	if err := h.Create(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecordHandler_Complete_EmptyBody(t *testing.T) {
	e := newTestEcho()
	svc := &stubRecordService{
		completeFn: func(ctx context.Context, p domain.Principal, id string, at time.Time) (*domain.Record, error) {
			if id != "PRT-ABC123" || !at.IsZero() {
				t.Fatalf("unexpected args: %s %v", id, at)
			}
			now := time.Now()
			return &domain.Record{ID: id, Status: domain.RecordCompleted, CompletedAt: &now}, nil
		},
	}
	h := NewRecordHandler(svc)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/records/PRT-ABC123/complete", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("PRT-ABC123")
	middleware.SetPrincipal(c, operator)

	if err := h.Complete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRecordHandler_Delete_PropagatesAuthorization(t *testing.T) {
	e := newTestEcho()
	h := NewRecordHandler(&stubRecordService{})

	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/v1/records/PRT-ABC123", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("PRT-ABC123")
	middleware.SetPrincipal(c, operator)

	if err := h.Delete(c); !errors.Is(err, domain.ErrAuthorization) {
		t.Fatalf("expected ErrAuthorization, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/core/ports"
)

var scheduled = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func escortInput(name string, ctxUnit domain.ViewContext) ports.CreateRecordInput {
	return ports.CreateRecordInput{
		Type:        domain.RecordEscort,
		SubjectName: name,
		FileNumber:  "F-" + name,
		Destination: "Hospital do Trabalhador",
		ScheduledAt: scheduled,
		Risk:        domain.RiskMedium,
		Context:     ctxUnit,
	}
}

func TestRecordService_CreateUsesHomeUnit(t *testing.T) {
	h := newHarness(t)
	master := h.master(t)
	op := h.account(t, master, "bruno", domain.RoleOperator, domain.UnitPublicJails)
	ctx := context.Background()

	r, err := h.records.CreateRecord(ctx, op, escortInput("Joao", domain.UnitSpecialOperations))
	if err != nil {
		t.Fatalf("CreateRecord returned error: %v", err)
	}
	if r.UnitOfOrigin != domain.UnitPublicJails {
		t.Fatalf("operator record must land in home unit, got %s", r.UnitOfOrigin)
	}
	if r.Status != domain.RecordPending || r.CreatedBy != op.Email || len(r.ID) != len("PRT-000000") {
		t.Fatalf("unexpected record %+v", r)
	}
	if got := h.store.lastEntry(); got.Action != domain.ActionRecordCreated || got.Category != domain.CategoryOperational {
		t.Fatalf("unexpected audit entry %+v", got)
	}

	mr, err := h.records.CreateRecord(ctx, master, escortInput("Maria", domain.UnitSpecialOperations))
	if err != nil {
		t.Fatalf("CreateRecord returned error: %v", err)
	}
	if mr.UnitOfOrigin != domain.UnitSpecialOperations {
		t.Fatalf("master record must follow context, got %s", mr.UnitOfOrigin)
	}
}

func TestRecordService_ExternalOperationRedacted(t *testing.T) {
	h := newHarness(t)
	master := h.master(t)

	r, err := h.records.CreateRecord(context.Background(), master, ports.CreateRecordInput{
		Type:        domain.RecordExternalOperation,
		SubjectName: "Secret Person",
		Destination: "Forum",
		ScheduledAt: scheduled,
		Risk:        domain.RiskHigh,
		Context:     domain.UnitSpecialOperations,
	})
	if err != nil {
		t.Fatalf("CreateRecord returned error: %v", err)
	}
	if r.SubjectName != domain.RedactedIdentity || r.FileNumber != domain.RedactedIdentity {
		t.Fatalf("expected redacted identity, got %+v", r)
	}
}

func TestRecordService_CreateValidation(t *testing.T) {
	h := newHarness(t)
	master := h.master(t)

	in := escortInput("", domain.UnitPublicJails)
	if _, err := h.records.CreateRecord(context.Background(), master, in); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing subject, got %v", err)
	}
	in = escortInput("Ana", domain.UnitPublicJails)
	in.Type = "parade"
	if _, err := h.records.CreateRecord(context.Background(), master, in); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown type, got %v", err)
	}
}

func TestRecordService_Visibility(t *testing.T) {
	h := newHarness(t)
	master := h.master(t)
	ctx := context.Background()
	global := h.account(t, master, "caio", domain.RoleGlobalAdmin, domain.UnitCentral)
	opA := h.account(t, master, "davi", domain.RoleOperator, domain.UnitPublicJails)
	opB := h.account(t, master, "edu", domain.RoleOperator, domain.UnitPrisonEscort)

	for _, p := range []domain.Principal{opA, opB} {
		if _, err := h.records.CreateRecord(ctx, p, escortInput(p.Email, "")); err != nil {
			t.Fatalf("CreateRecord returned error: %v", err)
		}
	}

	cases := []struct {
		name string
		p    domain.Principal
		ctx  domain.ViewContext
		want int
	}{
		{"master global", master, domain.ViewGlobal, 2},
		{"global admin unit", global, domain.UnitPrisonEscort, 1},
		{"global admin empty", global, "", 2},
		{"operator ignores context", opA, domain.ViewGlobal, 1},
		{"operator other unit", opB, domain.UnitPublicJails, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := h.records.ListVisible(ctx, tc.p, ports.RecordFilter{Context: tc.ctx})
			if err != nil {
				t.Fatalf("ListVisible returned error: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("expected %d records, got %d", tc.want, len(got))
			}
			for _, r := range got {
				if !tc.p.Role.IsTopLevel() && r.UnitOfOrigin != tc.p.HomeUnit {
					t.Fatalf("record from %s leaked to %s", r.UnitOfOrigin, tc.p.HomeUnit)
				}
			}
		})
	}
}

func TestRecordService_Filters(t *testing.T) {
	h := newHarness(t)
	master := h.master(t)
	ctx := context.Background()

	first := escortInput("Carlos Lima", domain.UnitPublicJails)
	second := escortInput("Paula Reis", domain.UnitPublicJails)
	second.ScheduledAt = scheduled.Add(48 * time.Hour)
	second.Type = domain.RecordInternment
	for _, in := range []ports.CreateRecordInput{first, second} {
		if _, err := h.records.CreateRecord(ctx, master, in); err != nil {
			t.Fatalf("CreateRecord returned error: %v", err)
		}
	}

	got, _ := h.records.ListVisible(ctx, master, ports.RecordFilter{Search: "lima"})
	if len(got) != 1 || got[0].SubjectName != "Carlos Lima" {
		t.Fatalf("search by name failed: %+v", got)
	}
	got, _ = h.records.ListVisible(ctx, master, ports.RecordFilter{Date: "2026-03-16"})
	if len(got) != 1 || got[0].Type != domain.RecordInternment {
		t.Fatalf("date filter failed: %+v", got)
	}
	got, _ = h.records.ListVisible(ctx, master, ports.RecordFilter{})
	if len(got) != 2 || !got[0].ScheduledAt.After(got[1].ScheduledAt) {
		t.Fatalf("expected newest schedule first: %+v", got)
	}
}

func TestRecordService_EditIsMasterOnly(t *testing.T) {
	h := newHarness(t)
	master := h.master(t)
	global := h.account(t, master, "fabi", domain.RoleGlobalAdmin, domain.UnitCentral)
	ctx := context.Background()

	r, err := h.records.CreateRecord(ctx, master, escortInput("Gabriel", domain.UnitPrisonEscort))
	if err != nil {
		t.Fatalf("CreateRecord returned error: %v", err)
	}

	dest := "Forum Central"
	if _, err := h.records.EditRecord(ctx, global, r.ID, ports.UpdateRecordInput{Destination: &dest}); !errors.Is(err, domain.ErrAuthorization) {
		t.Fatalf("expected ErrAuthorization, got %v", err)
	}
	if err := h.records.DeleteRecord(ctx, global, r.ID); !errors.Is(err, domain.ErrAuthorization) {
		t.Fatalf("expected ErrAuthorization, got %v", err)
	}

	edited, err := h.records.EditRecord(ctx, master, r.ID, ports.UpdateRecordInput{Destination: &dest})
	if err != nil {
		t.Fatalf("EditRecord returned error: %v", err)
	}
	if edited.Destination != dest || edited.UnitOfOrigin != domain.UnitPrisonEscort {
		t.Fatalf("unexpected edit result %+v", edited)
	}

	cancelled := domain.RecordCancelled
	if _, err := h.records.EditRecord(ctx, master, r.ID, ports.UpdateRecordInput{Status: &cancelled}); err != nil {
		t.Fatalf("cancel returned error: %v", err)
	}
	pending := domain.RecordPending
	if _, err := h.records.EditRecord(ctx, master, r.ID, ports.UpdateRecordInput{Status: &pending}); !errors.Is(err, domain.ErrState) {
		t.Fatalf("expected ErrState reopening a cancelled record, got %v", err)
	}

	if err := h.records.DeleteRecord(ctx, master, r.ID); err != nil {
		t.Fatalf("DeleteRecord returned error: %v", err)
	}
	if err := h.records.DeleteRecord(ctx, master, r.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordService_Complete(t *testing.T) {
	h := newHarness(t)
	master := h.master(t)
	opA := h.account(t, master, "gui", domain.RoleOperator, domain.UnitPublicJails)
	opB := h.account(t, master, "hele", domain.RoleOperator, domain.UnitPrisonEscort)
	ctx := context.Background()

	r, err := h.records.CreateRecord(ctx, opA, escortInput("Igor", ""))
	if err != nil {
		t.Fatalf("CreateRecord returned error: %v", err)
	}

	if _, err := h.records.CompleteRecord(ctx, opB, r.ID, time.Time{}); !errors.Is(err, domain.ErrAuthorization) {
		t.Fatalf("expected ErrAuthorization from another unit, got %v", err)
	}

	at := scheduled.Add(3 * time.Hour)
	done, err := h.records.CompleteRecord(ctx, opA, r.ID, at)
	if err != nil {
		t.Fatalf("CompleteRecord returned error: %v", err)
	}
	if done.Status != domain.RecordCompleted || done.CompletedAt == nil || !done.CompletedAt.Equal(at) {
		t.Fatalf("unexpected completed record %+v", done)
	}
	if got := h.store.lastEntry().Action; got != domain.ActionRecordCompleted {
		t.Fatalf("unexpected audit action %s", got)
	}
	if _, err := h.records.CompleteRecord(ctx, master, r.ID, time.Time{}); !errors.Is(err, domain.ErrState) {
		t.Fatalf("expected ErrState on second completion, got %v", err)
	}
}

func TestRecordService_Summary(t *testing.T) {
	h := newHarness(t)
	master := h.master(t)
	admin := h.account(t, master, "iris", domain.RoleUnitAdmin, domain.UnitPublicJails)
	ctx := context.Background()

	if _, err := h.accounts.CreateAccount(ctx, admin, ports.CreateAccountInput{Email: mail("jair")}); err != nil {
		t.Fatalf("CreateAccount returned error: %v", err)
	}

	escort := escortInput("Kleber", domain.UnitPublicJails)
	escort.Risk = domain.RiskHigh
	internment := escortInput("Lucia", domain.UnitPublicJails)
	internment.Type = domain.RecordInternment
	other := escortInput("Mauro", domain.UnitPrisonEscort)
	var closeID string
	for i, in := range []ports.CreateRecordInput{escort, internment, other} {
		r, err := h.records.CreateRecord(ctx, master, in)
		if err != nil {
			t.Fatalf("CreateRecord returned error: %v", err)
		}
		if i == 2 {
			closeID = r.ID
		}
	}
	if _, err := h.records.CompleteRecord(ctx, master, closeID, time.Time{}); err != nil {
		t.Fatalf("CompleteRecord returned error: %v", err)
	}

	sum, err := h.records.Summary(ctx, master, domain.ViewGlobal)
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	want := ports.RecordSummary{ActiveEscorts: 1, Interned: 1, HighRiskOpen: 1, Closed: 1, PendingRequests: 1}
	if *sum != want {
		t.Fatalf("expected %+v, got %+v", want, *sum)
	}

	sum, err = h.records.Summary(ctx, admin, domain.ViewGlobal)
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	want = ports.RecordSummary{ActiveEscorts: 1, Interned: 1, HighRiskOpen: 1}
	if *sum != want {
		t.Fatalf("expected %+v for unit admin, got %+v", want, *sum)
	}
}

func TestRecordService_StorageFailure(t *testing.T) {
	h := newHarness(t)
	master := h.master(t)
	h.store.setFail(domain.ErrStorage)

	if _, err := h.records.ListVisible(context.Background(), master, ports.RecordFilter{}); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

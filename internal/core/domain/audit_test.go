package domain

import (
	"fmt"
	"testing"
)

func TestPrependBounded_EvictsOldest(t *testing.T) {
	var trail []AuditLogEntry
	for i := 0; i < DefaultAuditCapacity+1; i++ {
		trail = PrependBounded(trail, AuditLogEntry{ID: fmt.Sprintf("e%03d", i)}, DefaultAuditCapacity)
	}

	if len(trail) != DefaultAuditCapacity {
		t.Fatalf("expected %d entries, got %d", DefaultAuditCapacity, len(trail))
	}
	if trail[0].ID != "e500" {
		t.Fatalf("expected newest entry at head, got %s", trail[0].ID)
	}
	for _, e := range trail {
		if e.ID == "e000" {
			t.Fatalf("first appended entry should have been evicted")
		}
	}
	if trail[len(trail)-1].ID != "e001" {
		t.Fatalf("expected e001 at tail, got %s", trail[len(trail)-1].ID)
	}
}

func TestPrependBounded_DoesNotAliasInput(t *testing.T) {
	trail := []AuditLogEntry{{ID: "a"}, {ID: "b"}}
	out := PrependBounded(trail, AuditLogEntry{ID: "c"}, 10)
	out[1].Details = "changed"
	if trail[0].Details != "" {
		t.Fatalf("input trail was mutated")
	}
}

func TestRecordStatus_Transitions(t *testing.T) {
	if !RecordPending.CanTransitionTo(RecordCompleted) {
		t.Fatalf("pending -> completed should be allowed")
	}
	if RecordCompleted.CanTransitionTo(RecordInProgress) {
		t.Fatalf("completed is terminal")
	}
	if !RecordCancelled.Closed() {
		t.Fatalf("cancelled should be closed")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Agent.One@Example.GOV "); got != "agent.one@example.gov" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

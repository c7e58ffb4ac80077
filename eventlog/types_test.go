package eventlog

import (
	"testing"
	"time"
)

func TestVariantKeyIgnoresCaseAndTimestamp(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &Trace{CaseID: "case-1", Events: []Event{
		{CaseID: "case-1", Activity: "A", Timestamp: base},
		{CaseID: "case-1", Activity: "B", Timestamp: base.Add(time.Minute)},
	}}
	b := &Trace{CaseID: "case-2", Events: []Event{
		{CaseID: "case-2", Activity: "A", Timestamp: base.Add(24 * time.Hour)},
		{CaseID: "case-2", Activity: "B", Timestamp: base.Add(25 * time.Hour)},
	}}

	if a.VariantKey() != b.VariantKey() {
		t.Errorf("expected two traces with the same activity sequence to share a variant key, got %q vs %q", a.VariantKey(), b.VariantKey())
	}
}

func TestVariantKeyDiffersOnDifferentActivities(t *testing.T) {
	a := &Trace{Events: []Event{{Activity: "A"}, {Activity: "B"}}}
	b := &Trace{Events: []Event{{Activity: "A"}, {Activity: "C"}}}

	if a.VariantKey() == b.VariantKey() {
		t.Error("expected traces with different activity sequences to have different variant keys")
	}
}

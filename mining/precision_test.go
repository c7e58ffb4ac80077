package mining

import (
	"testing"
	"time"

	"github.com/pflow-xyz/go-pflow/eventlog"
)

func singleTraceLog(caseID string, activities []string) *eventlog.EventLog {
	log := eventlog.NewEventLog()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, activity := range activities {
		log.AddEvent(eventlog.Event{
			CaseID:    caseID,
			Activity:  activity,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return log
}

func TestCheckPrecisionOfAChoice(t *testing.T) {
	net := precisionChoiceNet()
	log := singleTraceLog("case-1", []string{"A", "A", "A", "B"})

	precision := CheckPrecision(log, net)
	if precision.Precision >= 1.0 {
		t.Errorf("expected precision below 1.0 since the model allows a choice the log never exercises, got %v", precision.Precision)
	}
	if precision.EscapingEdges == 0 {
		t.Error("expected at least one escaping edge")
	}

	fitness := CheckConformance(log, net)
	if fitness.Fitness != 1.0 {
		t.Errorf("expected the repeated-A trace to fit the model perfectly, got %v", fitness.Fitness)
	}
}

func TestBuildPrefixActivityMapEmptyPrefix(t *testing.T) {
	log := singleTraceLog("case-1", []string{"A", "B"})
	prefixMap := BuildPrefixActivityMap(log)

	if !prefixMap[""]["A"] {
		t.Error("expected the empty prefix to record the trace's first activity")
	}
	if !prefixMap["A"]["B"] {
		t.Error("expected the prefix \"A\" to record the trace's second activity")
	}
}

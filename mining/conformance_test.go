package mining

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pflow-xyz/go-pflow/eventlog"
)

func TestCheckConformancePerfectFit(t *testing.T) {
	net := simpleSequenceNet()
	log := singleTraceLog("case-1", []string{"a", "b"})

	result := CheckConformance(log, net)
	assert.Equal(t, 1.0, result.Fitness)
	assert.Equal(t, 1, result.FittingTraces)
	assert.Equal(t, 1, result.TotalTraces)
}

func TestCheckConformanceEmptyLog(t *testing.T) {
	net := simpleSequenceNet()
	log := eventlog.NewEventLog()

	result := CheckConformance(log, net)
	assert.Equal(t, 1.0, result.Fitness, "an empty log should trivially report fitness 1.0")
	assert.Equal(t, 0, result.TotalTraces)
}

func TestCheckConformanceNonFittingTrace(t *testing.T) {
	net := simpleSequenceNet()
	log := singleTraceLog("case-1", []string{"b"})

	result := CheckConformance(log, net)
	nonFitting := result.GetNonFittingTraces()
	require.Len(t, nonFitting, 1)
	assert.False(t, nonFitting[0].Fitting)
}

func TestGetTracesByFitnessSortsAscending(t *testing.T) {
	net := simpleSequenceNet()
	log := eventlogWithTraces(map[string][]string{
		"good": {"a", "b"},
		"bad":  {"b"},
	})

	result := CheckConformance(log, net)
	sorted := result.GetTracesByFitness()
	require.Len(t, sorted, 2)
	assert.LessOrEqual(t, sorted[0].Fitness, sorted[1].Fitness)
}

func TestCheckConformanceWithOptionsHyperGraphPlannerAgreesWithHeuristic(t *testing.T) {
	net := silentTailNet()
	log := singleTraceLog("case-1", []string{"a", "b"})

	heuristic := CheckConformance(log, net)

	opts := NewConformanceOptions()
	opts.UseHyperGraphPlanner = true
	hyper := CheckConformanceWithOptions(log, net, opts)

	assert.Equal(t, heuristic.Fitness, hyper.Fitness, "both planners should reach the same fitness")
}

func TestCheckConformanceConcurrentMatchesSequential(t *testing.T) {
	net := loopNet()
	log := eventlogWithTraces(map[string][]string{
		"c1": {"a", "b"},
		"c2": {"a", "a", "a", "b"},
		"c3": {"a", "a", "b"},
	})

	sequential := CheckConformance(log, net)
	concurrent, err := CheckConformanceConcurrent(log, net, 2)
	require.NoError(t, err)

	assert.Equal(t, sequential.Fitness, concurrent.Fitness)
	assert.Equal(t, sequential.TotalTraces, concurrent.TotalTraces)
}

func TestCheckFullConformanceComputesFScore(t *testing.T) {
	net := simpleSequenceNet()
	log := singleTraceLog("case-1", []string{"a", "b"})

	full := CheckFullConformance(log, net)
	assert.Equal(t, 1.0, full.FScore, "a perfectly fitting, fully precise trace should score FScore 1.0")
}

func eventlogWithTraces(traces map[string][]string) *eventlog.EventLog {
	log := eventlog.NewEventLog()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for caseID, activities := range traces {
		for i, activity := range activities {
			log.AddEvent(eventlog.Event{
				CaseID:    caseID,
				Activity:  activity,
				Timestamp: base.Add(time.Duration(i) * time.Minute),
			})
		}
	}
	return log
}

// Package mining provides process mining conformance checking: token-based replay fitness and precision.
package mining

import (
	"fmt"
	"sort"

	"github.com/pflow-xyz/go-pflow/cache"
	"github.com/pflow-xyz/go-pflow/eventlog"
	"github.com/pflow-xyz/go-pflow/petri"
)

// =============================================================================
// Conformance Checking - Token-Based Replay
// =============================================================================

// ConformanceResult contains the results of conformance checking.
type ConformanceResult struct {
	// Overall fitness score (0.0 to 1.0)
	Fitness float64

	// Detailed metrics
	ProducedTokens  int // Tokens produced during replay
	ConsumedTokens  int // Tokens consumed during replay
	MissingTokens   int // Tokens needed but not available
	RemainingTokens int // Tokens left after replay

	// Per-trace results
	TraceResults []TraceReplayResult

	// Summary statistics
	FittingTraces   int     // Number of traces that fit perfectly
	TotalTraces     int     // Total number of traces
	FittingPercent  float64 // Percentage of fitting traces
	AvgTraceFitness float64 // Average fitness across all traces
}

// TraceReplayResult contains the result of replaying a single trace.
type TraceReplayResult struct {
	CaseID          string
	Fitness         float64
	Fitting         bool // True if trace fits perfectly
	MissingTokens   int  // Tokens needed but not available
	RemainingTokens int  // Tokens left after replay
	ProducedTokens  int  // Total tokens produced
	ConsumedTokens  int  // Total tokens consumed
	Activities      []string
}

// ConformanceOptions configures a conformance run: which silent planner to
// use, how its search is bounded, and which cache layers the replay engine
// keeps active.
type ConformanceOptions struct {
	// CacheMode selects the replay engine's memoization layers. Its zero
	// value is NoCache and is used as is; NewConformanceOptions sets
	// PrefixAndSuffixCaching, the documented default.
	CacheMode CacheMode

	// UseHyperGraphPlanner switches from the heuristic deficit/surplus
	// planner to the bounded hypergraph search. Both satisfy SilentPlanner;
	// the heuristic planner is faster on nets with a well-behaved silent
	// structure, the hypergraph planner is more exhaustive.
	UseHyperGraphPlanner bool

	// SilentPathDepth bounds the per-place shortest-path table built for
	// the heuristic planner (ignored when UseHyperGraphPlanner is set).
	SilentPathDepth int

	// EnableIterations bounds the heuristic planner's deficit/surplus
	// restart loop, both for enabling a blocked transition and for reaching
	// the net's final marking. FinalIterations is carried for configuration
	// but is not read: the planner built from these options uses
	// EnableIterations for both searches.
	EnableIterations int
	FinalIterations  int

	// HyperGraphDepth bounds the hypergraph planner's search depth.
	HyperGraphDepth int

	// SuffixBudget caps the postfix-string length the suffix cache will
	// hold an entry for (ignored unless CacheMode is SuffixCaching or
	// PrefixAndSuffixCaching). Zero falls back to cache.DefaultSuffixBudget.
	SuffixBudget int
}

// NewConformanceOptions returns the documented defaults: prefix+suffix
// caching, the heuristic planner with one path table of depth 10 and an
// iteration bound of 10 shared by the enabling and final-marking searches,
// a hypergraph depth of 12, and the donor's suffix-length budget of 5.
func NewConformanceOptions() ConformanceOptions {
	return ConformanceOptions{
		CacheMode:        PrefixAndSuffixCaching,
		SilentPathDepth:  10,
		EnableIterations: 10,
		FinalIterations:  5,
		HyperGraphDepth:  12,
		SuffixBudget:     cache.DefaultSuffixBudget,
	}
}

func (o ConformanceOptions) planner(net *petri.PetriNet) SilentPlanner {
	if o.UseHyperGraphPlanner {
		return NewHyperGraphPlanner(o.HyperGraphDepth)
	}
	paths := BuildSilentPathTable(net, o.SilentPathDepth)
	return NewHeuristicPlanner(paths, o.EnableIterations)
}

// CheckConformance performs token-based replay conformance checking. It
// replays each trace from the event log against the Petri net model and
// computes fitness metrics.
func CheckConformance(log *eventlog.EventLog, net *petri.PetriNet) *ConformanceResult {
	return CheckConformanceWithOptions(log, net, NewConformanceOptions())
}

// CheckConformanceWithOptions is CheckConformance with explicit control
// over the silent planner and cache mode.
func CheckConformanceWithOptions(log *eventlog.EventLog, net *petri.PetriNet, opts ConformanceOptions) *ConformanceResult {
	result := &ConformanceResult{
		TraceResults: make([]TraceReplayResult, 0, log.NumCases()),
		TotalTraces:  log.NumCases(),
	}

	if result.TotalTraces == 0 {
		result.Fitness = 1.0
		return result
	}

	engine := NewReplayEngine(net, opts.planner(net), opts.CacheMode, opts.SuffixBudget)

	for _, trace := range log.GetTraces() {
		totals := engine.Replay(trace.GetActivityVariant())
		tr := TraceReplayResult{
			CaseID:          trace.CaseID,
			Activities:      trace.GetActivityVariant(),
			ConsumedTokens:  totals.Consumed,
			ProducedTokens:  totals.Produced,
			MissingTokens:   totals.Missing,
			RemainingTokens: totals.Remaining,
			Fitness:         traceFitness(totals),
			Fitting:         totals.Missing == 0 && totals.Remaining == 0,
		}
		result.TraceResults = append(result.TraceResults, tr)

		result.ProducedTokens += tr.ProducedTokens
		result.ConsumedTokens += tr.ConsumedTokens
		result.MissingTokens += tr.MissingTokens
		result.RemainingTokens += tr.RemainingTokens
		if tr.Fitting {
			result.FittingTraces++
		}
	}

	// fitness = 0.5 * (1 - missing/consumed) + 0.5 * (1 - remaining/produced)
	if result.ConsumedTokens > 0 && result.ProducedTokens > 0 {
		missingRatio := float64(result.MissingTokens) / float64(result.ConsumedTokens)
		remainingRatio := float64(result.RemainingTokens) / float64(result.ProducedTokens)
		result.Fitness = 0.5*(1-missingRatio) + 0.5*(1-remainingRatio)
	} else {
		result.Fitness = 1.0
	}

	result.FittingPercent = float64(result.FittingTraces) / float64(result.TotalTraces) * 100
	totalFitness := 0.0
	for _, tr := range result.TraceResults {
		totalFitness += tr.Fitness
	}
	result.AvgTraceFitness = totalFitness / float64(result.TotalTraces)

	return result
}

func traceFitness(totals ReplayTotals) float64 {
	if totals.Consumed == 0 || totals.Produced == 0 {
		return 1.0
	}
	missingRatio := float64(totals.Missing) / float64(totals.Consumed)
	remainingRatio := float64(totals.Remaining) / float64(totals.Produced)
	fitness := 0.5*(1-missingRatio) + 0.5*(1-remainingRatio)
	if fitness < 0 {
		fitness = 0
	}
	return fitness
}

// =============================================================================
// Precision Metrics
// =============================================================================

// PrecisionResult contains the results of precision analysis.
type PrecisionResult struct {
	// ETC Precision (1 - escaping edges / allowed tasks).
	// Higher is better - means the model doesn't allow too much behavior
	// beyond what the log observed.
	Precision float64

	// Number of escaping edges: transitions visibly enabled at some
	// replayed state but never taken from that state's prefix in the log.
	EscapingEdges int

	// Total allowed tasks summed across every replayed state.
	TotalEnabled int
}

// CheckPrecision computes precision metrics using the escaping-edges
// method: at every point in every trace, it compares what the model allows
// (visibly enabled transitions, reachable through any number of silent
// firings) against what the log's other traces are observed to do from the
// same prefix.
func CheckPrecision(log *eventlog.EventLog, net *petri.PetriNet) *PrecisionResult {
	return CheckPrecisionWithOptions(log, net, NewConformanceOptions())
}

// CheckPrecisionWithOptions is CheckPrecision with explicit control over
// the silent planner.
func CheckPrecisionWithOptions(log *eventlog.EventLog, net *petri.PetriNet, opts ConformanceOptions) *PrecisionResult {
	prefixMap := BuildPrefixActivityMap(log)
	allowed := cache.NewAllowedTasksCache()
	engine := NewReplayEngine(net, opts.planner(net), NoCache, opts.SuffixBudget)

	result := &PrecisionResult{}
	for _, trace := range log.GetTraces() {
		tr := engine.ReplayPrecision(trace.GetActivityVariant(), prefixMap, allowed)
		result.TotalEnabled += tr.AllowedTasks
		result.EscapingEdges += tr.EscapingEdges
	}

	if result.TotalEnabled > 0 {
		result.Precision = 1.0 - float64(result.EscapingEdges)/float64(result.TotalEnabled)
	}

	return result
}

// =============================================================================
// Combined Conformance Analysis
// =============================================================================

// FullConformanceResult contains all conformance metrics.
type FullConformanceResult struct {
	Fitness   *ConformanceResult
	Precision *PrecisionResult

	// F-Score (harmonic mean of fitness and precision)
	FScore float64
}

// CheckFullConformance performs both fitness and precision checking.
func CheckFullConformance(log *eventlog.EventLog, net *petri.PetriNet) *FullConformanceResult {
	fitness := CheckConformance(log, net)
	precision := CheckPrecision(log, net)

	result := &FullConformanceResult{
		Fitness:   fitness,
		Precision: precision,
	}

	if fitness.Fitness+precision.Precision > 0 {
		result.FScore = 2 * fitness.Fitness * precision.Precision / (fitness.Fitness + precision.Precision)
	}

	return result
}

// =============================================================================
// Utility Functions
// =============================================================================

// String returns a human-readable summary of conformance results.
func (r *ConformanceResult) String() string {
	return fmt.Sprintf(
		"Conformance Results:\n"+
			"  Fitness: %.2f%%\n"+
			"  Fitting traces: %d/%d (%.1f%%)\n"+
			"  Avg trace fitness: %.2f%%\n"+
			"  Missing tokens: %d\n"+
			"  Remaining tokens: %d\n",
		r.Fitness*100,
		r.FittingTraces, r.TotalTraces, r.FittingPercent,
		r.AvgTraceFitness*100,
		r.MissingTokens,
		r.RemainingTokens,
	)
}

// String returns a human-readable summary of precision results.
func (r *PrecisionResult) String() string {
	return fmt.Sprintf(
		"Precision Results:\n"+
			"  Precision: %.2f%%\n"+
			"  Escaping edges: %d/%d\n",
		r.Precision*100,
		r.EscapingEdges, r.TotalEnabled,
	)
}

// String returns a human-readable summary of full conformance results.
func (r *FullConformanceResult) String() string {
	return fmt.Sprintf(
		"%s\n%s"+
			"F-Score: %.2f%%\n",
		r.Fitness.String(),
		r.Precision.String(),
		r.FScore*100,
	)
}

// GetNonFittingTraces returns traces that don't fit the model.
func (r *ConformanceResult) GetNonFittingTraces() []TraceReplayResult {
	result := make([]TraceReplayResult, 0)
	for _, tr := range r.TraceResults {
		if !tr.Fitting {
			result = append(result, tr)
		}
	}
	return result
}

// GetTracesByFitness returns traces sorted by fitness (lowest first).
func (r *ConformanceResult) GetTracesByFitness() []TraceReplayResult {
	result := make([]TraceReplayResult, len(r.TraceResults))
	copy(result, r.TraceResults)
	sort.Slice(result, func(i, j int) bool {
		return result[i].Fitness < result[j].Fitness
	})
	return result
}

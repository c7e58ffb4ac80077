package mining

import (
	"github.com/pflow-xyz/go-pflow/cache"
	"github.com/pflow-xyz/go-pflow/eventlog"
	"github.com/pflow-xyz/go-pflow/petri"
)

// PrefixActivityMap maps the string-joined sequence of activities observed
// so far in the log to the set of activities the log actually continues
// with from that point, including the empty prefix mapping to every
// activity that starts a trace.
type PrefixActivityMap map[string]map[string]bool

// BuildPrefixActivityMap scans every trace in log and records, for each
// prefix of activities that occurs, which activities are observed to follow
// it anywhere in the log.
func BuildPrefixActivityMap(log *eventlog.EventLog) PrefixActivityMap {
	prefixMap := make(PrefixActivityMap)
	for _, trace := range log.GetTraces() {
		variant := trace.GetActivityVariant()
		for i := 0; i < len(variant); i++ {
			key := joinForVariant(variant[:i])
			set, ok := prefixMap[key]
			if !ok {
				set = make(map[string]bool)
				prefixMap[key] = set
			}
			set[variant[i]] = true
		}
	}
	return prefixMap
}

// PrecisionTraceResult is the per-trace tally precision is computed from.
type PrecisionTraceResult struct {
	AllowedTasks  int
	EscapingEdges int
}

// SilentSearchDepth bounds how many silent firings VisiblyEnabledEventually
// explores. Precision uses a deeper bound than fitness replay (the donor
// calls the same search with 50 for precision versus 5-10 for fitness) since
// an under-explored closure would undercount allowed tasks and inflate the
// number of apparent escaping edges.
const SilentSearchDepth = 50

// ReplayPrecision replays activities against the net, stopping the moment
// an activity cannot be fired (unlike fitness replay, precision does not
// force-insert missing tokens: a trace that cannot be replayed further
// simply stops contributing from that point on). At each step it compares
// the transitions visibly enabled (eventually, through silent firings) at
// the current marking against the activities the log actually continues
// with from the same prefix, counting the surplus as escaping edges.
func (e *ReplayEngine) ReplayPrecision(activities []string, prefixMap PrefixActivityMap, allowed *cache.AllowedTasksCache) PrecisionTraceResult {
	current := e.Net.EffectiveInitialMarking()
	var result PrecisionTraceResult

	for i, activity := range activities {
		allowedSet, ok := allowed.Get(current)
		if !ok {
			allowedSet = e.Net.VisiblyEnabledEventually(current, SilentSearchDepth)
			allowed.Store(current, allowedSet)
		}

		nextActivities := prefixMap[joinForVariant(activities[:i])]
		result.AllowedTasks += len(allowedSet)
		for task := range allowedSet {
			if !nextActivities[task] {
				result.EscapingEdges++
			}
		}

		next, ok := e.fireWithoutForcing(current, activity)
		if !ok {
			break
		}
		current = next
	}

	return result
}

// fireWithoutForcing fires activity from marking, using the silent planner
// to bridge a gap if needed, but never inserting missing tokens. ok is
// false if activity could not be made to fire.
func (e *ReplayEngine) fireWithoutForcing(marking petri.Marking, activity string) (petri.Marking, bool) {
	if next, err := e.Net.Fire(marking, activity); err == nil {
		return next, true
	}

	if seq, ok := e.activities.Get(marking, activity); ok {
		if next, ok2 := fireSequenceOnly(e.Net, marking, seq, activity); ok2 {
			return next, true
		}
	}
	if seq, ok := e.Planner.Enable(e.Net, marking, activity); ok {
		e.activities.Store(marking, activity, seq)
		if next, ok2 := fireSequenceOnly(e.Net, marking, seq, activity); ok2 {
			return next, true
		}
	}
	return marking, false
}

func fireSequenceOnly(net *petri.PetriNet, marking petri.Marking, seq []string, activity string) (petri.Marking, bool) {
	current := marking
	for _, s := range seq {
		next, err := net.Fire(current, s)
		if err != nil {
			return marking, false
		}
		current = next
	}
	next, err := net.Fire(current, activity)
	if err != nil {
		return marking, false
	}
	return next, true
}

// CalculatePrecision computes the precision metric for log replayed
// against net: 1 minus the ratio of escaping edges to allowed tasks, summed
// across every trace. A log with no allowed tasks at all (a degenerate net)
// yields a precision of 0 rather than dividing by zero.
func CalculatePrecision(net *petri.PetriNet, planner SilentPlanner, log *eventlog.EventLog) float64 {
	prefixMap := BuildPrefixActivityMap(log)
	allowed := cache.NewAllowedTasksCache()
	engine := NewReplayEngine(net, planner, NoCache, cache.DefaultSuffixBudget)

	var totalAllowed, totalEscaping int
	for _, trace := range log.GetTraces() {
		result := engine.ReplayPrecision(trace.GetActivityVariant(), prefixMap, allowed)
		totalAllowed += result.AllowedTasks
		totalEscaping += result.EscapingEdges
	}

	if totalAllowed == 0 {
		return 0.0
	}
	return 1.0 - float64(totalEscaping)/float64(totalAllowed)
}

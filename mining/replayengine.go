package mining

import (
	"github.com/pflow-xyz/go-pflow/cache"
	"github.com/pflow-xyz/go-pflow/petri"
)

// CacheMode selects which memoization layers the replay engine consults
// while replaying a trace. All four modes run the exact same per-event
// firing logic; they differ only in how much of a trace's replay can be
// skipped by reusing work done for an earlier trace.
type CacheMode int

const (
	// NoCache replays every event of every trace from scratch.
	NoCache CacheMode = iota
	// PrefixCaching reuses the replay state reached after the longest
	// previously-seen activity prefix.
	PrefixCaching
	// SuffixCaching reuses the replay state recorded for the remaining
	// activities once a (marking, postfix) pair has been seen before.
	SuffixCaching
	// PrefixAndSuffixCaching combines both layers.
	PrefixAndSuffixCaching
)

// firingTotals accumulates the token counts the fitness formula needs.
type firingTotals struct {
	consumed, produced, missing, remaining int
}

// ReplayTotals is the outcome of replaying one trace against a net: the raw
// token counts the fitness formula is computed from.
type ReplayTotals struct {
	Consumed, Produced, Missing, Remaining int
}

// ReplayEngine replays event-log traces against a Petri net using token-based
// replay: try to fire the next activity, use the silent planner to bridge a
// gap if it is blocked, and as a last resort insert the missing tokens so
// replay can continue past a non-conforming point in the trace.
type ReplayEngine struct {
	Net     *petri.PetriNet
	Planner SilentPlanner
	Mode    CacheMode

	traces     *cache.TraceCache
	prefixes   *cache.PrefixCache
	suffixes   *cache.SuffixCache
	activities *cache.ActivityCache
}

// NewReplayEngine builds an engine for net using planner to bridge silent
// gaps, with the memoization layers named by mode active. suffixBudget caps
// the postfix-string length the suffix cache will hold an entry for; a
// non-positive value falls back to cache.DefaultSuffixBudget.
func NewReplayEngine(net *petri.PetriNet, planner SilentPlanner, mode CacheMode, suffixBudget int) *ReplayEngine {
	e := &ReplayEngine{
		Net:        net,
		Planner:    planner,
		Mode:       mode,
		traces:     cache.NewTraceCache(0),
		activities: cache.NewActivityCache(),
	}
	if mode == PrefixCaching || mode == PrefixAndSuffixCaching {
		e.prefixes = cache.NewPrefixCache()
	}
	if mode == SuffixCaching || mode == PrefixAndSuffixCaching {
		e.suffixes = cache.NewSuffixCache(suffixBudget)
	}
	return e
}

// Replay runs the full replay of activities against the net, starting from
// the net's initial marking, returning the token counts needed to score
// fitness. Traces with an identical activity sequence to one seen earlier
// are served from the trace-level memo regardless of Mode.
func (e *ReplayEngine) Replay(activities []string) ReplayTotals {
	variantKey := joinForVariant(activities)
	if outcome, ok := e.traces.Get(variantKey); ok {
		return ReplayTotals(outcome)
	}

	final := e.Net.FinalMarking
	totals := firingTotals{}

	var result ReplayTotals
	switch e.Mode {
	case PrefixCaching:
		result = e.replayWithPrefix(activities, final, &totals)
	case SuffixCaching:
		result = e.replayWithSuffix(activities, final, &totals)
	case PrefixAndSuffixCaching:
		result = e.replayWithPrefixAndSuffix(activities, final, &totals)
	default:
		result = e.replayNoCache(activities, final, &totals)
	}

	e.traces.Put(variantKey, cache.TraceOutcome(result))
	return result
}

func joinForVariant(activities []string) string {
	total := 0
	if n := len(activities); n > 0 {
		total = n - 1
	}
	for _, a := range activities {
		total += len(a)
	}
	buf := make([]byte, 0, total)
	for i, a := range activities {
		if i > 0 {
			buf = append(buf, '\x1f')
		}
		buf = append(buf, a...)
	}
	return string(buf)
}

// fireOne fires a single activity from marking, bridging a blocked
// transition with the silent planner and, failing that, forcing the
// firing by inserting whatever tokens are missing. It is the inner loop
// shared by every cache mode.
func (e *ReplayEngine) fireOne(marking petri.Marking, activity string, totals *firingTotals) petri.Marking {
	if next, err := e.Net.Fire(marking, activity); err == nil {
		e.account(activity, totals)
		return next
	}

	if seq, ok := e.activities.Get(marking, activity); ok {
		if next, ok2 := e.tryFireSequence(marking, seq, activity, totals); ok2 {
			return next
		}
	} else if seq, ok := e.Planner.Enable(e.Net, marking, activity); ok {
		e.activities.Store(marking, activity, seq)
		if next, ok2 := e.tryFireSequence(marking, seq, activity, totals); ok2 {
			return next
		}
	}

	next, missing := e.Net.ForceFire(marking, activity)
	for _, m := range missing {
		totals.missing += m
	}
	e.account(activity, totals)
	return next
}

// tryFireSequence fires the silent bridge sequence followed by activity,
// applying it only if every step in the sequence actually fires (the
// silent planner's guidance is heuristic and must be validated).
func (e *ReplayEngine) tryFireSequence(marking petri.Marking, seq []string, activity string, totals *firingTotals) (petri.Marking, bool) {
	current := marking
	for _, s := range seq {
		next, err := e.Net.Fire(current, s)
		if err != nil {
			return marking, false
		}
		e.account(s, totals)
		current = next
	}
	next, err := e.Net.Fire(current, activity)
	if err != nil {
		return marking, false
	}
	e.account(activity, totals)
	return next, true
}

func (e *ReplayEngine) account(transition string, totals *firingTotals) {
	for _, w := range e.Net.Preset(transition) {
		totals.consumed += w
	}
	for _, w := range e.Net.Postset(transition) {
		totals.produced += w
	}
}

// finalize tries to close the gap between current and the net's final
// marking by asking the silent planner for a bridging sequence, firing
// whatever it returns, then charging any place still short to missing and
// any place still holding a surplus to remaining.
func (e *ReplayEngine) finalize(current, final petri.Marking, totals *firingTotals) petri.Marking {
	if seq, ok := e.Planner.ReachFinal(e.Net, current, final); ok {
		for _, label := range seq {
			next, err := e.Net.Fire(current, label)
			if err != nil {
				break
			}
			e.account(label, totals)
			current = next
		}
	}

	for place, need := range final {
		if have := current.TokensAt(place); have < need {
			totals.missing += need - have
		}
	}
	for place, have := range current {
		if have > final.TokensAt(place) {
			totals.remaining += have - final.TokensAt(place)
		}
	}
	return current
}

func (e *ReplayEngine) replayNoCache(activities []string, final petri.Marking, totals *firingTotals) ReplayTotals {
	current := e.Net.EffectiveInitialMarking()
	totals.produced += current.TotalTokens()
	totals.consumed += final.TotalTokens()
	for _, a := range activities {
		current = e.fireOne(current, a, totals)
	}
	e.finalize(current, final, totals)
	return ReplayTotals(*totals)
}

func (e *ReplayEngine) replayWithPrefix(activities []string, final petri.Marking, totals *firingTotals) ReplayTotals {
	if _, ok := e.prefixes.Get(""); !ok {
		init := e.Net.EffectiveInitialMarking()
		e.prefixes.Put("", cache.PrefixEntry{Marking: init, Produced: init.TotalTokens(), Consumed: final.TotalTokens()})
	}

	entry, covered, _ := e.prefixes.LongestPrefix(activities)
	current := entry.Marking.Copy()
	totals.produced = entry.Produced
	totals.consumed = entry.Consumed
	totals.missing = entry.Missing
	totals.remaining = entry.Remaining

	for i := covered; i < len(activities); i++ {
		current = e.fireOne(current, activities[i], totals)
		e.prefixes.Put(cache.PrefixKey(activities, i+1), cache.PrefixEntry{
			Marking:   current.Copy(),
			Consumed:  totals.consumed,
			Produced:  totals.produced,
			Missing:   totals.missing,
			Remaining: totals.remaining,
		})
	}
	e.finalize(current, final, totals)
	return ReplayTotals(*totals)
}

func (e *ReplayEngine) replayWithSuffix(activities []string, final petri.Marking, totals *firingTotals) ReplayTotals {
	current := e.Net.EffectiveInitialMarking()
	totals.produced += current.TotalTokens()
	totals.consumed += final.TotalTokens()

	snapshots := make(map[string]firingTotals)
	localMarkingKeys := make(map[string]string)

	for i := 0; i < len(activities); i++ {
		postfix := activities[i:]
		if entry, ok := e.suffixes.Get(current, postfix); ok {
			totals.consumed += entry.Consumed
			totals.produced += entry.Produced
			totals.missing += entry.Missing
			totals.remaining += entry.Remaining
			e.mergeSuffixDeltas(snapshots, localMarkingKeys, *totals)
			return ReplayTotals(*totals)
		}

		postfixKey := joinForVariant(postfix)
		snapshots[postfixKey] = *totals
		localMarkingKeys[postfixKey] = current.Key()

		current = e.fireOne(current, activities[i], totals)
	}

	current = e.finalize(current, final, totals)
	snapshots[""] = *totals
	localMarkingKeys[""] = current.Key()
	e.mergeSuffixDeltas(snapshots, localMarkingKeys, *totals)
	return ReplayTotals(*totals)
}

// mergeSuffixDeltas turns each position's absolute-totals snapshot into the
// delta between that snapshot and the trace's final totals (what the rest
// of the trace added from that point on), then merges those deltas into the
// shared suffix cache. This is the donor's "every local entry advances
// identically from here to the end" propagation, applied once per trace
// rather than re-derived on every firing.
func (e *ReplayEngine) mergeSuffixDeltas(snapshots map[string]firingTotals, markingKeys map[string]string, final firingTotals) {
	deltas := make(map[string]cache.SuffixEntry, len(snapshots))
	for postfix, snap := range snapshots {
		deltas[postfix] = cache.SuffixEntry{
			Consumed:  final.consumed - snap.consumed,
			Produced:  final.produced - snap.produced,
			Missing:   final.missing - snap.missing,
			Remaining: final.remaining - snap.remaining,
		}
	}
	e.suffixes.MergeLocal(deltas, markingKeys)
}

func (e *ReplayEngine) replayWithPrefixAndSuffix(activities []string, final petri.Marking, totals *firingTotals) ReplayTotals {
	if _, ok := e.prefixes.Get(""); !ok {
		init := e.Net.EffectiveInitialMarking()
		e.prefixes.Put("", cache.PrefixEntry{Marking: init, Produced: init.TotalTokens(), Consumed: final.TotalTokens()})
	}

	entry, covered, _ := e.prefixes.LongestPrefix(activities)
	current := entry.Marking.Copy()
	totals.produced = entry.Produced
	totals.consumed = entry.Consumed
	totals.missing = entry.Missing
	totals.remaining = entry.Remaining

	snapshots := make(map[string]firingTotals)
	localMarkingKeys := make(map[string]string)

	for i := covered; i < len(activities); i++ {
		postfix := activities[i:]
		if sufEntry, ok := e.suffixes.Get(current, postfix); ok {
			totals.consumed += sufEntry.Consumed
			totals.produced += sufEntry.Produced
			totals.missing += sufEntry.Missing
			totals.remaining += sufEntry.Remaining
			e.mergeSuffixDeltas(snapshots, localMarkingKeys, *totals)
			return ReplayTotals(*totals)
		}

		postfixKey := joinForVariant(postfix)
		snapshots[postfixKey] = *totals
		localMarkingKeys[postfixKey] = current.Key()

		current = e.fireOne(current, activities[i], totals)
		e.prefixes.Put(cache.PrefixKey(activities, i+1), cache.PrefixEntry{
			Marking:   current.Copy(),
			Consumed:  totals.consumed,
			Produced:  totals.produced,
			Missing:   totals.missing,
			Remaining: totals.remaining,
		})
	}

	current = e.finalize(current, final, totals)
	snapshots[""] = *totals
	localMarkingKeys[""] = current.Key()
	e.mergeSuffixDeltas(snapshots, localMarkingKeys, *totals)
	return ReplayTotals(*totals)
}

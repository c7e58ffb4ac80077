package mining

import (
	"sort"

	"github.com/pflow-xyz/go-pflow/petri"
)

// SilentPlanner finds sequences of silent (tau) transitions that bridge a
// gap between the current marking and a goal: either enabling one visible
// transition, or reaching the net's final marking. Implementations search
// the silent closure of a net; they never fire visible transitions.
type SilentPlanner interface {
	// Enable searches for a sequence of silent transitions that, fired in
	// order from marking, leaves target enabled. ok is false if no such
	// sequence was found within the planner's search budget.
	Enable(net *petri.PetriNet, marking petri.Marking, target string) (sequence []string, ok bool)

	// ReachFinal searches for a sequence of silent transitions that fires
	// from marking to a state containing final (marking.Contains(final)).
	ReachFinal(net *petri.PetriNet, marking petri.Marking, final petri.Marking) (sequence []string, ok bool)
}

// silentPathTable holds, for every pair of places (from, to), the shortest
// sequence of silent transitions believed to move a token's availability
// from "from" to "to": a heuristic guide, not a guarantee, since a
// candidate path is only accepted once it has been simulated against the
// actual current marking.
type silentPathTable map[string]map[string][]string

// BuildSilentPathTable precomputes, for each place in net, the shortest
// silent-transition paths to every other place reachable via tau edges, up
// to maxDepth hops. It is built once per net and reused across every trace
// replayed against that net.
func BuildSilentPathTable(net *petri.PetriNet, maxDepth int) silentPathTable {
	table := make(silentPathTable, len(net.Places))
	for place := range net.Places {
		table[place] = bfsSilentPaths(net, place, maxDepth)
	}
	return table
}

// bfsSilentPaths runs a breadth-first search from source over edges
// place->place induced by silent transitions (source is in the
// transition's preset, destination in its postset), recording the first
// (shortest) path found to each place.
func bfsSilentPaths(net *petri.PetriNet, source string, maxDepth int) map[string][]string {
	type frame struct {
		place string
		path  []string
	}
	paths := make(map[string][]string)
	visited := map[string]bool{source: true}
	queue := []frame{{place: source, path: nil}}

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []frame
		for _, f := range queue {
			for _, label := range sortedSilentTransitions(net) {
				preset := net.Preset(label)
				if _, inPreset := preset[f.place]; !inPreset {
					continue
				}
				for dest := range net.Postset(label) {
					if visited[dest] {
						continue
					}
					visited[dest] = true
					p := append(append([]string(nil), f.path...), label)
					paths[dest] = p
					next = append(next, frame{place: dest, path: p})
				}
			}
		}
		queue = next
	}
	return paths
}

func sortedSilentTransitions(net *petri.PetriNet) []string {
	var labels []string
	for label, t := range net.Transitions {
		if t.IsSilent() {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}

// HeuristicPlanner implements SilentPlanner using the deficit/surplus
// search: at each step it computes the places short of what the goal
// requires (delta) and the places holding tokens the goal does not need
// (lambda), then tries to bridge a lambda place to a delta place using the
// precomputed silent path table, firing the candidate path and repeating
// until the goal is met or the iteration budget is exhausted.
type HeuristicPlanner struct {
	Paths         silentPathTable
	MaxIterations int
}

// NewHeuristicPlanner builds a planner over the given silent path table.
// maxIterations bounds how many times the deficit/surplus loop restarts
// (the donor algorithm uses 10 for enabling a transition and 5 for reaching
// the final marking; callers may pass either).
func NewHeuristicPlanner(paths silentPathTable, maxIterations int) *HeuristicPlanner {
	if maxIterations <= 0 {
		maxIterations = 10
	}
	return &HeuristicPlanner{Paths: paths, MaxIterations: maxIterations}
}

func (h *HeuristicPlanner) Enable(net *petri.PetriNet, marking petri.Marking, target string) ([]string, bool) {
	required := petri.Marking(net.Preset(target))
	return h.search(net, marking, required, func(current petri.Marking) bool {
		return net.IsEnabled(current, target)
	})
}

func (h *HeuristicPlanner) ReachFinal(net *petri.PetriNet, marking petri.Marking, final petri.Marking) ([]string, bool) {
	return h.search(net, marking, final, func(current petri.Marking) bool {
		return current.Contains(final)
	})
}

// search runs the bounded deficit/surplus loop shared by Enable and
// ReachFinal. goal names the places the caller cares about covering;
// satisfied reports the true stopping condition, which may be looser than
// simple marking containment (e.g. transition enabling only needs the
// preset covered, not an exact match).
func (h *HeuristicPlanner) search(net *petri.PetriNet, marking, goal petri.Marking, satisfied func(petri.Marking) bool) ([]string, bool) {
	current := marking.Copy()
	var plan []string

	if satisfied(current) {
		return plan, true
	}

	for iter := 0; iter < h.MaxIterations; iter++ {
		delta := deficitSet(current, goal)
		lambda := surplusSet(current, goal)
		if len(delta) == 0 || len(lambda) == 0 {
			return nil, false
		}

		progressed := false
		for _, to := range delta {
			for _, from := range lambda {
				path, ok := h.Paths[from][to]
				if !ok || len(path) == 0 {
					continue
				}
				result, fired := simulatePath(net, current, path)
				if !fired {
					continue
				}
				current = result
				plan = append(plan, path...)
				progressed = true
				break
			}
			if progressed {
				break
			}
		}
		if !progressed {
			return nil, false
		}
		if satisfied(current) {
			return plan, true
		}
	}
	return nil, false
}

// simulatePath fires each transition in path in order from marking,
// stopping and reporting failure the moment one is not enabled.
func simulatePath(net *petri.PetriNet, marking petri.Marking, path []string) (petri.Marking, bool) {
	current := marking
	for _, label := range path {
		next, err := net.Fire(current, label)
		if err != nil {
			return marking, false
		}
		current = next
	}
	return current, true
}

// deficitSet returns the places, sorted, where goal requires strictly more
// tokens than current holds.
func deficitSet(current, goal petri.Marking) []string {
	var places []string
	for place, need := range goal {
		if need > current.TokensAt(place) {
			places = append(places, place)
		}
	}
	sort.Strings(places)
	return places
}

// surplusSet returns the places, sorted, holding tokens current does not
// need to satisfy goal: places where current exceeds goal's requirement,
// including places goal does not mention at all.
func surplusSet(current, goal petri.Marking) []string {
	var places []string
	for place, have := range current {
		if have > goal.TokensAt(place) {
			places = append(places, place)
		}
	}
	sort.Strings(places)
	return places
}

package mining

import (
	"sync"

	"github.com/pflow-xyz/go-pflow/petri"
)

// hyperGraphKey identifies one memoized search: the marking it started
// from and the goal it was searching for (a transition to enable, or a
// final marking to contain).
type hyperGraphKey struct {
	start string
	goal  string
}

type hyperGraphResult struct {
	reachable bool
	path      []string
}

// HyperGraphPlanner is an alternative SilentPlanner that performs a bounded
// depth-first search over markings reachable by firing only silent
// transitions, rather than the heuristic deficit/surplus guidance
// HeuristicPlanner uses. It trades the per-place shortest-path table for a
// direct state-space search, memoized by (starting marking, goal) pair so
// that repeated questions about the same marking are answered once.
type HyperGraphPlanner struct {
	MaxDepth int

	mu    sync.Mutex
	cache map[hyperGraphKey]hyperGraphResult
}

// NewHyperGraphPlanner creates a planner bounding its search to maxDepth
// silent firings. A non-positive maxDepth defaults to 12.
func NewHyperGraphPlanner(maxDepth int) *HyperGraphPlanner {
	if maxDepth <= 0 {
		maxDepth = 12
	}
	return &HyperGraphPlanner{MaxDepth: maxDepth, cache: make(map[hyperGraphKey]hyperGraphResult)}
}

func (h *HyperGraphPlanner) Enable(net *petri.PetriNet, marking petri.Marking, target string) ([]string, bool) {
	key := hyperGraphKey{start: marking.Key(), goal: "enable:" + target}
	return h.lookupOrSearch(net, marking, key, func(m petri.Marking) bool {
		return net.IsEnabled(m, target)
	})
}

func (h *HyperGraphPlanner) ReachFinal(net *petri.PetriNet, marking petri.Marking, final petri.Marking) ([]string, bool) {
	key := hyperGraphKey{start: marking.Key(), goal: "final:" + final.Key()}
	return h.lookupOrSearch(net, marking, key, func(m petri.Marking) bool {
		return m.Contains(final)
	})
}

func (h *HyperGraphPlanner) lookupOrSearch(net *petri.PetriNet, marking petri.Marking, key hyperGraphKey, satisfied func(petri.Marking) bool) ([]string, bool) {
	h.mu.Lock()
	if cached, ok := h.cache[key]; ok {
		h.mu.Unlock()
		if !cached.reachable {
			return nil, false
		}
		return append([]string(nil), cached.path...), true
	}
	h.mu.Unlock()

	path, ok := h.search(net, marking, satisfied)

	h.mu.Lock()
	if ok {
		h.cache[key] = hyperGraphResult{reachable: true, path: append([]string(nil), path...)}
	} else {
		h.cache[key] = hyperGraphResult{reachable: false}
	}
	h.mu.Unlock()

	return path, ok
}

// stackFrame is one entry of the iterative DFS stack: a reached marking and
// the silent path that reached it (the frame's depth is len(path)).
type stackFrame struct {
	marking petri.Marking
	path    []string
}

// search performs an iterative (stack-based) depth-first search over
// markings reachable by firing silent transitions, stopping at the first
// marking satisfying the goal predicate or when the depth bound or visited
// set is exhausted.
func (h *HyperGraphPlanner) search(net *petri.PetriNet, start petri.Marking, satisfied func(petri.Marking) bool) ([]string, bool) {
	if satisfied(start) {
		return nil, true
	}

	visited := map[string]bool{start.Key(): true}
	stack := []stackFrame{{marking: start, path: nil}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(frame.path) >= h.MaxDepth {
			continue
		}

		for _, label := range sortedSilentTransitions(net) {
			if !net.IsEnabled(frame.marking, label) {
				continue
			}
			next, err := net.Fire(frame.marking, label)
			if err != nil {
				continue
			}
			key := next.Key()
			if visited[key] {
				continue
			}
			visited[key] = true
			path := append(append([]string(nil), frame.path...), label)
			if satisfied(next) {
				return path, true
			}
			stack = append(stack, stackFrame{marking: next, path: path})
		}
	}
	return nil, false
}

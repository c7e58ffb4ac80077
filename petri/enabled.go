package petri

import (
	"fmt"
	"strings"
)

// SilentPrefix marks a transition as unobservable (tau): a transition whose
// Label carries this prefix represents model behavior with no
// corresponding activity in an event log.
const SilentPrefix = "tau"

// IsSilent reports whether t represents an unobservable (tau) step.
func (t *Transition) IsSilent() bool {
	return strings.HasPrefix(t.Label, SilentPrefix)
}

// IsSilentTransition reports whether the named transition is silent. It
// returns false for a transition that does not exist, leaving the
// not-found case to callers that need to distinguish it.
func (n *PetriNet) IsSilentTransition(transition string) bool {
	t, ok := n.Transitions[transition]
	return ok && t.IsSilent()
}

// Preset returns the consumption weight this transition requires from each
// input place. Inhibitor arcs are excluded: they gate enabling rather than
// consume tokens.
func (n *PetriNet) Preset(transition string) map[string]int {
	preset := make(map[string]int)
	for _, arc := range n.Arcs {
		if arc.Target != transition || arc.InhibitTransition {
			continue
		}
		if _, isPlace := n.Places[arc.Source]; !isPlace {
			continue
		}
		preset[arc.Source] += weightOf(arc)
	}
	return preset
}

// Postset returns the production weight this transition deposits into each
// output place.
func (n *PetriNet) Postset(transition string) map[string]int {
	postset := make(map[string]int)
	for _, arc := range n.Arcs {
		if arc.Source != transition {
			continue
		}
		if _, isPlace := n.Places[arc.Target]; !isPlace {
			continue
		}
		postset[arc.Target] += weightOf(arc)
	}
	return postset
}

// inhibitors returns the (place, threshold) pairs that must hold fewer than
// threshold tokens for the transition to be enabled.
func (n *PetriNet) inhibitors(transition string) map[string]int {
	var inhib map[string]int
	for _, arc := range n.Arcs {
		if arc.Target != transition || !arc.InhibitTransition {
			continue
		}
		if inhib == nil {
			inhib = make(map[string]int)
		}
		inhib[arc.Source] = weightOf(arc)
	}
	return inhib
}

func weightOf(a *Arc) int {
	w := int(a.GetWeightSum())
	if w < 1 {
		w = 1
	}
	return w
}

// IsEnabled reports whether transition can fire from marking: the marking
// must cover the transition's preset and clear every inhibitor threshold.
func (n *PetriNet) IsEnabled(marking Marking, transition string) bool {
	if _, ok := n.Transitions[transition]; !ok {
		return false
	}
	for place, need := range n.Preset(transition) {
		if marking.TokensAt(place) < need {
			return false
		}
	}
	for place, threshold := range n.inhibitors(transition) {
		if marking.TokensAt(place) >= threshold {
			return false
		}
	}
	return true
}

// Fire applies transition to marking, returning the resulting marking. It
// does not mutate marking. Firing a disabled transition is an error; callers
// that need to force a firing (inserting missing tokens) should use
// ForceFire.
func (n *PetriNet) Fire(marking Marking, transition string) (Marking, error) {
	if _, ok := n.Transitions[transition]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrTransitionNotFound, transition)
	}
	if !n.IsEnabled(marking, transition) {
		return nil, fmt.Errorf("%w: %s", ErrTransitionNotEnabled, transition)
	}
	return n.applyFiring(marking, transition), nil
}

// ForceFire fires transition regardless of whether it is enabled, clamping
// any place that would go negative to zero and reporting the tokens that
// had to be fabricated to make the firing possible (missing) along with the
// resulting marking.
func (n *PetriNet) ForceFire(marking Marking, transition string) (next Marking, missing map[string]int) {
	if _, ok := n.Transitions[transition]; !ok {
		return marking.Copy(), nil
	}
	missing = make(map[string]int)
	adjusted := marking.Copy()
	for place, need := range n.Preset(transition) {
		have := adjusted.TokensAt(place)
		if have < need {
			missing[place] = need - have
			adjusted[place] = need
		}
	}
	for place, m := range missing {
		if m == 0 {
			delete(missing, place)
		}
	}
	return n.applyFiring(adjusted, transition), missing
}

func (n *PetriNet) applyFiring(marking Marking, transition string) Marking {
	delta := make(Marking)
	for place, w := range n.Preset(transition) {
		delta[place] -= w
	}
	for place, w := range n.Postset(transition) {
		delta[place] += w
	}
	return marking.Add(delta)
}

// EnabledTransitions returns the labels of every transition enabled at
// marking, in map-iteration order (callers that need determinism should
// sort the result).
func (n *PetriNet) EnabledTransitions(marking Marking) []string {
	var enabled []string
	for label := range n.Transitions {
		if n.IsEnabled(marking, label) {
			enabled = append(enabled, label)
		}
	}
	return enabled
}

// VisiblyEnabledEventually performs a bounded breadth-first search over
// silent firings reachable from marking and returns the set of visible
// (non-silent) transitions that become enabled at marking or after any
// number of silent steps, up to maxDepth silent firings per path. It is
// used by the precision metric to compute the "allowed tasks" at a point
// in a replayed trace. The search is over transitions firing, not full
// reachability: states are deduplicated by marking key to bound the work
// on nets with cyclic silent behavior.
func (n *PetriNet) VisiblyEnabledEventually(marking Marking, maxDepth int) map[string]bool {
	allowed := make(map[string]bool)
	visited := map[string]bool{marking.Key(): true}
	frontier := []Marking{marking}

	for depth := 0; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []Marking
		for _, m := range frontier {
			for _, label := range n.EnabledTransitions(m) {
				if !n.IsSilentTransition(label) {
					allowed[label] = true
					continue
				}
				if depth == maxDepth {
					continue
				}
				result, err := n.Fire(m, label)
				if err != nil {
					continue
				}
				if key := result.Key(); !visited[key] {
					visited[key] = true
					next = append(next, result)
				}
			}
		}
		frontier = next
	}
	return allowed
}

// EffectiveInitialMarking returns n.InitialMarking if set, otherwise derives
// one from each place's Initial color-vector sum, rounded to whole tokens.
func (n *PetriNet) EffectiveInitialMarking() Marking {
	if n.InitialMarking != nil {
		return n.InitialMarking.Copy()
	}
	m := make(Marking, len(n.Places))
	for label, place := range n.Places {
		if tokens := int(place.GetTokenCount()); tokens != 0 {
			m[label] = tokens
		}
	}
	return m
}

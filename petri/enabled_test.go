package petri

import "testing"

func sequenceTestNet() *PetriNet {
	net := NewPetriNet()
	net.AddPlace("p1", 1.0, nil, 0, 0, nil)
	net.AddPlace("p2", 0.0, nil, 0, 0, nil)
	net.AddTransition("a", "default", 0, 0, nil)
	net.AddArc("p1", "a", nil, false)
	net.AddArc("a", "p2", nil, false)
	return net
}

func TestIsSilent(t *testing.T) {
	net := NewPetriNet()
	net.AddTransition("tauSkip", "default", 0, 0, nil)
	net.AddTransition("approve", "default", 0, 0, nil)

	if !net.Transitions["tauSkip"].IsSilent() {
		t.Error("expected a transition named tauSkip to be silent")
	}
	if net.Transitions["approve"].IsSilent() {
		t.Error("expected a transition named approve to be visible")
	}
}

func TestIsEnabledRespectsPreset(t *testing.T) {
	net := sequenceTestNet()
	marking := net.EffectiveInitialMarking()

	if !net.IsEnabled(marking, "a") {
		t.Error("expected a to be enabled when p1 holds a token")
	}
	if net.IsEnabled(Marking{"p1": 0}, "a") {
		t.Error("expected a to be disabled when p1 is empty")
	}
}

func TestIsEnabledRespectsInhibitor(t *testing.T) {
	net := NewPetriNet()
	net.AddPlace("p1", 1.0, nil, 0, 0, nil)
	net.AddPlace("guard", 1.0, nil, 0, 0, nil)
	net.AddTransition("a", "default", 0, 0, nil)
	net.AddArc("p1", "a", nil, false)
	net.AddArc("a", "p1", nil, false)
	net.AddArc("guard", "a", nil, true)

	marking := Marking{"p1": 1, "guard": 1}
	if net.IsEnabled(marking, "a") {
		t.Error("expected a to be disabled while its inhibitor place holds a token")
	}
	if !net.IsEnabled(Marking{"p1": 1}, "a") {
		t.Error("expected a to be enabled once the inhibitor place is empty")
	}
}

func TestFireMovesTokens(t *testing.T) {
	net := sequenceTestNet()
	marking := net.EffectiveInitialMarking()

	next, err := net.Fire(marking, "a")
	if err != nil {
		t.Fatalf("fire a: %v", err)
	}
	if next.TokensAt("p1") != 0 || next.TokensAt("p2") != 1 {
		t.Errorf("expected tokens to move from p1 to p2, got %v", next)
	}
	if marking.TokensAt("p1") != 1 {
		t.Error("Fire must not mutate the marking passed in")
	}
}

func TestFireDisabledTransitionReturnsError(t *testing.T) {
	net := sequenceTestNet()
	_, err := net.Fire(Marking{"p1": 0}, "a")
	if err == nil {
		t.Error("expected firing a disabled transition to return an error")
	}
}

func TestForceFireReportsMissingTokens(t *testing.T) {
	net := sequenceTestNet()
	next, missing := net.ForceFire(Marking{}, "a")

	if missing["p1"] != 1 {
		t.Errorf("expected 1 missing token at p1, got %v", missing)
	}
	if next.TokensAt("p2") != 1 {
		t.Errorf("expected the firing to still produce a token at p2, got %v", next)
	}
}

func TestVisiblyEnabledEventuallyChasesSilents(t *testing.T) {
	net := NewPetriNet()
	net.AddPlace("p1", 1.0, nil, 0, 0, nil)
	net.AddPlace("p2", 0.0, nil, 0, 0, nil)
	net.AddTransition("tauBridge", "default", 0, 0, nil)
	net.AddTransition("a", "default", 0, 0, nil)
	net.AddArc("p1", "tauBridge", nil, false)
	net.AddArc("tauBridge", "p2", nil, false)
	net.AddArc("p2", "a", nil, false)

	marking := Marking{"p1": 1}
	allowed := net.VisiblyEnabledEventually(marking, 5)
	if !allowed["a"] {
		t.Errorf("expected a to be visibly enabled after chasing tauBridge, got %v", allowed)
	}
}

func TestEffectiveInitialMarkingPrefersExplicitMarking(t *testing.T) {
	net := sequenceTestNet()
	net.InitialMarking = Marking{"p1": 5}

	if got := net.EffectiveInitialMarking(); got.TokensAt("p1") != 5 {
		t.Errorf("expected the explicit initial marking to take precedence, got %v", got)
	}
}

func TestEffectiveInitialMarkingDerivesFromPlaceTokens(t *testing.T) {
	net := sequenceTestNet()
	if got := net.EffectiveInitialMarking(); got.TokensAt("p1") != 1 {
		t.Errorf("expected the marking derived from place token counts, got %v", got)
	}
}

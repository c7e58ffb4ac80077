package petri

import "testing"

func TestMarkingTokensAt(t *testing.T) {
	m := Marking{"p1": 2}
	if m.TokensAt("p1") != 2 {
		t.Errorf("expected 2 tokens at p1, got %d", m.TokensAt("p1"))
	}
	if m.TokensAt("missing") != 0 {
		t.Errorf("expected 0 tokens at an absent place, got %d", m.TokensAt("missing"))
	}
}

func TestMarkingContains(t *testing.T) {
	m := Marking{"p1": 3, "p2": 1}
	final := Marking{"p1": 2}
	if !m.Contains(final) {
		t.Error("expected m to contain final")
	}
	if m.Contains(Marking{"p1": 4}) {
		t.Error("expected m not to contain a marking requiring more tokens than it has")
	}
}

func TestMarkingEquals(t *testing.T) {
	a := Marking{"p1": 1, "p2": 0}
	b := Marking{"p1": 1}
	if !a.Equals(b) {
		t.Error("expected markings that agree modulo zero entries to be equal")
	}
	c := Marking{"p1": 2}
	if a.Equals(c) {
		t.Error("expected markings with different token counts to differ")
	}
}

func TestMarkingAdd(t *testing.T) {
	m := Marking{"p1": 2, "p2": 1}
	delta := Marking{"p1": -1, "p3": 1}
	result := m.Add(delta)

	if result.TokensAt("p1") != 1 {
		t.Errorf("expected p1 = 1, got %d", result.TokensAt("p1"))
	}
	if result.TokensAt("p2") != 1 {
		t.Errorf("expected p2 = 1, got %d", result.TokensAt("p2"))
	}
	if result.TokensAt("p3") != 1 {
		t.Errorf("expected p3 = 1, got %d", result.TokensAt("p3"))
	}
	if m.TokensAt("p1") != 2 {
		t.Error("Add must not mutate the receiver")
	}
}

func TestMarkingCopyIsIndependent(t *testing.T) {
	m := Marking{"p1": 1}
	cp := m.Copy()
	cp["p1"] = 99
	if m.TokensAt("p1") != 1 {
		t.Error("mutating a copy must not affect the original")
	}
}

func TestMarkingTotalTokens(t *testing.T) {
	m := Marking{"p1": 2, "p2": 3, "p3": 0}
	if m.TotalTokens() != 5 {
		t.Errorf("expected total 5, got %d", m.TotalTokens())
	}
}

func TestMarkingKeyIsOrderIndependent(t *testing.T) {
	a := Marking{"p1": 1, "p2": 2}
	b := Marking{"p2": 2, "p1": 1}
	if a.Key() != b.Key() {
		t.Error("Key must not depend on map iteration order")
	}
}

func TestMarkingHashMatchesEqualMarkings(t *testing.T) {
	a := Marking{"p1": 1, "p2": 0}
	b := Marking{"p1": 1}
	if a.Hash() != b.Hash() {
		t.Error("markings that are Equal should hash the same")
	}
}

func TestMarkingHashDiffersOnDistinctMarkings(t *testing.T) {
	a := Marking{"p1": 1}
	b := Marking{"p1": 2}
	if a.Hash() == b.Hash() {
		t.Error("distinct markings should (almost certainly) hash differently")
	}
}

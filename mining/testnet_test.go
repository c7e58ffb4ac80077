package mining

import "github.com/pflow-xyz/go-pflow/petri"

// simpleSequenceNet builds p1 -[a]-> p2 -[b]-> p3, with one token starting
// at p1 and the final marking expecting one token at p3.
func simpleSequenceNet() *petri.PetriNet {
	net := petri.NewPetriNet()
	net.AddPlace("p1", 1.0, nil, 0, 0, nil)
	net.AddPlace("p2", 0.0, nil, 0, 0, nil)
	net.AddPlace("p3", 0.0, nil, 0, 0, nil)
	net.AddTransition("a", "default", 0, 0, nil)
	net.AddTransition("b", "default", 0, 0, nil)
	net.AddArc("p1", "a", nil, false)
	net.AddArc("a", "p2", nil, false)
	net.AddArc("p2", "b", nil, false)
	net.AddArc("b", "p3", nil, false)
	net.InitialMarking = petri.Marking{"p1": 1}
	net.FinalMarking = petri.Marking{"p3": 1}
	return net
}

// loopNet builds a net where "a" can repeat any number of times via a
// silent transition looping back before "b" closes out the case:
// p1 -[a]-> p2 -[tauLoop]-> p1, p2 -[b]-> p3.
func loopNet() *petri.PetriNet {
	net := petri.NewPetriNet()
	net.AddPlace("p1", 1.0, nil, 0, 0, nil)
	net.AddPlace("p2", 0.0, nil, 0, 0, nil)
	net.AddPlace("p3", 0.0, nil, 0, 0, nil)
	net.AddTransition("a", "default", 0, 0, nil)
	net.AddTransition("tauLoop", "default", 0, 0, nil)
	net.AddTransition("b", "default", 0, 0, nil)
	net.AddArc("p1", "a", nil, false)
	net.AddArc("a", "p2", nil, false)
	net.AddArc("p2", "tauLoop", nil, false)
	net.AddArc("tauLoop", "p1", nil, false)
	net.AddArc("p2", "b", nil, false)
	net.AddArc("b", "p3", nil, false)
	net.InitialMarking = petri.Marking{"p1": 1}
	net.FinalMarking = petri.Marking{"p3": 1}
	return net
}

// silentTailNet requires a silent transition to fire after "b" before the
// case reaches its final marking: p1 -[a]-> p2 -[b]-> p3 -[tauEnd]-> p4.
func silentTailNet() *petri.PetriNet {
	net := petri.NewPetriNet()
	net.AddPlace("p1", 1.0, nil, 0, 0, nil)
	net.AddPlace("p2", 0.0, nil, 0, 0, nil)
	net.AddPlace("p3", 0.0, nil, 0, 0, nil)
	net.AddPlace("p4", 0.0, nil, 0, 0, nil)
	net.AddTransition("a", "default", 0, 0, nil)
	net.AddTransition("b", "default", 0, 0, nil)
	net.AddTransition("tauEnd", "default", 0, 0, nil)
	net.AddArc("p1", "a", nil, false)
	net.AddArc("a", "p2", nil, false)
	net.AddArc("p2", "b", nil, false)
	net.AddArc("b", "p3", nil, false)
	net.AddArc("p3", "tauEnd", nil, false)
	net.AddArc("tauEnd", "p4", nil, false)
	net.InitialMarking = petri.Marking{"p1": 1}
	net.FinalMarking = petri.Marking{"p4": 1}
	return net
}

// silentBeforeEndNet starts with a silent transition splitting into two
// visible alternatives that both need the same input token, then closes out
// through a second silent transition: tau1: start->p1; A: p1->p2;
// B: p1->p2; tau2: p2->end.
func silentBeforeEndNet() *petri.PetriNet {
	net := petri.NewPetriNet()
	net.AddPlace("start", 1.0, nil, 0, 0, nil)
	net.AddPlace("p1", 0.0, nil, 0, 0, nil)
	net.AddPlace("p2", 0.0, nil, 0, 0, nil)
	net.AddPlace("end", 0.0, nil, 0, 0, nil)
	net.AddTransition("tau1", "default", 0, 0, nil)
	net.AddTransition("A", "default", 0, 0, nil)
	net.AddTransition("B", "default", 0, 0, nil)
	net.AddTransition("tau2", "default", 0, 0, nil)
	net.AddArc("start", "tau1", nil, false)
	net.AddArc("tau1", "p1", nil, false)
	net.AddArc("p1", "A", nil, false)
	net.AddArc("A", "p2", nil, false)
	net.AddArc("p1", "B", nil, false)
	net.AddArc("B", "p2", nil, false)
	net.AddArc("p2", "tau2", nil, false)
	net.AddArc("tau2", "end", nil, false)
	net.InitialMarking = petri.Marking{"start": 1}
	net.FinalMarking = petri.Marking{"end": 1}
	return net
}

// precisionChoiceNet starts with a silent transition to p1, from which "A"
// loops back to p1 and "B" closes out to end: the model allows A to repeat
// any number of times before B, so a log that never repeats A should show
// reduced precision.
func precisionChoiceNet() *petri.PetriNet {
	net := petri.NewPetriNet()
	net.AddPlace("start", 1.0, nil, 0, 0, nil)
	net.AddPlace("p1", 0.0, nil, 0, 0, nil)
	net.AddPlace("end", 0.0, nil, 0, 0, nil)
	net.AddTransition("tau1", "default", 0, 0, nil)
	net.AddTransition("A", "default", 0, 0, nil)
	net.AddTransition("B", "default", 0, 0, nil)
	net.AddArc("start", "tau1", nil, false)
	net.AddArc("tau1", "p1", nil, false)
	net.AddArc("p1", "A", nil, false)
	net.AddArc("A", "p1", nil, false)
	net.AddArc("p1", "B", nil, false)
	net.AddArc("B", "end", nil, false)
	net.InitialMarking = petri.Marking{"start": 1}
	net.FinalMarking = petri.Marking{"end": 1}
	return net
}

// choiceNet offers a choice between "a" and "b" from a shared input place,
// both closing out at p3: a log that only ever takes "a" would flag "b" as
// an escaping edge.
func choiceNet() *petri.PetriNet {
	net := petri.NewPetriNet()
	net.AddPlace("p1", 1.0, nil, 0, 0, nil)
	net.AddPlace("p3", 0.0, nil, 0, 0, nil)
	net.AddTransition("a", "default", 0, 0, nil)
	net.AddTransition("b", "default", 0, 0, nil)
	net.AddArc("p1", "a", nil, false)
	net.AddArc("a", "p3", nil, false)
	net.AddArc("p1", "b", nil, false)
	net.AddArc("b", "p3", nil, false)
	net.InitialMarking = petri.Marking{"p1": 1}
	net.FinalMarking = petri.Marking{"p3": 1}
	return net
}

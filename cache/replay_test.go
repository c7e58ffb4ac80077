package cache

import (
	"testing"

	"github.com/pflow-xyz/go-pflow/petri"
)

func TestTraceCachePutGet(t *testing.T) {
	c := NewTraceCache(0)
	outcome := TraceOutcome{Consumed: 3, Produced: 3}

	if _, ok := c.Get("a,b"); ok {
		t.Error("expected a miss on an empty cache")
	}
	c.Put("a,b", outcome)
	got, ok := c.Get("a,b")
	if !ok || got != outcome {
		t.Errorf("expected %+v, got %+v (ok=%v)", outcome, got, ok)
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got hits=%d misses=%d", hits, misses)
	}
}

func TestPrefixCacheLongestPrefix(t *testing.T) {
	c := NewPrefixCache()
	c.Put("", PrefixEntry{Marking: petri.Marking{"start": 1}})
	c.Put(PrefixKey([]string{"a"}, 1), PrefixEntry{Marking: petri.Marking{"p1": 1}, Consumed: 1})

	entry, covered, ok := c.LongestPrefix([]string{"a", "b"})
	if !ok {
		t.Fatal("expected a cached prefix to be found")
	}
	if covered != 1 {
		t.Errorf("expected the longest cached prefix to cover 1 activity, got %d", covered)
	}
	if entry.Consumed != 1 {
		t.Errorf("expected the cached entry for prefix \"a\", got %+v", entry)
	}
}

func TestPrefixCacheLongestPrefixFallsBackToEmpty(t *testing.T) {
	c := NewPrefixCache()
	c.Put("", PrefixEntry{Marking: petri.Marking{"start": 1}})

	_, covered, ok := c.LongestPrefix([]string{"a", "b", "c"})
	if !ok {
		t.Fatal("expected the empty prefix to always be found once seeded")
	}
	if covered != 0 {
		t.Errorf("expected 0 activities covered, got %d", covered)
	}
}

func TestSuffixCacheGetAndMergeLocal(t *testing.T) {
	c := NewSuffixCache(0)
	marking := petri.Marking{"p2": 1}

	if _, ok := c.Get(marking, []string{"b"}); ok {
		t.Error("expected a miss before any merge")
	}

	local := map[string]SuffixEntry{
		"b": {Consumed: 1, Produced: 1},
	}
	markingKeys := map[string]string{"b": marking.Key()}
	c.MergeLocal(local, markingKeys)

	entry, ok := c.Get(marking, []string{"b"})
	if !ok || entry.Consumed != 1 {
		t.Errorf("expected the merged entry to be retrievable, got %+v (ok=%v)", entry, ok)
	}
}

func TestSuffixCacheRejectsPostfixesOverBudget(t *testing.T) {
	c := NewSuffixCache(5)
	marking := petri.Marking{"p2": 1}
	longPostfix := []string{"alpha", "beta", "gamma"}

	local := map[string]SuffixEntry{
		joinActivities(longPostfix): {Consumed: 1, Produced: 1},
	}
	markingKeys := map[string]string{joinActivities(longPostfix): marking.Key()}
	c.MergeLocal(local, markingKeys)

	if _, ok := c.Get(marking, longPostfix); ok {
		t.Error("expected a postfix longer than the budget to be rejected, not cached")
	}
}

func TestActivityCacheStoreAndGet(t *testing.T) {
	c := NewActivityCache()
	marking := petri.Marking{"start": 1}

	if _, ok := c.Get(marking, "a"); ok {
		t.Error("expected a miss before storing")
	}
	c.Store(marking, "a", []string{"tau1"})
	seq, ok := c.Get(marking, "a")
	if !ok || len(seq) != 1 || seq[0] != "tau1" {
		t.Errorf("expected [tau1], got %v (ok=%v)", seq, ok)
	}
}

func TestAllowedTasksCacheStoreAndGet(t *testing.T) {
	c := NewAllowedTasksCache()
	marking := petri.Marking{"p1": 1}

	if _, ok := c.Get(marking); ok {
		t.Error("expected a miss before storing")
	}
	tasks := map[string]bool{"a": true, "b": true}
	c.Store(marking, tasks)
	got, ok := c.Get(marking)
	if !ok || len(got) != 2 {
		t.Errorf("expected the stored task set back, got %v (ok=%v)", got, ok)
	}
}

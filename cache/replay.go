package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pflow-xyz/go-pflow/petri"
)

// TraceOutcome is the memoized result of replaying one trace variant: every
// case whose activity sequence is identical reuses the same outcome rather
// than re-running the replay engine.
type TraceOutcome struct {
	Consumed, Produced, Missing, Remaining int
}

// TraceCache memoizes replay outcomes by trace identity (the activity
// sequence alone, independent of case ID or timestamps). Built on
// hashicorp/golang-lru so that logs with many distinct variants still bound
// memory.
type TraceCache struct {
	mu    sync.Mutex
	cache *lru.Cache[string, TraceOutcome]
	hits  int64
	miss  int64
}

// NewTraceCache creates a trace cache holding up to maxSize variants. A
// non-positive maxSize falls back to 4096 entries.
func NewTraceCache(maxSize int) *TraceCache {
	if maxSize <= 0 {
		maxSize = 4096
	}
	c, _ := lru.New[string, TraceOutcome](maxSize)
	return &TraceCache{cache: c}
}

// Get returns the memoized outcome for a trace variant key, if present.
func (c *TraceCache) Get(variantKey string) (TraceOutcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache.Get(variantKey)
	if ok {
		c.hits++
	} else {
		c.miss++
	}
	return v, ok
}

// Put stores the outcome for a trace variant key.
func (c *TraceCache) Put(variantKey string, outcome TraceOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(variantKey, outcome)
}

// Stats returns the cache hit and miss counts.
func (c *TraceCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.miss
}

// PrefixEntry is one node of the prefix cache: the replay state reached
// after firing the activities named by a prefix string.
type PrefixEntry struct {
	Marking   petri.Marking
	Consumed  int
	Produced  int
	Missing   int
	Remaining int
}

// PrefixCache memoizes replay state by the string-joined sequence of
// activities fired so far, so that traces sharing a common prefix (e.g. two
// cases that both start "register, check, approve") replay that shared
// portion once. LongestPrefix scans from the full activity sequence down
// to the empty prefix and returns the first stored entry, rather than
// walking a trie.
type PrefixCache struct {
	mu      sync.RWMutex
	entries map[string]PrefixEntry
}

// NewPrefixCache creates an empty prefix cache.
func NewPrefixCache() *PrefixCache {
	return &PrefixCache{entries: make(map[string]PrefixEntry)}
}

// Get returns the entry stored for an exact prefix key.
func (c *PrefixCache) Get(prefixKey string) (PrefixEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[prefixKey]
	return e, ok
}

// Put stores the entry for an exact prefix key.
func (c *PrefixCache) Put(prefixKey string, entry PrefixEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[prefixKey] = entry
}

// LongestPrefix scans the activity sequence from its full length down to
// zero and returns the longest prefix with a cached entry, along with how
// many leading activities it covers. It returns ok=false if even the empty
// prefix has never been cached (the caller should seed the empty-prefix
// entry with the net's initial marking).
func (c *PrefixCache) LongestPrefix(activities []string) (entry PrefixEntry, coveredLen int, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for n := len(activities); n >= 0; n-- {
		key := joinActivities(activities[:n])
		if e, found := c.entries[key]; found {
			return e, n, true
		}
	}
	return PrefixEntry{}, 0, false
}

func joinActivities(activities []string) string {
	if len(activities) == 0 {
		return ""
	}
	total := len(activities) - 1
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

// PrefixKey builds the cache key for the first n activities of a trace.
func PrefixKey(activities []string, n int) string {
	return joinActivities(activities[:n])
}

// SuffixEntry is the replay state found (or projected) for a given
// (marking, remaining-activities) pair.
type SuffixEntry struct {
	Consumed  int
	Produced  int
	Missing   int
	Remaining int
}

// suffixKey pairs a marking with the remaining activity sequence, matching
// the donor's MarkingPostfixKey: two cases reaching the same marking with
// the same remaining activities to replay will finish identically.
type suffixKey struct {
	markingKey string
	postfix    string
}

// DefaultSuffixBudget is the maximum postfix-string length (in joined
// activity-label characters) the suffix cache will hold an entry for,
// matching the donor's max_suffix_length_to_be_considered default of 5.
const DefaultSuffixBudget = 5

// SuffixCache memoizes replay state by (marking, postfix-of-activities).
// It keeps a local, per-trace view as well as a shared global view: within
// a trace, every firing along the way updates all local entries observed so
// far (their consumed/produced/missing/remaining grow identically from that
// point on), and only once the trace finishes are the local entries merged
// into the global cache for reuse by later traces.
//
// Entries whose postfix string exceeds maxPostfixLen are never looked up or
// stored: long postfixes are rarely shared across traces, so caching them
// would grow the cache without bound for little reuse benefit.
type SuffixCache struct {
	mu            sync.RWMutex
	global        map[suffixKey]SuffixEntry
	maxPostfixLen int
}

// NewSuffixCache creates an empty suffix cache that only considers postfixes
// up to maxPostfixLen characters long. A non-positive maxPostfixLen falls
// back to DefaultSuffixBudget.
func NewSuffixCache(maxPostfixLen int) *SuffixCache {
	if maxPostfixLen <= 0 {
		maxPostfixLen = DefaultSuffixBudget
	}
	return &SuffixCache{global: make(map[suffixKey]SuffixEntry), maxPostfixLen: maxPostfixLen}
}

// Get looks up the global cache for a (marking, postfix) pair. Postfixes
// longer than the configured budget are reported as a miss without ever
// touching the map, since they were never stored.
func (c *SuffixCache) Get(marking petri.Marking, postfix []string) (SuffixEntry, bool) {
	key := joinActivities(postfix)
	if len(key) > c.maxPostfixLen {
		return SuffixEntry{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.global[suffixKey{markingKey: marking.Key(), postfix: key}]
	return e, ok
}

// MergeLocal folds a trace-local suffix map into the shared global cache
// once the trace has finished replaying. Entries whose postfix exceeds the
// configured budget are dropped rather than merged.
func (c *SuffixCache) MergeLocal(local map[string]SuffixEntry, markingKeys map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for postfix, entry := range local {
		if len(postfix) > c.maxPostfixLen {
			continue
		}
		mk, ok := markingKeys[postfix]
		if !ok {
			continue
		}
		c.global[suffixKey{markingKey: mk, postfix: postfix}] = entry
	}
}

// ActivityCache memoizes, per (marking, transition) pair, the sequence of
// silent transitions the replay engine fired in order to enable transition
// from marking. A hit lets the engine skip re-running the silent planner
// for a combination it has already solved.
type ActivityCache struct {
	mu    sync.RWMutex
	cache map[string][]string
}

// NewActivityCache creates an empty activity cache.
func NewActivityCache() *ActivityCache {
	return &ActivityCache{cache: make(map[string][]string)}
}

func activityCacheKey(marking petri.Marking, transition string) string {
	return marking.Key() + "->" + transition
}

// Get returns the silent-firing sequence previously found to enable
// transition from marking.
func (c *ActivityCache) Get(marking petri.Marking, transition string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seq, ok := c.cache[activityCacheKey(marking, transition)]
	return seq, ok
}

// Store records the silent-firing sequence that enables transition from
// marking.
func (c *ActivityCache) Store(marking petri.Marking, transition string, sequence []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[activityCacheKey(marking, transition)] = sequence
}

// AllowedTasksCache memoizes the set of visible transitions eventually
// enabled from a marking, avoiding repeated bounded-BFS searches over the
// silent closure when many traces pass through the same marking.
type AllowedTasksCache struct {
	mu    sync.RWMutex
	cache map[string]map[string]bool
}

// NewAllowedTasksCache creates an empty allowed-tasks cache.
func NewAllowedTasksCache() *AllowedTasksCache {
	return &AllowedTasksCache{cache: make(map[string]map[string]bool)}
}

// Get returns the allowed-task set computed for marking.
func (c *AllowedTasksCache) Get(marking petri.Marking) (map[string]bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tasks, ok := c.cache[marking.Key()]
	return tasks, ok
}

// Store records the allowed-task set for marking.
func (c *AllowedTasksCache) Store(marking petri.Marking, tasks map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[marking.Key()] = tasks
}

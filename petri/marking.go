package petri

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Marking is a discrete token distribution over the places of a net: a
// multiset of places, each holding a non-negative number of tokens. Unlike
// Place.Initial/Capacity (float64 color vectors used by the ODE solver),
// Marking is the whole-token state used by replay: the number of tokens at
// a place is always a non-negative integer.
type Marking map[string]int

// NewMarking builds a Marking from a set of places, defaulting every place
// not present in tokens to zero.
func NewMarking(tokens map[string]int) Marking {
	m := make(Marking, len(tokens))
	for k, v := range tokens {
		if v != 0 {
			m[k] = v
		}
	}
	return m
}

// TokensAt returns the token count held at place, or 0 if the place is
// absent from the marking.
func (m Marking) TokensAt(place string) int {
	return m[place]
}

// Contains reports whether m has at least as many tokens at every place as
// other requires: m >= other, place-wise.
func (m Marking) Contains(other Marking) bool {
	for place, need := range other {
		if m[place] < need {
			return false
		}
	}
	return true
}

// Equals reports whether two markings hold identical token counts at every
// place. Zero-valued entries are treated as absent, so a Marking built by
// arithmetic that happens to leave a zero in the map still compares equal
// to one that never stored the key.
func (m Marking) Equals(other Marking) bool {
	for place, count := range m {
		if count != 0 && other[place] != count {
			return false
		}
	}
	for place, count := range other {
		if count != 0 && m[place] != count {
			return false
		}
	}
	return true
}

// Add returns a new marking with delta applied place-wise (delta may carry
// negative values for consumption). It never mutates m.
func (m Marking) Add(delta Marking) Marking {
	out := make(Marking, len(m)+len(delta))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range delta {
		out[k] += v
	}
	for k, v := range out {
		if v == 0 {
			delete(out, k)
		}
	}
	return out
}

// Copy returns an independent copy of m.
func (m Marking) Copy() Marking {
	out := make(Marking, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// TotalTokens sums the token count across every place.
func (m Marking) TotalTokens() int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

// SortedPlaces returns the places holding a nonzero token count, sorted.
func (m Marking) SortedPlaces() []string {
	places := make([]string, 0, len(m))
	for k, v := range m {
		if v != 0 {
			places = append(places, k)
		}
	}
	sort.Strings(places)
	return places
}

// Key returns a canonical string form of the marking, suitable for use as a
// map key (cache keys, memoization tables). Two equal markings always
// produce the same key.
func (m Marking) Key() string {
	places := m.SortedPlaces()
	var b strings.Builder
	for i, p := range places {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, "%s=%d", p, m[p])
	}
	return b.String()
}

// Hash returns a 64-bit digest of the marking's canonical key, used to
// shard and index the replay caches without carrying full string keys.
func (m Marking) Hash() uint64 {
	return xxhash.Sum64String(m.Key())
}

// String renders the marking for diagnostics and log messages.
func (m Marking) String() string {
	places := m.SortedPlaces()
	if len(places) == 0 {
		return "{}"
	}
	parts := make([]string, len(places))
	for i, p := range places {
		parts[i] = fmt.Sprintf("%s:%d", p, m[p])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Package matcher finds the closest registered face for a probe encoding.
//
// Matching is nearest neighbor by Euclidean distance with an acceptance
// threshold. Small stores are scanned linearly; once the store passes a
// configurable size an HNSW graph narrows the candidates and the exact
// distances are recomputed so results stay deterministic.
package matcher

import (
	"math"
	"sync"
)

// Match is the result of a successful nearest-neighbor lookup.
type Match struct {
	Index    int     // position in the registered encoding sequence
	Distance float64 // Euclidean distance to the probe
}

// EuclideanDistance returns the L2 distance between two encodings.
// Vectors of unequal length are infinitely far apart.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Matcher compares probe encodings against a snapshot of registered faces.
type Matcher struct {
	threshold float64
	indexMin  int

	mu    sync.Mutex
	index *Index
}

// New creates a matcher that accepts matches at distance strictly below
// threshold.
// indexMin is the store size at which the HNSW index takes over from the
// linear scan; zero or negative disables the index entirely.
func New(threshold float64, indexMin int) *Matcher {
	return &Matcher{threshold: threshold, indexMin: indexMin}
}

// Threshold returns the configured acceptance distance.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Nearest returns the closest encoding regardless of threshold. Ties keep
// the earliest registered encoding. ok is false for an empty store.
func (m *Matcher) Nearest(probe []float32, encodings [][]float32) (Match, bool) {
	if len(encodings) == 0 {
		return Match{}, false
	}

	if m.indexMin > 0 && len(encodings) >= m.indexMin {
		if match, ok := m.indexed(encodings).Nearest(probe); ok {
			return match, true
		}
	}

	best := Match{Index: 0, Distance: EuclideanDistance(probe, encodings[0])}
	for i := 1; i < len(encodings); i++ {
		if d := EuclideanDistance(probe, encodings[i]); d < best.Distance {
			best = Match{Index: i, Distance: d}
		}
	}
	return best, true
}

// indexed returns the cached graph, rebuilding it when the store has
// grown since the last build.
func (m *Matcher) indexed(encodings [][]float32) *Index {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.index == nil || m.index.Count() != len(encodings) {
		m.index = BuildIndex(encodings)
	}
	return m.index
}

// Match returns the closest encoding within the acceptance threshold.
// ok is false when the store is empty or the nearest face is too far away.
func (m *Matcher) Match(probe []float32, encodings [][]float32) (Match, bool) {
	best, ok := m.Nearest(probe, encodings)
	if !ok || best.Distance >= m.threshold {
		return Match{}, false
	}
	return best, true
}

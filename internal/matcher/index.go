package matcher

import (
	"sync"

	"github.com/coder/hnsw"
)

// indexMaxNeighbors is the HNSW M parameter.
const indexMaxNeighbors = 16

// indexSearchK is how many candidates to pull from the graph before exact
// re-ranking. More than one so the graph's approximation cannot flip the
// winner between two close faces.
const indexSearchK = 16

// Index is an HNSW graph over the registered encodings, keyed by their
// position in the store sequence. Candidate distances from the graph are
// recomputed exactly so ties resolve to the earliest registration, same as
// the linear scan.
type Index struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[int]
	count int
}

// BuildIndex builds a fresh graph from the full encoding sequence.
func BuildIndex(encodings [][]float32) *Index {
	g := hnsw.NewGraph[int]()
	g.M = indexMaxNeighbors
	g.Ml = 1.0 / float64(indexMaxNeighbors)
	g.Distance = hnsw.EuclideanDistance

	for i, enc := range encodings {
		g.Add(hnsw.MakeNode(i, enc))
	}

	return &Index{graph: g, count: len(encodings)}
}

// Count returns the number of indexed encodings.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.count
}

// Add appends one encoding at the next sequence position.
func (ix *Index) Add(encoding []float32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.graph.Add(hnsw.MakeNode(ix.count, encoding))
	ix.count++
}

// Nearest returns the closest indexed encoding to the probe. Graph results
// are re-ranked by exact Euclidean distance; equal distances keep the lower
// sequence position.
func (ix *Index) Nearest(probe []float32) (Match, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.count == 0 {
		return Match{}, false
	}

	neighbors := ix.graph.Search(probe, indexSearchK)
	if len(neighbors) == 0 {
		return Match{}, false
	}

	best := Match{Index: -1}
	for _, n := range neighbors {
		d := EuclideanDistance(probe, n.Value)
		if best.Index == -1 || d < best.Distance || (d == best.Distance && n.Key < best.Index) {
			best = Match{Index: n.Key, Distance: d}
		}
	}
	return best, true
}

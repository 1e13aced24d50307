package match

import (
	"context"
	"fmt"
	"sync"

	"github.com/coder/hnsw"
)

// HNSW index parameters for face embeddings.
const (
	// hnswMaxNeighbors (M) is the maximum number of neighbors per node.
	// Higher values improve recall but increase memory and build time.
	hnswMaxNeighbors = 16
)

// HNSWEngine answers nearest-neighbor queries from an in-memory HNSW graph
// instead of a linear scan. The graph is rebuilt from the registry with
// Rebuild; callers must rebuild after enrollment changes.
type HNSWEngine struct {
	source EntrySource

	mu    sync.RWMutex
	graph *hnsw.Graph[string]
}

// NewHNSWEngine creates an engine backed by an HNSW graph. The index is empty
// until the first Rebuild.
func NewHNSWEngine(source EntrySource) *HNSWEngine {
	return &HNSWEngine{source: source}
}

// Rebuild replaces the graph with a fresh one built from the current registry.
func (e *HNSWEngine) Rebuild(ctx context.Context) error {
	entries, err := e.source.All()
	if err != nil {
		return fmt.Errorf("loading registry entries: %w", err)
	}

	g := hnsw.NewGraph[string]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance

	for name, embedding := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(name, embedding))
	}

	e.mu.Lock()
	e.graph = g
	e.mu.Unlock()
	return nil
}

// Count returns the number of indexed identities.
func (e *HNSWEngine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.graph == nil {
		return 0
	}
	return e.graph.Len()
}

// FindMatch searches the graph for the nearest identity and accepts it only
// if its exact cosine distance is strictly below threshold. Same contract as
// LinearEngine.FindMatch.
func (e *HNSWEngine) FindMatch(ctx context.Context, query []float32, threshold float64) (*Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.graph == nil || e.graph.Len() == 0 {
		return nil, nil
	}

	neighbors := e.graph.Search(query, 1)
	if len(neighbors) == 0 {
		return nil, nil
	}

	// Recompute the exact distance from the node's own vector; the graph
	// distance is approximate.
	n := neighbors[0]
	d := CosineDistance(query, n.Value)
	if d >= threshold {
		return nil, nil
	}
	return &Match{Name: n.Key, Distance: d}, nil
}

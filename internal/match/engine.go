// Package match finds the closest enrolled identity for a query embedding.
package match

import (
	"context"
	"fmt"
	"sort"
)

// Match is an accepted nearest-neighbor result.
type Match struct {
	Name     string
	Distance float64
}

// EntrySource provides the current set of enrolled embeddings.
type EntrySource interface {
	All() (map[string][]float32, error)
}

// Engine finds the closest enrolled identity for a query embedding.
// A nil *Match with a nil error means no identity was within the threshold.
type Engine interface {
	FindMatch(ctx context.Context, query []float32, threshold float64) (*Match, error)
}

// LinearEngine scans every enrolled embedding per query. Fine for registries
// of tens to low hundreds of identities; swap in HNSWEngine beyond that.
type LinearEngine struct {
	source EntrySource
}

// NewLinearEngine creates an engine that scans the source on every query.
func NewLinearEngine(source EntrySource) *LinearEngine {
	return &LinearEngine{source: source}
}

// FindMatch returns the entry with minimum cosine distance to query, accepted
// only if the distance is strictly below threshold. Entries are scanned in
// name order so exact-distance ties resolve the same way on every run. An
// empty registry returns no match without scanning.
func (e *LinearEngine) FindMatch(ctx context.Context, query []float32, threshold float64) (*Match, error) {
	entries, err := e.source.All()
	if err != nil {
		return nil, fmt.Errorf("loading registry entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var best *Match
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d := CosineDistance(query, entries[name])
		if best == nil || d < best.Distance {
			best = &Match{Name: name, Distance: d}
		}
	}

	if best == nil || best.Distance >= threshold {
		return nil, nil
	}
	return best, nil
}

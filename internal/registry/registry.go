// Package registry is the durable store of enrolled identity embeddings.
// The whole registry is persisted as a single gob snapshot; every read
// reloads from disk so external changes to the file are picked up.
package registry

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	// ErrInvalidName is returned when an identity name is empty or whitespace.
	ErrInvalidName = errors.New("identity name must not be empty")

	// ErrNilEmbedding is returned when an embedding is absent.
	ErrNilEmbedding = errors.New("embedding must not be empty")

	// ErrNotFound is returned by Lookup for unknown identities.
	ErrNotFound = errors.New("identity not registered")
)

const snapshotVersion = 1

// snapshot is the on-disk envelope. Gob round-trips float32 exactly.
type snapshot struct {
	Version int
	SavedAt time.Time
	Entries map[string][]float32
}

// Registry maps identity names to their embeddings, backed by a single
// snapshot file. A corrupt or unreadable snapshot degrades to an empty
// registry with a warning instead of failing, so the system stays usable.
type Registry struct {
	path string
	mu   sync.Mutex
}

// New creates a registry backed by the snapshot file at path. The parent
// directory is created if missing; the file itself appears on first Upsert.
func New(path string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating registry directory: %w", err)
	}
	return &Registry{path: path}, nil
}

// load reads the snapshot from disk. Missing file means an empty registry;
// a decode failure is reported as a warning and also yields an empty
// registry (losing enrollments is less harmful than an unusable system).
func (r *Registry) load() map[string][]float32 {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return map[string][]float32{}
	}
	if err != nil {
		fmt.Printf("Warning: failed to read registry %s: %v\n", r.path, err)
		return map[string][]float32{}
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		fmt.Printf("Warning: registry %s is corrupt, starting empty: %v\n", r.path, err)
		return map[string][]float32{}
	}
	if snap.Entries == nil {
		return map[string][]float32{}
	}
	return snap.Entries
}

// save writes the full snapshot back to disk.
func (r *Registry) save(entries map[string][]float32) error {
	snap := snapshot{
		Version: snapshotVersion,
		SavedAt: time.Now(),
		Entries: entries,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("encoding registry snapshot: %w", err)
	}
	if err := os.WriteFile(r.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing registry snapshot: %w", err)
	}
	return nil
}

// Upsert inserts or overwrites the embedding for name and persists the full
// snapshot before returning. The name is trimmed and must be non-empty.
func (r *Registry) Upsert(name string, embedding []float32) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	if len(embedding) == 0 {
		return ErrNilEmbedding
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.load()
	entries[name] = append([]float32(nil), embedding...)
	return r.save(entries)
}

// Lookup returns the embedding for name, or ErrNotFound.
func (r *Registry) Lookup(name string) ([]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	embedding, ok := r.load()[strings.TrimSpace(name)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]float32(nil), embedding...), nil
}

// All returns a defensive copy of every entry; mutating the result does not
// affect the registry.
func (r *Registry) All() (map[string][]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.load()
	out := make(map[string][]float32, len(entries))
	for name, embedding := range entries {
		out[name] = append([]float32(nil), embedding...)
	}
	return out, nil
}

// Names returns the registered identity names.
func (r *Registry) Names() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.load()
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	return names, nil
}

// Remove deletes the entry for name and persists. Reports whether an entry
// existed.
func (r *Registry) Remove(name string) (bool, error) {
	name = strings.TrimSpace(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.load()
	if _, ok := entries[name]; !ok {
		return false, nil
	}
	delete(entries, name)
	if err := r.save(entries); err != nil {
		return false, err
	}
	return true, nil
}

// Count returns the number of registered identities.
func (r *Registry) Count() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.load()), nil
}

// Package project persists listing projects. The canonical backend is
// Redis; the in-memory store covers local runs and Redis outages with
// the same semantics.
package project

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"listing-forge/internal/listing"
)

var ErrNotFound = errors.New("project not found")

// Store is the persistence surface. Save is last-write-wins; List
// orders by recency, newest first.
type Store interface {
	Get(ctx context.Context, id string) (*listing.Project, error)
	List(ctx context.Context) ([]listing.Project, error)
	Save(ctx context.Context, p *listing.Project) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps encoded snapshots so callers never share mutable
// state with the store.
type MemoryStore struct {
	mu       sync.Mutex
	projects map[string][]byte
	updated  map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[string][]byte),
		updated:  make(map[string]time.Time),
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*listing.Project, error) {
	s.mu.Lock()
	data, ok := s.projects[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeProject(data)
}

func (s *MemoryStore) List(_ context.Context) ([]listing.Project, error) {
	s.mu.Lock()
	type entry struct {
		data    []byte
		updated time.Time
	}
	entries := make([]entry, 0, len(s.projects))
	for id, data := range s.projects {
		entries = append(entries, entry{data: data, updated: s.updated[id]})
	}
	s.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].updated.After(entries[j].updated) })

	out := make([]listing.Project, 0, len(entries))
	for _, e := range entries {
		p, err := decodeProject(e.data)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, p *listing.Project) error {
	if p.ID == "" {
		return errors.New("project id is empty")
	}
	p.UpdatedAt = time.Now().UTC()
	data, err := encodeProject(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.projects[p.ID] = data
	s.updated[p.ID] = p.UpdatedAt
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return ErrNotFound
	}
	delete(s.projects, id)
	delete(s.updated, id)
	return nil
}

package store

import (
	"sync"
	"time"

	"github.com/backendstudioapp/dashboardtypeform/internal/models"
)

// MemoryStore holds the latest record snapshot pulled from the table
// store. Reloads carry a generation token: a reload that finishes after a
// newer one began is discarded, so overlapping refreshes cannot replace
// fresh data with stale responses.
type MemoryStore struct {
	mu       sync.RWMutex
	leads    []models.Lead
	students []models.Student
	loadedAt time.Time
	gen      uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// BeginReload claims a new reload generation.
func (s *MemoryStore) BeginReload() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// CompleteReload installs the fetched snapshot. Returns false when a newer
// reload has begun in the meantime; the caller's data is dropped.
func (s *MemoryStore) CompleteReload(gen uint64, leads []models.Lead, students []models.Student, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.leads = leads
	s.students = students
	s.loadedAt = at
	return true
}

// Leads returns a copy of the current snapshot; callers never share the
// backing slice with the store.
func (s *MemoryStore) Leads() []models.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Lead, len(s.leads))
	copy(out, s.leads)
	return out
}

func (s *MemoryStore) Students() []models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Student, len(s.students))
	copy(out, s.students)
	return out
}

func (s *MemoryStore) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

func (s *MemoryStore) LeadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads)
}

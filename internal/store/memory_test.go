package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backendstudioapp/dashboardtypeform/internal/models"
)

func TestReloadRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	assert.Zero(t, s.LeadCount())

	gen := s.BeginReload()
	at := time.Now()
	ok := s.CompleteReload(gen, []models.Lead{{Phone: "111"}, {Phone: "222"}}, []models.Student{{Name: "Ana"}}, at)
	require.True(t, ok)

	assert.Equal(t, 2, s.LeadCount())
	assert.Len(t, s.Students(), 1)
	assert.Equal(t, at, s.LoadedAt())
}

func TestStaleReloadDiscarded(t *testing.T) {
	s := NewMemoryStore()

	old := s.BeginReload()
	newer := s.BeginReload()

	require.True(t, s.CompleteReload(newer, []models.Lead{{Phone: "fresh"}}, nil, time.Now()))

	// the older reload finishes late and must not clobber the fresh data
	assert.False(t, s.CompleteReload(old, []models.Lead{{Phone: "stale"}}, nil, time.Now()))
	leads := s.Leads()
	require.Len(t, leads, 1)
	assert.Equal(t, "fresh", leads[0].Phone)
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := NewMemoryStore()
	gen := s.BeginReload()
	require.True(t, s.CompleteReload(gen, []models.Lead{{Phone: "111"}}, nil, time.Now()))

	got := s.Leads()
	got[0].Phone = "mutated"

	assert.Equal(t, "111", s.Leads()[0].Phone)
}

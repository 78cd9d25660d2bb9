package index

import (
	"sync"
	"time"

	"github.com/asticode/go-pulseprint/waveform"
	"github.com/google/uuid"
)

// Recording represents an uploaded recording
type Recording struct {
	Audio     []byte
	CreatedAt time.Time
	ID        string
	Name      string
	Waveform  waveform.Waveform
}

// store keeps the latest recordings in memory. The oldest recording is evicted first.
type store struct {
	ids []string
	m   *sync.Mutex // Locks ids and rs
	max int
	rs  map[string]*Recording
}

func newStore(maxRecordings int) *store {
	return &store{
		m:   &sync.Mutex{},
		max: maxRecordings,
		rs:  make(map[string]*Recording),
	}
}

func (s *store) add(r *Recording) {
	// Update recording
	r.CreatedAt = time.Now().UTC()
	r.ID = uuid.NewString()

	// Lock
	s.m.Lock()
	defer s.m.Unlock()

	// Evict
	for s.max > 0 && len(s.ids) >= s.max {
		delete(s.rs, s.ids[0])
		s.ids = s.ids[1:]
	}

	// Add
	s.ids = append(s.ids, r.ID)
	s.rs[r.ID] = r
}

func (s *store) get(id string) (r *Recording, ok bool) {
	s.m.Lock()
	defer s.m.Unlock()
	r, ok = s.rs[id]
	return
}

func (s *store) len() int {
	s.m.Lock()
	defer s.m.Unlock()
	return len(s.rs)
}

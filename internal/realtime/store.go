package realtime

import (
	"cmp"
	"slices"
	"sync"
)

// Closure is a station with no service under an active alert.
type Closure struct {
	StationCode string `json:"station"`
	Reason      string `json:"reason"`
	AlertID     string `json:"alert"`
}

// Store holds the current station closures in a thread-safe manner.
type Store struct {
	mu       sync.RWMutex
	closures map[string]Closure
}

// NewStore creates an empty closure store.
func NewStore() *Store {
	return &Store{closures: make(map[string]Closure)}
}

// SetClosures replaces all closures.
func (s *Store) SetClosures(closures []Closure) {
	byCode := make(map[string]Closure, len(closures))
	for _, c := range closures {
		if _, ok := byCode[c.StationCode]; !ok {
			byCode[c.StationCode] = c
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closures = byCode
}

// ClosureReason reports whether a station is closed and, if so, why.
func (s *Store) ClosureReason(stationCode string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.closures[stationCode]
	return c.Reason, ok
}

// Closures returns every current closure ordered by station code.
func (s *Store) Closures() []Closure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Closure, 0, len(s.closures))
	for _, c := range s.closures {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Closure) int { return cmp.Compare(a.StationCode, b.StationCode) })
	return out
}

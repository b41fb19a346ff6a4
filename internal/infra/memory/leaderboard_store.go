package memory

import (
	"context"
	"sync"

	"mathquiz/internal/app"
	"mathquiz/internal/domain"
)

// LeaderboardStore keeps admitted entries in process memory; they are lost on restart.
type LeaderboardStore struct {
	mu      sync.RWMutex
	entries []domain.LeaderboardEntry
	nextSeq int64
}

func NewLeaderboardStore() *LeaderboardStore {
	return &LeaderboardStore{}
}

func (s *LeaderboardStore) Entries(_ context.Context) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.LeaderboardEntry(nil), s.entries...), nil
}

func (s *LeaderboardStore) Insert(_ context.Context, entry domain.LeaderboardEntry, capacity int) ([]domain.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	entry.Seq = s.nextSeq
	s.entries = append(s.entries, entry)
	app.SortEntries(s.entries)
	if capacity > 0 && len(s.entries) > capacity {
		s.entries = s.entries[:capacity]
	}
	return append([]domain.LeaderboardEntry(nil), s.entries...), nil
}

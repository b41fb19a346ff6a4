package app

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"mathquiz/internal/domain"
)

// MinNameLength is the shortest trimmed name the admission policy accepts.
const MinNameLength = 3

// LeaderboardStore persists admitted entries. Entries must come back ordered by
// score descending, ties in submission order, and must reflect every completed
// Insert.
type LeaderboardStore interface {
	Entries(ctx context.Context) ([]domain.LeaderboardEntry, error)
	// Insert adds entry, assigns its Seq, drops the lowest entries beyond capacity
	// and returns the board as stored afterwards.
	Insert(ctx context.Context, entry domain.LeaderboardEntry, capacity int) ([]domain.LeaderboardEntry, error)
}

// SharedReader is implemented by stores that can serve concurrent display reads
// from one round trip. Such reads may predate a concurrent Insert, so they are
// only used where nothing is decided or written.
type SharedReader interface {
	SharedEntries(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// Admit applies the admission policy to a finished session.
func Admit(entries []domain.LeaderboardEntry, capacity int, name string, score int) domain.Decision {
	if score <= 0 {
		return domain.Rejected
	}
	if utf8.RuneCountInString(strings.TrimSpace(name)) < MinNameLength {
		return domain.Rejected
	}
	if len(entries) >= capacity {
		return domain.Rejected
	}
	if len(entries) > 0 && lowest(entries).Score >= score {
		return domain.Rejected
	}
	return domain.PendingNameEntry
}

func lowest(entries []domain.LeaderboardEntry) domain.LeaderboardEntry {
	low := entries[0]
	for _, e := range entries[1:] {
		if e.Score <= low.Score {
			low = e
		}
	}
	return low
}

// SortEntries orders by score descending; equal scores keep the earlier submission first.
func SortEntries(entries []domain.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Seq < entries[j].Seq
	})
}

// Leaderboard applies the admission policy on top of a store shared by every session.
type Leaderboard struct {
	store    LeaderboardStore
	capacity int
	now      func() time.Time
}

func NewLeaderboard(store LeaderboardStore, capacity int) *Leaderboard {
	return NewLeaderboardWithClock(store, capacity, time.Now)
}

// NewLeaderboardWithClock is test-only for deterministic timestamps.
func NewLeaderboardWithClock(store LeaderboardStore, capacity int, now func() time.Time) *Leaderboard {
	return &Leaderboard{store: store, capacity: capacity, now: now}
}

func (l *Leaderboard) Capacity() int {
	return l.capacity
}

// Admit decides whether score may be entered. Nothing is stored yet.
func (l *Leaderboard) Admit(ctx context.Context, name string, score int) (domain.Decision, error) {
	entries, err := l.store.Entries(ctx)
	if err != nil {
		return domain.Rejected, err
	}
	return Admit(entries, l.capacity, name, score), nil
}

// Commit stores the result under name and returns the board including it.
func (l *Leaderboard) Commit(ctx context.Context, name string, score int) (domain.Leaderboard, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultPlayerName
	}
	entry := domain.LeaderboardEntry{
		Name:        name,
		Score:       score,
		SubmittedAt: l.now(),
	}
	entries, err := l.store.Insert(ctx, entry, l.capacity)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return l.board(entries), nil
}

// Snapshot returns the current board for display.
func (l *Leaderboard) Snapshot(ctx context.Context) (domain.Leaderboard, error) {
	read := l.store.Entries
	if shared, ok := l.store.(SharedReader); ok {
		read = shared.SharedEntries
	}
	entries, err := read(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return l.board(entries), nil
}

func (l *Leaderboard) board(entries []domain.LeaderboardEntry) domain.Leaderboard {
	SortEntries(entries)
	if len(entries) > l.capacity {
		entries = entries[:l.capacity]
	}
	return domain.Leaderboard{
		Entries:   entries,
		Capacity:  l.capacity,
		UpdatedAt: l.now(),
	}
}

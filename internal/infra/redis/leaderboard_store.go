package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"mathquiz/internal/domain"
)

// LeaderboardStore shares the leaderboard between instances.
// Layout:
//
//	ZADD {prefix}:entries {score} {member}
//	HSET {prefix}:meta    {member} {"name":..,"submittedAt":..}
//	INCR {prefix}:seq
//
// member is MaxInt64-seq zero padded, so among equal scores ZREVRANGE returns the
// earlier submission first and ZRANGE trims the later one first.
type LeaderboardStore struct {
	client *redis.Client
	prefix string
	sf     singleflight.Group
}

type entryMeta struct {
	Name        string    `json:"name"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func NewLeaderboardStore(client *redis.Client, prefix string) *LeaderboardStore {
	if prefix == "" {
		prefix = "mathquiz:leaderboard"
	}
	return &LeaderboardStore{client: client, prefix: prefix}
}

// Entries reads the board directly. Admission and commit rely on it seeing every
// completed Insert.
func (s *LeaderboardStore) Entries(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	return s.load(ctx)
}

// SharedEntries coalesces concurrent display reads into one round trip. A caller
// may receive a load that started before its own call.
func (s *LeaderboardStore) SharedEntries(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	result, err, _ := s.sf.Do("entries", func() (interface{}, error) {
		return s.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	// Callers coalesced onto one load must not share the slice.
	return append([]domain.LeaderboardEntry(nil), result.([]domain.LeaderboardEntry)...), nil
}

func (s *LeaderboardStore) load(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	scored, err := s.client.ZRevRangeWithScores(ctx, s.entriesKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	if len(scored) == 0 {
		return []domain.LeaderboardEntry{}, nil
	}

	members := make([]string, len(scored))
	for i, z := range scored {
		members[i], _ = z.Member.(string)
	}
	metas, err := s.client.HMGet(ctx, s.metaKey(), members...).Result()
	if err != nil {
		return nil, fmt.Errorf("load leaderboard names: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(scored))
	for i, z := range scored {
		seq, err := seqFromMember(members[i])
		if err != nil {
			return nil, err
		}
		entry := domain.LeaderboardEntry{
			Name:  domain.DefaultPlayerName,
			Score: int(z.Score),
			Seq:   seq,
		}
		if raw, ok := metas[i].(string); ok {
			var meta entryMeta
			if err := json.Unmarshal([]byte(raw), &meta); err == nil {
				entry.Name = meta.Name
				entry.SubmittedAt = meta.SubmittedAt
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *LeaderboardStore) Insert(ctx context.Context, entry domain.LeaderboardEntry, capacity int) ([]domain.LeaderboardEntry, error) {
	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("next leaderboard seq: %w", err)
	}
	data, err := json.Marshal(entryMeta{Name: entry.Name, SubmittedAt: entry.SubmittedAt})
	if err != nil {
		return nil, err
	}
	member := memberFor(seq)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, s.entriesKey(), redis.Z{Score: float64(entry.Score), Member: member})
		pipe.HSet(ctx, s.metaKey(), member, data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert leaderboard entry: %w", err)
	}
	if capacity > 0 {
		if err := s.trim(ctx, capacity); err != nil {
			return nil, err
		}
	}
	return s.load(ctx)
}

// trim drops everything ranked below capacity.
func (s *LeaderboardStore) trim(ctx context.Context, capacity int) error {
	stale, err := s.client.ZRange(ctx, s.entriesKey(), 0, -int64(capacity)-1).Result()
	if err != nil {
		return fmt.Errorf("trim leaderboard: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}
	members := make([]interface{}, len(stale))
	for i, m := range stale {
		members[i] = m
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, s.entriesKey(), members...)
		pipe.HDel(ctx, s.metaKey(), stale...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("trim leaderboard: %w", err)
	}
	return nil
}

func (s *LeaderboardStore) entriesKey() string { return s.prefix + ":entries" }
func (s *LeaderboardStore) metaKey() string    { return s.prefix + ":meta" }
func (s *LeaderboardStore) seqKey() string     { return s.prefix + ":seq" }

func memberFor(seq int64) string {
	return fmt.Sprintf("%019d", math.MaxInt64-seq)
}

func seqFromMember(member string) (int64, error) {
	inverted, err := strconv.ParseInt(member, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad leaderboard member %q: %w", member, err)
	}
	return math.MaxInt64 - inverted, nil
}

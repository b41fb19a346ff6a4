package cli

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"mathquiz/internal/app"
	"mathquiz/internal/config"
	"mathquiz/internal/infra/memory"
	"mathquiz/internal/infra/postgres"
	redisstore "mathquiz/internal/infra/redis"
)

const leaderboardPrefix = "mathquiz:leaderboard"

// backends holds the stores picked from config: Redis and Postgres when
// configured, process memory otherwise.
type backends struct {
	sessions app.SessionRepository
	board    *app.Leaderboard
	results  *postgres.ResultStore

	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// options returns the controller options implied by the backends.
func (b *backends) options() []app.Option {
	opts := []app.Option{app.WithLogger(log.Logger)}
	if b.results != nil {
		opts = append(opts, app.WithRecorder(b.results))
	}
	return opts
}

func openBackends(ctx context.Context, cfg config.Config, capacity int) (*backends, error) {
	b := &backends{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = redisClient.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = redisClient.Close() })
	}

	if redisClient != nil {
		ttl := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
		b.sessions = redisstore.NewSessionStore(redisClient, ttl)
		b.board = app.NewLeaderboard(redisstore.NewLeaderboardStore(redisClient, leaderboardPrefix), capacity)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis sessions and leaderboard")
	} else {
		b.sessions = memory.NewSessionStore()
		b.board = app.NewLeaderboard(memory.NewLeaderboardStore(), capacity)
		log.Info().Msg("using in-memory sessions and leaderboard")
	}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		b.results = postgres.NewResultStore(pool)
	}
	return b, nil
}

// loadConfig reads path; a missing file yields an empty config so defaults apply.
func loadConfig(path string, allowMissing bool) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil && allowMissing && errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", path).Msg("config not found, using defaults")
		return config.Config{}, nil
	}
	return cfg, err
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"mathquiz/internal/domain"
)

// ResultStore archives finished sessions in the quiz_results table.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) Record(ctx context.Context, result domain.SessionResult) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_results (session_id, player_name, score, questions, admitted, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		result.SessionID, result.PlayerName, result.Score, result.Questions, result.Admitted, result.FinishedAt)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

// Recent returns the latest results, newest first.
func (s *ResultStore) Recent(ctx context.Context, limit int) ([]domain.SessionResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT session_id, player_name, score, questions, admitted, finished_at
		 FROM quiz_results ORDER BY finished_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []domain.SessionResult
	for rows.Next() {
		var r domain.SessionResult
		if err := rows.Scan(&r.SessionID, &r.PlayerName, &r.Score, &r.Questions, &r.Admitted, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

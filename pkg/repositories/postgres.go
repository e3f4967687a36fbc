package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lleps/peinbol/pkg/log"
	"github.com/lleps/peinbol/pkg/repositories/models"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to the database and applies pending migrations.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	var username string
	var database string
	err = pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to query database: %w", err)
	}
	log.Info("Connected to %s as %s", database, username)

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	if err := runMigrations(ctx, db, "postgres", "migrations/postgres"); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresRepository{
		pool: pool,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) RecordKill(ctx context.Context, kill *models.Kill) error {
	q := `
	INSERT INTO kills (match_id, killer, victim, killed_at)
	VALUES ($1, $2, $3, $4);
	`
	_, err := r.pool.Exec(ctx, q, kill.MatchID, kill.Killer, kill.Victim, kill.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert kill: %w", err)
	}

	return nil
}

func (r *PostgresRepository) TopKillers(ctx context.Context, limit int) ([]*models.KillerScore, error) {
	q := `
	SELECT killer, COUNT(*) AS kills FROM kills
	GROUP BY killer
	ORDER BY kills DESC, killer ASC
	LIMIT $1;
	`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query kills: %w", err)
	}
	defer rows.Close()

	scores := make([]*models.KillerScore, 0, limit)
	for rows.Next() {
		score := &models.KillerScore{}
		if err := rows.Scan(&score.Name, &score.Kills); err != nil {
			return nil, fmt.Errorf("failed to scan kill score: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read kill scores: %w", err)
	}

	return scores, nil
}

func (r *PostgresRepository) PlayerStats(ctx context.Context, name string) (*models.PlayerStats, error) {
	q := `
	SELECT
		COUNT(*) FILTER (WHERE killer = $1),
		COUNT(*) FILTER (WHERE victim = $1)
	FROM kills
	WHERE killer = $1 OR victim = $1;
	`
	stats := &models.PlayerStats{Name: name}
	if err := r.pool.QueryRow(ctx, q, name).Scan(&stats.Kills, &stats.Deaths); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan player stats: %w", err)
	}
	if stats.Kills == 0 && stats.Deaths == 0 {
		return nil, &ErrNotFound{}
	}

	return stats, nil
}

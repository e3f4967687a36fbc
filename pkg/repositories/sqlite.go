package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lleps/peinbol/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database at path and applies pending migrations.
// The path ":memory:" opens a private in-memory database.
func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serializes writers, and an in-memory database only lives as long as its connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, db, "sqlite3", "migrations/sqlite"); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) RecordKill(ctx context.Context, kill *models.Kill) error {
	q := `
	INSERT INTO kills (match_id, killer, victim, killed_at)
	VALUES (?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q, kill.MatchID.String(), kill.Killer, kill.Victim, kill.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert kill: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) TopKillers(ctx context.Context, limit int) ([]*models.KillerScore, error) {
	q := `
	SELECT killer, COUNT(*) AS kills FROM kills
	GROUP BY killer
	ORDER BY kills DESC, killer ASC
	LIMIT ?;
	`
	rows, err := r.db.QueryContext(ctx, q, limit)
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

func (r *SQLiteRepository) PlayerStats(ctx context.Context, name string) (*models.PlayerStats, error) {
	q := `
	SELECT
		COALESCE(SUM(CASE WHEN killer = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN victim = ? THEN 1 ELSE 0 END), 0)
	FROM kills
	WHERE killer = ? OR victim = ?;
	`
	stats := &models.PlayerStats{Name: name}
	if err := r.db.QueryRowContext(ctx, q, name, name, name, name).Scan(&stats.Kills, &stats.Deaths); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan player stats: %w", err)
	}
	if stats.Kills == 0 && stats.Deaths == 0 {
		return nil, &ErrNotFound{}
	}

	return stats, nil
}

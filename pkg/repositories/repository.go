package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/lleps/peinbol/pkg/repositories/models"
)

type Repository interface {
	Close(ctx context.Context) error
	RecordKill(ctx context.Context, kill *models.Kill) error
	TopKillers(ctx context.Context, limit int) ([]*models.KillerScore, error)
	PlayerStats(ctx context.Context, name string) (*models.PlayerStats, error)
}

// NewRepository opens the repository for a database URL.
// Supported schemes are sqlite:// and postgres:// (or postgresql://).
func NewRepository(ctx context.Context, databaseURL string) (Repository, error) {
	scheme, rest, ok := strings.Cut(databaseURL, "://")
	if !ok {
		return nil, fmt.Errorf("database url %q has no scheme", databaseURL)
	}

	switch scheme {
	case "sqlite", "sqlite3":
		path := rest
		if path == "" {
			return nil, fmt.Errorf("missing sqlite path in %q", databaseURL)
		}
		repo, err := NewSQLiteRepository(ctx, path)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "postgres", "postgresql":
		repo, err := NewPostgresRepository(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"air_purifier/internal/models"
)

// Authorization stores controller accounts.
type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// EventRepo is the append-only transition journal.
type EventRepo interface {
	Append(ctx context.Context, e models.PurifierEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.PurifierEvent, error)
}

// Repository aggregates the SQLite-backed stores. Characteristic values
// themselves are never stored.
type Repository struct {
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}

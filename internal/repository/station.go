package repository

import (
	"context"

	"station-player/internal/domain"
)

// StationFilter narrows station queries.
type StationFilter struct {
	Txt         string
	Genre       string
	CreatedByID string
}

// StationRepository defines persistence operations for Station entities.
// Mutating calls scoped to an ownerID match zero documents when the acting
// identity is not the station's creator; callers translate the reported
// zero-match into a not-found condition instead of running a separate
// authorization check.
type StationRepository interface {
	Query(ctx context.Context, filter StationFilter) ([]domain.Station, error)
	GetByID(ctx context.Context, id string) (*domain.Station, error)
	Create(ctx context.Context, station *domain.Station) (string, error)
	Update(ctx context.Context, station *domain.Station, ownerID string) (bool, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)

	// AddLiker registers a liked-by back-reference. Adding a reference that
	// is already present is a no-op, never a duplicate.
	AddLiker(ctx context.Context, stationID string, liker domain.UserRef) error
	RemoveLiker(ctx context.Context, stationID, userID string) error

	AddSong(ctx context.Context, stationID, ownerID string, song domain.Song) (bool, error)
	RemoveSong(ctx context.Context, stationID, songID, ownerID string) (bool, error)
}

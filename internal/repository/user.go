package repository

import (
	"context"

	"station-player/internal/domain"
)

// UserFilter narrows user queries.
type UserFilter struct {
	Txt string
}

// LikedStationSort selects the ordering of a liked-stations listing.
type LikedStationSort string

const (
	// SortByLikedAt orders by like timestamp, newest first. Default.
	SortByLikedAt LikedStationSort = "addedAt"
	// SortByName orders by station display name.
	SortByName LikedStationSort = "name"
	// SortByCreator orders by creator display name.
	SortByCreator LikedStationSort = "creator"
)

// UserRepository defines persistence operations for User entities, including
// the embedded liked-song and liked-station list mutations. The list
// mutations are each a single atomic document update; no combination of them
// is transactional.
type UserRepository interface {
	Query(ctx context.Context, filter UserFilter) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (string, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error

	PushLikedSong(ctx context.Context, userID string, song domain.Song) error
	PullLikedSong(ctx context.Context, userID, songID string) error

	// PushLikedStation appends a snapshot to the user's liked-stations list.
	PushLikedStation(ctx context.Context, userID string, snap domain.LikedStation) error
	// MergeLikedStation updates the display fields of the embedded snapshot
	// matching snap.ID in place, leaving the like timestamp untouched. It
	// reports whether any embedded entry matched; ErrNotFound means the user
	// itself does not exist.
	MergeLikedStation(ctx context.Context, userID string, snap domain.LikedStation) (bool, error)
	// PullLikedStation removes the snapshot matching stationID from one
	// user's list.
	PullLikedStation(ctx context.Context, userID, stationID string) error
	// PullLikedStationAll removes the snapshot matching stationID from every
	// user's list and returns how many documents were modified.
	PullLikedStationAll(ctx context.Context, stationID string) (int64, error)

	// LikedStations reads the user's liked-stations list joined against the
	// canonical station collection: elements whose canonical station still
	// exists carry its freshest display fields, the rest fall back to the
	// embedded snapshot.
	LikedStations(ctx context.Context, userID string, sort LikedStationSort) ([]domain.LikedStation, error)
}

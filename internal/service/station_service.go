package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"station-player/internal/domain"
	"station-player/internal/identity"
	"station-player/internal/repository"
)

// StationService describes station lifecycle operations. Ownership is
// enforced by the repository filters: a mutation issued by anyone but the
// creator matches zero documents and surfaces domain.ErrNotFound without
// touching canonical state.
type StationService interface {
	Query(ctx context.Context, filter repository.StationFilter) ([]domain.Station, error)
	GetByID(ctx context.Context, id string) (*domain.Station, error)
	Add(ctx context.Context, station domain.Station) (*domain.Station, error)
	Update(ctx context.Context, station domain.Station) (*domain.Station, error)
	Remove(ctx context.Context, id string) error
	AddSong(ctx context.Context, stationID string, song domain.Song) (*domain.Station, error)
	RemoveSong(ctx context.Context, stationID, songID string) (*domain.Station, error)
}

// StationServiceConfig tunes sync behavior.
type StationServiceConfig struct {
	// PurgeLikesOnRemove pulls a deleted station's snapshot from every
	// user's liked-stations list. Off by default: dangling snapshots are
	// tolerated staleness, resolved at read time.
	PurgeLikesOnRemove bool
}

type stationService struct {
	stations repository.StationRepository
	users    repository.UserRepository
	notifier Notifier
	cfg      StationServiceConfig
}

func NewStationService(stations repository.StationRepository, users repository.UserRepository, notifier Notifier, cfg StationServiceConfig) StationService {
	if notifier == nil {
		notifier = NopNotifier()
	}
	return &stationService{
		stations: stations,
		users:    users,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (s *stationService) Query(ctx context.Context, filter repository.StationFilter) ([]domain.Station, error) {
	return s.stations.Query(ctx, filter)
}

// GetByID resolves the synthetic "liked-songs" token to a virtual station
// materialized from the current identity's liked songs; any other id is a
// canonical lookup accepting both store-generated and externally-sourced
// identifier shapes.
func (s *stationService) GetByID(ctx context.Context, id string) (*domain.Station, error) {
	if id == domain.VirtualLikedSongsID {
		return s.likedSongsStation(ctx)
	}
	return s.stations.GetByID(ctx, id)
}

func (s *stationService) likedSongsStation(ctx context.Context) (*domain.Station, error) {
	ident, ok := identity.From(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, ident.ID)
	if err != nil {
		return nil, err
	}

	songs := make([]domain.Song, len(user.LikedSongs))
	copy(songs, user.LikedSongs)
	sort.SliceStable(songs, func(i, j int) bool {
		return songs[i].AddedAt.Before(songs[j].AddedAt)
	})

	return &domain.Station{
		ID:          domain.VirtualLikedSongsID,
		Name:        "Liked Songs",
		Description: "Your liked songs",
		CreatedBy: domain.CreatorRef{
			ID:     ident.ID,
			Name:   ident.Name,
			ImgURL: ident.ImgURL,
		},
		Songs:   songs,
		LikedBy: []domain.UserRef{},
	}, nil
}

func (s *stationService) Add(ctx context.Context, station domain.Station) (*domain.Station, error) {
	ident, ok := identity.From(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if strings.TrimSpace(station.Name) == "" {
		return nil, fmt.Errorf("%w: station name is required", domain.ErrInvalidArgument)
	}

	// Creator reference is captured once here and never re-synced.
	station.CreatedBy = domain.CreatorRef{
		ID:     ident.ID,
		Name:   ident.Name,
		ImgURL: ident.ImgURL,
	}
	if _, err := s.stations.Create(ctx, &station); err != nil {
		return nil, err
	}
	return &station, nil
}

func (s *stationService) Update(ctx context.Context, station domain.Station) (*domain.Station, error) {
	ident, ok := identity.From(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if station.ID == domain.VirtualLikedSongsID {
		return nil, fmt.Errorf("%w: the liked-songs station cannot be modified", domain.ErrInvalidArgument)
	}

	matched, err := s.stations.Update(ctx, &station, ident.ID)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, domain.ErrNotFound
	}

	updated, err := s.stations.GetByID(ctx, station.ID)
	if err != nil {
		return nil, err
	}
	s.notifier.Emit(EventStationUpdated, updated.ID, updated)
	return updated, nil
}

// Remove deletes a canonical station. Snapshots embedded in other users'
// liked lists are left dangling unless purging is configured; they fall back
// to the cached copy at read time either way.
func (s *stationService) Remove(ctx context.Context, id string) error {
	ident, ok := identity.From(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if id == domain.VirtualLikedSongsID {
		return fmt.Errorf("%w: the liked-songs station cannot be removed", domain.ErrInvalidArgument)
	}

	matched, err := s.stations.Delete(ctx, id, ident.ID)
	if err != nil {
		return err
	}
	if !matched {
		return domain.ErrNotFound
	}

	if s.cfg.PurgeLikesOnRemove {
		if _, err := s.users.PullLikedStationAll(ctx, id); err != nil {
			return fmt.Errorf("purge liked-station snapshots: %w", err)
		}
	}
	s.notifier.Emit(EventStationRemoved, id, nil)
	return nil
}

func (s *stationService) AddSong(ctx context.Context, stationID string, song domain.Song) (*domain.Station, error) {
	ident, ok := identity.From(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if stationID == domain.VirtualLikedSongsID {
		return nil, fmt.Errorf("%w: the liked-songs station cannot be modified", domain.ErrInvalidArgument)
	}
	if song.ID == "" {
		return nil, fmt.Errorf("%w: missing song id", domain.ErrInvalidArgument)
	}

	song.AddedAt = time.Now().UTC()
	matched, err := s.stations.AddSong(ctx, stationID, ident.ID, song)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, domain.ErrNotFound
	}

	updated, err := s.stations.GetByID(ctx, stationID)
	if err != nil {
		return nil, err
	}
	s.notifier.Emit(EventStationUpdated, stationID, updated)
	return updated, nil
}

func (s *stationService) RemoveSong(ctx context.Context, stationID, songID string) (*domain.Station, error) {
	ident, ok := identity.From(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if stationID == domain.VirtualLikedSongsID {
		return nil, fmt.Errorf("%w: the liked-songs station cannot be modified", domain.ErrInvalidArgument)
	}

	matched, err := s.stations.RemoveSong(ctx, stationID, songID, ident.ID)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, domain.ErrNotFound
	}

	updated, err := s.stations.GetByID(ctx, stationID)
	if err != nil {
		return nil, err
	}
	s.notifier.Emit(EventStationUpdated, stationID, updated)
	return updated, nil
}

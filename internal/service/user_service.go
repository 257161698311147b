package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"station-player/internal/domain"
	"station-player/internal/identity"
	"station-player/internal/repository"
)

// UserService describes user queries and the liked-song / liked-station
// list mutations. The liked-station operations form the sync engine that
// keeps each user's embedded station snapshots aligned with the canonical
// records: merge the existing snapshot in place, fall back to pushing a
// fresh one, and pull on unlike. Every operation that touches the current
// user's lists reads the acting identity from the request context and fails
// with domain.ErrUnauthorized when none is bound.
type UserService interface {
	Query(ctx context.Context, filter repository.UserFilter) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Remove(ctx context.Context, id string) error

	AddLikedSong(ctx context.Context, song domain.Song) (*domain.User, error)
	RemoveLikedSong(ctx context.Context, songID string) (*domain.User, error)

	LikedStations(ctx context.Context, sort repository.LikedStationSort) ([]domain.LikedStation, error)
	AddLikedStation(ctx context.Context, station domain.Station) (*domain.User, error)
	UpdateLikedStation(ctx context.Context, snap domain.LikedStation) (*domain.User, error)
	RemoveLikedStation(ctx context.Context, stationID string) (*domain.User, error)
}

type userService struct {
	users    repository.UserRepository
	stations repository.StationRepository
	notifier Notifier
}

func NewUserService(users repository.UserRepository, stations repository.StationRepository, notifier Notifier) UserService {
	if notifier == nil {
		notifier = NopNotifier()
	}
	return &userService{users: users, stations: stations, notifier: notifier}
}

func (s *userService) Query(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	users, err := s.users.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// Update rewrites a user's profile fields. Only the user themselves or an
// admin may do so.
func (s *userService) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	ident, ok := identity.From(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if ident.ID != user.ID && !ident.IsAdmin {
		return nil, domain.ErrForbidden
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, user.ID)
}

func (s *userService) Remove(ctx context.Context, id string) error {
	ident, ok := identity.From(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if !ident.IsAdmin {
		return domain.ErrForbidden
	}
	return s.users.Delete(ctx, id)
}

func (s *userService) AddLikedSong(ctx context.Context, song domain.Song) (*domain.User, error) {
	ident, ok := identity.From(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if song.ID == "" {
		return nil, fmt.Errorf("%w: missing song id", domain.ErrInvalidArgument)
	}

	song.AddedAt = time.Now().UTC()
	if err := s.users.PushLikedSong(ctx, ident.ID, song); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, ident.ID)
}

func (s *userService) RemoveLikedSong(ctx context.Context, songID string) (*domain.User, error) {
	ident, ok := identity.From(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := s.users.PullLikedSong(ctx, ident.ID, songID); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, ident.ID)
}

func (s *userService) LikedStations(ctx context.Context, sort repository.LikedStationSort) ([]domain.LikedStation, error) {
	ident, ok := identity.From(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.users.LikedStations(ctx, ident.ID, sort)
}

// AddLikedStation records a like of station for the current identity.
// The embedded snapshot is merged in place when one already exists, so
// re-liking never resets the original like timestamp; only the fallback
// push stamps a fresh one. Registering the liked-by back-reference on the
// canonical station is a best-effort secondary step: its failure is
// reported to the caller, but the snapshot write is not rolled back.
func (s *userService) AddLikedStation(ctx context.Context, station domain.Station) (*domain.User, error) {
	ident, ok := identity.From(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if station.ID == "" {
		return nil, fmt.Errorf("%w: missing station id", domain.ErrInvalidArgument)
	}

	snap := domain.LikedStation{
		ID:        station.ID,
		Name:      station.Name,
		ImgURL:    station.ImgURL,
		CreatedBy: station.CreatedBy,
	}
	merged, err := s.users.MergeLikedStation(ctx, ident.ID, snap)
	if err != nil {
		return nil, err
	}
	if !merged {
		snap.AddedAt = time.Now().UTC()
		if err := s.users.PushLikedStation(ctx, ident.ID, snap); err != nil {
			return nil, err
		}
	}

	liker := domain.UserRef{ID: ident.ID, Name: ident.Name}
	if err := s.stations.AddLiker(ctx, station.ID, liker); err != nil && !errors.Is(err, domain.ErrNotFound) {
		// Externally-sourced stations have no canonical record to annotate;
		// anything else is a store failure the caller must see.
		return nil, fmt.Errorf("register liked-by reference: %w", err)
	}
	s.notifier.Emit(EventStationLiked, station.ID, liker)

	return s.GetByID(ctx, ident.ID)
}

// UpdateLikedStation refreshes the current identity's own snapshot of a
// station with the supplied display fields. When no snapshot matched (liked
// out of band, or the embedded copy is gone) it falls back to a push so the
// like is never silently lost.
func (s *userService) UpdateLikedStation(ctx context.Context, snap domain.LikedStation) (*domain.User, error) {
	ident, ok := identity.From(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if snap.ID == "" {
		return nil, fmt.Errorf("%w: missing station id", domain.ErrInvalidArgument)
	}

	merged, err := s.users.MergeLikedStation(ctx, ident.ID, snap)
	if err != nil {
		return nil, err
	}
	if !merged {
		if snap.AddedAt.IsZero() {
			snap.AddedAt = time.Now().UTC()
		}
		if err := s.users.PushLikedStation(ctx, ident.ID, snap); err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, ident.ID)
}

// RemoveLikedStation pulls the snapshot for stationID from the current
// identity's list. Other users' cached copies are untouched; the liked-by
// back-reference removal is best-effort like its counterpart in
// AddLikedStation.
func (s *userService) RemoveLikedStation(ctx context.Context, stationID string) (*domain.User, error) {
	ident, ok := identity.From(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if stationID == "" {
		return nil, fmt.Errorf("%w: missing station id", domain.ErrInvalidArgument)
	}

	if err := s.users.PullLikedStation(ctx, ident.ID, stationID); err != nil {
		return nil, err
	}
	if err := s.stations.RemoveLiker(ctx, stationID, ident.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("remove liked-by reference: %w", err)
	}
	s.notifier.Emit(EventStationLiked, stationID, domain.UserRef{ID: ident.ID, Name: ident.Name})
	return s.GetByID(ctx, ident.ID)
}

package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"station-player/internal/domain"
	"station-player/internal/repository"
)

// In-memory repositories mirroring the store's single-document update
// semantics: merge reports whether an embedded element matched, push is
// guarded against duplicates, add-liker behaves like a set.

type fakeUserRepo struct {
	mu     sync.Mutex
	seq    int
	users  map[string]*domain.User
	failOn map[string]error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User), failOn: make(map[string]error)}
}

func (f *fakeUserRepo) nextID() string {
	f.seq++
	return fmt.Sprintf("%024x", f.seq)
}

func (f *fakeUserRepo) seed(user domain.User) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == "" {
		user.ID = f.nextID()
	}
	if user.LikedSongs == nil {
		user.LikedSongs = []domain.Song{}
	}
	if user.LikedStations == nil {
		user.LikedStations = []domain.LikedStation{}
	}
	f.users[user.ID] = &user
	return user.ID
}

func (f *fakeUserRepo) get(id string) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.users[id]
}

func (f *fakeUserRepo) Query(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = f.nextID()
	if user.LikedSongs == nil {
		user.LikedSongs = []domain.Song{}
	}
	if user.LikedStations == nil {
		user.LikedStations = []domain.LikedStation{}
	}
	clone := *user
	f.users[user.ID] = &clone
	return user.ID, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.users[user.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Name = user.Name
	existing.Username = user.Username
	existing.LikedSongs = user.LikedSongs
	existing.LikedStations = user.LikedStations
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) PushLikedSong(ctx context.Context, userID string, song domain.Song) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.LikedSongs = append(u.LikedSongs, song)
	return nil
}

func (f *fakeUserRepo) PullLikedSong(ctx context.Context, userID, songID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil
	}
	kept := u.LikedSongs[:0]
	for _, s := range u.LikedSongs {
		if s.ID != songID {
			kept = append(kept, s)
		}
	}
	u.LikedSongs = kept
	return nil
}

func (f *fakeUserRepo) PushLikedStation(ctx context.Context, userID string, snap domain.LikedStation) error {
	if err := f.failOn["PushLikedStation"]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil
	}
	for _, st := range u.LikedStations {
		if st.ID == snap.ID {
			return nil // duplicate guard
		}
	}
	u.LikedStations = append(u.LikedStations, snap)
	return nil
}

func (f *fakeUserRepo) MergeLikedStation(ctx context.Context, userID string, snap domain.LikedStation) (bool, error) {
	if err := f.failOn["MergeLikedStation"]; err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return false, nil
	}
	for i := range u.LikedStations {
		if u.LikedStations[i].ID == snap.ID {
			u.LikedStations[i].Name = snap.Name
			u.LikedStations[i].ImgURL = snap.ImgURL
			u.LikedStations[i].CreatedBy = snap.CreatedBy
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) PullLikedStation(ctx context.Context, userID, stationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil
	}
	kept := u.LikedStations[:0]
	for _, st := range u.LikedStations {
		if st.ID != stationID {
			kept = append(kept, st)
		}
	}
	u.LikedStations = kept
	return nil
}

func (f *fakeUserRepo) PullLikedStationAll(ctx context.Context, stationID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var modified int64
	for _, u := range f.users {
		kept := u.LikedStations[:0]
		removed := false
		for _, st := range u.LikedStations {
			if st.ID != stationID {
				kept = append(kept, st)
			} else {
				removed = true
			}
		}
		u.LikedStations = kept
		if removed {
			modified++
		}
	}
	return modified, nil
}

func (f *fakeUserRepo) LikedStations(ctx context.Context, userID string, sortKey repository.LikedStationSort) ([]domain.LikedStation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.LikedStation, len(u.LikedStations))
	copy(out, u.LikedStations)
	switch sortKey {
	case repository.SortByName:
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case repository.SortByCreator:
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedBy.Name < out[j].CreatedBy.Name })
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	}
	return out, nil
}

type fakeStationRepo struct {
	mu       sync.Mutex
	seq      int
	stations map[string]*domain.Station
	failOn   map[string]error
}

func newFakeStationRepo() *fakeStationRepo {
	return &fakeStationRepo{
		stations: make(map[string]*domain.Station),
		failOn:   make(map[string]error),
	}
}

func (f *fakeStationRepo) seed(station domain.Station) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if station.ID == "" {
		f.seq++
		station.ID = fmt.Sprintf("%024x", 0x5000+f.seq)
	}
	if station.LikedBy == nil {
		station.LikedBy = []domain.UserRef{}
	}
	f.stations[station.ID] = &station
	return station.ID
}

func (f *fakeStationRepo) get(id string) domain.Station {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.stations[id]
}

func (f *fakeStationRepo) Query(ctx context.Context, filter repository.StationFilter) ([]domain.Station, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Station
	for _, s := range f.stations {
		if filter.CreatedByID != "" && s.CreatedBy.ID != filter.CreatedByID {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeStationRepo) GetByID(ctx context.Context, id string) (*domain.Station, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (f *fakeStationRepo) Create(ctx context.Context, station *domain.Station) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	station.ID = fmt.Sprintf("%024x", 0x5000+f.seq)
	if station.Genres == nil {
		station.Genres = []string{}
	}
	if station.Songs == nil {
		station.Songs = []domain.Song{}
	}
	station.LikedBy = []domain.UserRef{}
	clone := *station
	f.stations[station.ID] = &clone
	return station.ID, nil
}

func (f *fakeStationRepo) Update(ctx context.Context, station *domain.Station, ownerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.stations[station.ID]
	if !ok || existing.CreatedBy.ID != ownerID {
		return false, nil
	}
	existing.Name = station.Name
	existing.Description = station.Description
	existing.ImgURL = station.ImgURL
	existing.Genres = station.Genres
	existing.Songs = station.Songs
	return true, nil
}

func (f *fakeStationRepo) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.stations[id]
	if !ok || existing.CreatedBy.ID != ownerID {
		return false, nil
	}
	delete(f.stations, id)
	return true, nil
}

func (f *fakeStationRepo) AddLiker(ctx context.Context, stationID string, liker domain.UserRef) error {
	if err := f.failOn["AddLiker"]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stations[stationID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, ref := range s.LikedBy {
		if ref == liker {
			return nil // set semantics
		}
	}
	s.LikedBy = append(s.LikedBy, liker)
	return nil
}

func (f *fakeStationRepo) RemoveLiker(ctx context.Context, stationID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stations[stationID]
	if !ok {
		return domain.ErrNotFound
	}
	kept := s.LikedBy[:0]
	for _, ref := range s.LikedBy {
		if ref.ID != userID {
			kept = append(kept, ref)
		}
	}
	s.LikedBy = kept
	return nil
}

func (f *fakeStationRepo) AddSong(ctx context.Context, stationID, ownerID string, song domain.Song) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stations[stationID]
	if !ok || s.CreatedBy.ID != ownerID {
		return false, nil
	}
	s.Songs = append(s.Songs, song)
	return true, nil
}

func (f *fakeStationRepo) RemoveSong(ctx context.Context, stationID, songID, ownerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stations[stationID]
	if !ok || s.CreatedBy.ID != ownerID {
		return false, nil
	}
	kept := s.Songs[:0]
	for _, song := range s.Songs {
		if song.ID != songID {
			kept = append(kept, song)
		}
	}
	s.Songs = kept
	return true, nil
}

type notifiedEvent struct {
	eventType string
	stationID string
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notifiedEvent
}

func (f *fakeNotifier) Emit(eventType, stationID string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, notifiedEvent{eventType: eventType, stationID: stationID})
}

func (f *fakeNotifier) recorded() []notifiedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notifiedEvent, len(f.events))
	copy(out, f.events)
	return out
}

var (
	_ repository.UserRepository    = (*fakeUserRepo)(nil)
	_ repository.StationRepository = (*fakeStationRepo)(nil)
	_ Notifier                     = (*fakeNotifier)(nil)
)

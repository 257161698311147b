package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"station-player/internal/domain"
	"station-player/internal/repository"
)

type stationDoc struct {
	ID             interface{} `bson:"_id,omitempty"`
	domain.Station `bson:",inline"`
}

type StationRepository struct {
	col *mongo.Collection
}

func NewStationRepository(db *mongo.Database) repository.StationRepository {
	return &StationRepository{col: db.Collection(stationCollection)}
}

func (r *StationRepository) Query(ctx context.Context, filter repository.StationFilter) ([]domain.Station, error) {
	criteria := bson.M{}
	if filter.Txt != "" {
		txt := bson.M{"$regex": filter.Txt, "$options": "i"}
		criteria["$or"] = bson.A{bson.M{"name": txt}, bson.M{"description": txt}}
	}
	if filter.Genre != "" {
		criteria["genres"] = bson.M{"$in": bson.A{filter.Genre}}
	}
	if filter.CreatedByID != "" {
		criteria["createdBy._id"] = filter.CreatedByID
	}

	cursor, err := r.col.Find(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("find stations: %w", err)
	}
	defer cursor.Close(ctx)

	var stations []domain.Station
	for cursor.Next(ctx) {
		var doc stationDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode station: %w", err)
		}
		stations = append(stations, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate stations: %w", err)
	}
	return stations, nil
}

func (r *StationRepository) GetByID(ctx context.Context, id string) (*domain.Station, error) {
	idValue, err := stationIDValue(id)
	if err != nil {
		return nil, err
	}

	var doc stationDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": idValue}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find station %s: %w", id, err)
	}
	station := doc.toDomain()
	return &station, nil
}

func (r *StationRepository) Create(ctx context.Context, station *domain.Station) (string, error) {
	if station.Genres == nil {
		station.Genres = []string{}
	}
	if station.Songs == nil {
		station.Songs = []domain.Song{}
	}
	station.LikedBy = []domain.UserRef{}

	doc := stationDoc{ID: primitive.NewObjectID(), Station: *station}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert station: %w", err)
	}
	station.ID = idString(doc.ID)
	return station.ID, nil
}

// Update rewrites the creator-mutable fields. The filter carries both the
// station id and the acting owner id, so a non-creator matches zero
// documents and nothing is written.
func (r *StationRepository) Update(ctx context.Context, station *domain.Station, ownerID string) (bool, error) {
	filter, err := ownedFilter(station.ID, ownerID)
	if err != nil {
		return false, err
	}

	fields := bson.M{
		"name":        station.Name,
		"description": station.Description,
		"imgUrl":      station.ImgURL,
		"genres":      station.Genres,
		"songs":       station.Songs,
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return false, fmt.Errorf("update station %s: %w", station.ID, err)
	}
	return res.MatchedCount > 0, nil
}

func (r *StationRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return false, err
	}
	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("delete station %s: %w", id, err)
	}
	return res.DeletedCount > 0, nil
}

func (r *StationRepository) AddLiker(ctx context.Context, stationID string, liker domain.UserRef) error {
	idValue, err := stationIDValue(stationID)
	if err != nil {
		return err
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": idValue},
		bson.M{"$addToSet": bson.M{"likedByUsers": liker}})
	if err != nil {
		return fmt.Errorf("add liker to station %s: %w", stationID, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StationRepository) RemoveLiker(ctx context.Context, stationID, userID string) error {
	idValue, err := stationIDValue(stationID)
	if err != nil {
		return err
	}
	_, err = r.col.UpdateOne(ctx, bson.M{"_id": idValue},
		bson.M{"$pull": bson.M{"likedByUsers": bson.M{"_id": userID}}})
	if err != nil {
		return fmt.Errorf("remove liker from station %s: %w", stationID, err)
	}
	return nil
}

func (r *StationRepository) AddSong(ctx context.Context, stationID, ownerID string, song domain.Song) (bool, error) {
	filter, err := ownedFilter(stationID, ownerID)
	if err != nil {
		return false, err
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"songs": song}})
	if err != nil {
		return false, fmt.Errorf("add song to station %s: %w", stationID, err)
	}
	return res.MatchedCount > 0, nil
}

func (r *StationRepository) RemoveSong(ctx context.Context, stationID, songID, ownerID string) (bool, error) {
	filter, err := ownedFilter(stationID, ownerID)
	if err != nil {
		return false, err
	}
	res, err := r.col.UpdateOne(ctx, filter,
		bson.M{"$pull": bson.M{"songs": bson.M{"_id": songID}}})
	if err != nil {
		return false, fmt.Errorf("remove song from station %s: %w", stationID, err)
	}
	return res.MatchedCount > 0, nil
}

func ownedFilter(stationID, ownerID string) (bson.M, error) {
	idValue, err := stationIDValue(stationID)
	if err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: empty owner id", domain.ErrInvalidArgument)
	}
	return bson.M{"_id": idValue, "createdBy._id": ownerID}, nil
}

func (d stationDoc) toDomain() domain.Station {
	station := d.Station
	station.ID = idString(d.ID)
	return station
}

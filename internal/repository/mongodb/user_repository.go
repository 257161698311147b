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

type userDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	domain.User `bson:",inline"`
}

type UserRepository struct {
	col      *mongo.Collection
	stations *mongo.Collection
}

func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &UserRepository{
		col:      db.Collection(userCollection),
		stations: db.Collection(stationCollection),
	}
}

func (r *UserRepository) Query(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	criteria := bson.M{}
	if filter.Txt != "" {
		txt := bson.M{"$regex": filter.Txt, "$options": "i"}
		criteria["$or"] = bson.A{bson.M{"username": txt}, bson.M{"name": txt}}
	}

	cursor, err := r.col.Find(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []domain.User
	for cursor.Next(ctx) {
		var doc userDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc userDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	user := doc.toDomain()
	return &user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var doc userDoc
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by username %s: %w", username, err)
	}
	user := doc.toDomain()
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (string, error) {
	if user.LikedSongs == nil {
		user.LikedSongs = []domain.Song{}
	}
	if user.LikedStations == nil {
		user.LikedStations = []domain.LikedStation{}
	}

	doc := userDoc{ID: primitive.NewObjectID(), User: *user}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	user.ID = doc.ID.Hex()
	return user.ID, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	oid, err := objectID(user.ID)
	if err != nil {
		return err
	}

	fields := bson.M{
		"name":          user.Name,
		"username":      user.Username,
		"likedSongs":    user.LikedSongs,
		"likedStations": user.LikedStations,
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update user %s: %w", user.ID, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

func (r *UserRepository) PushLikedSong(ctx context.Context, userID string, song domain.Song) error {
	oid, err := objectID(userID)
	if err != nil {
		return err
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$push": bson.M{"likedSongs": song}})
	if err != nil {
		return fmt.Errorf("push liked song to user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) PullLikedSong(ctx context.Context, userID, songID string) error {
	oid, err := objectID(userID)
	if err != nil {
		return err
	}
	_, err = r.col.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$pull": bson.M{"likedSongs": bson.M{"_id": songID}}})
	if err != nil {
		return fmt.Errorf("pull liked song from user %s: %w", userID, err)
	}
	return nil
}

// PushLikedStation appends the snapshot, guarded so a concurrent like of the
// same station cannot produce a duplicate entry. A zero match is a no-op, not
// an error: it means the snapshot already exists.
func (r *UserRepository) PushLikedStation(ctx context.Context, userID string, snap domain.LikedStation) error {
	oid, err := objectID(userID)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": oid, "likedStations._id": bson.M{"$ne": snap.ID}}
	if _, err := r.col.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"likedStations": snap}}); err != nil {
		return fmt.Errorf("push liked station to user %s: %w", userID, err)
	}
	return nil
}

// MergeLikedStation refreshes only the display fields of the matching
// embedded snapshot; the like timestamp is left as it was. The element id is
// part of the filter, so the match count tells push-fallback callers whether
// a snapshot existed at all.
func (r *UserRepository) MergeLikedStation(ctx context.Context, userID string, snap domain.LikedStation) (bool, error) {
	oid, err := objectID(userID)
	if err != nil {
		return false, err
	}

	filter := bson.M{"_id": oid, "likedStations._id": snap.ID}
	update := bson.M{"$set": bson.M{
		"likedStations.$.name":      snap.Name,
		"likedStations.$.imgUrl":    snap.ImgURL,
		"likedStations.$.createdBy": snap.CreatedBy,
	}}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("merge liked station for user %s: %w", userID, err)
	}
	return res.MatchedCount > 0, nil
}

func (r *UserRepository) PullLikedStation(ctx context.Context, userID, stationID string) error {
	oid, err := objectID(userID)
	if err != nil {
		return err
	}
	_, err = r.col.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$pull": bson.M{"likedStations": bson.M{"_id": stationID}}})
	if err != nil {
		return fmt.Errorf("pull liked station from user %s: %w", userID, err)
	}
	return nil
}

func (r *UserRepository) PullLikedStationAll(ctx context.Context, stationID string) (int64, error) {
	res, err := r.col.UpdateMany(ctx, bson.M{},
		bson.M{"$pull": bson.M{"likedStations": bson.M{"_id": stationID}}})
	if err != nil {
		return 0, fmt.Errorf("pull liked station %s from all users: %w", stationID, err)
	}
	return res.ModifiedCount, nil
}

// LikedStations joins each embedded snapshot against the canonical station
// collection at read time. Snapshots whose id converts to an ObjectID and
// still resolves carry the canonical display fields; deleted or
// externally-sourced stations fall back to the cached copy.
func (r *UserRepository) LikedStations(ctx context.Context, userID string, sort repository.LikedStationSort) ([]domain.LikedStation, error) {
	oid, err := objectID(userID)
	if err != nil {
		return nil, err
	}

	canonical := func(field, fallback string) bson.M {
		return bson.M{"$cond": bson.A{
			bson.M{"$gt": bson.A{bson.M{"$size": "$stationData"}, 0}},
			bson.M{"$arrayElemAt": bson.A{"$stationData." + field, 0}},
			fallback,
		}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": oid}}},
		{{Key: "$unwind", Value: "$likedStations"}},
		{{Key: "$addFields", Value: bson.M{
			"canonicalId": bson.M{"$convert": bson.M{
				"input":   "$likedStations._id",
				"to":      "objectId",
				"onError": nil,
				"onNull":  nil,
			}},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         stationCollection,
			"localField":   "canonicalId",
			"foreignField": "_id",
			"as":           "stationData",
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":       "$likedStations._id",
			"name":      canonical("name", "$likedStations.name"),
			"imgUrl":    canonical("imgUrl", "$likedStations.imgUrl"),
			"createdBy": canonical("createdBy", "$likedStations.createdBy"),
			"addedAt":   "$likedStations.addedAt",
		}}},
		{{Key: "$sort", Value: likedStationSortDoc(sort)}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate liked stations for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	stations := []domain.LikedStation{}
	if err := cursor.All(ctx, &stations); err != nil {
		return nil, fmt.Errorf("decode liked stations: %w", err)
	}
	return stations, nil
}

func likedStationSortDoc(sort repository.LikedStationSort) bson.D {
	switch sort {
	case repository.SortByName:
		return bson.D{{Key: "name", Value: 1}}
	case repository.SortByCreator:
		return bson.D{{Key: "createdBy.name", Value: 1}}
	default:
		return bson.D{{Key: "addedAt", Value: -1}}
	}
}

func (d userDoc) toDomain() domain.User {
	user := d.User
	user.ID = d.ID.Hex()
	return user
}

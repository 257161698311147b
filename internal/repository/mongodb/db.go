package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"station-player/internal/domain"
)

const (
	userCollection    = "user"
	stationCollection = "station"
)

// Connect opens a client against uri, verifies connectivity, and returns the
// named database plus a disconnect func for shutdown.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Database, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client.Database(dbName), client.Disconnect, nil
}

// objectID parses a store-generated 24-hex identifier. Malformed input is an
// ErrInvalidArgument before any store call is issued.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: malformed id %q", domain.ErrInvalidArgument, id)
	}
	return oid, nil
}

// stationIDValue picks the filter value for a station identifier by shape: a
// well-formed 24-hex token is a store-generated ObjectID, anything else is an
// externally-sourced identifier stored as a literal string. The shape decides
// the query; no probe-and-catch.
func stationIDValue(id string) (interface{}, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty station id", domain.ErrInvalidArgument)
	}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid, nil
	}
	return id, nil
}

// idString renders an _id decoded from the store back to its wire form.
func idString(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprintf("%v", id)
	}
}

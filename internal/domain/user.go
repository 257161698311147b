package domain

import "time"

// LikedStation is the snapshot of a station embedded in a user's
// liked-stations list. It is a cache of the station's display fields, not a
// foreign key: it can drift from the canonical station (renamed, deleted)
// until the next write-path refresh or read-time reconciliation.
type LikedStation struct {
	ID        string     `bson:"_id" json:"_id"`
	Name      string     `bson:"name" json:"name"`
	ImgURL    string     `bson:"imgUrl" json:"imgUrl"`
	CreatedBy CreatorRef `bson:"createdBy" json:"createdBy"`
	AddedAt   time.Time  `bson:"addedAt" json:"addedAt"`
}

// User is the canonical record of an account. Password holds the bcrypt
// digest and is empty for externally-federated identities; it must never be
// returned across the system boundary.
type User struct {
	ID            string         `bson:"-" json:"_id"`
	Name          string         `bson:"name" json:"name"`
	Username      string         `bson:"username" json:"username"`
	Password      string         `bson:"password,omitempty" json:"-"`
	ImgURL        string         `bson:"imgUrl,omitempty" json:"imgUrl,omitempty"`
	IsAdmin       bool           `bson:"isAdmin,omitempty" json:"isAdmin,omitempty"`
	LikedSongs    []Song         `bson:"likedSongs" json:"likedSongs"`
	LikedStations []LikedStation `bson:"likedStations" json:"likedStations"`
}

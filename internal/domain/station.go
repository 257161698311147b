package domain

// VirtualLikedSongsID is the identifier of the synthetic "Liked Songs"
// station materialized from a user's liked-song list. It has no canonical
// record and is rejected by every station mutation path.
const VirtualLikedSongsID = "liked-songs"

// CreatorRef identifies the user that created a station. It is captured at
// creation time and never re-synced against the canonical user record.
type CreatorRef struct {
	ID     string `bson:"_id" json:"_id"`
	Name   string `bson:"name" json:"name"`
	ImgURL string `bson:"imgUrl,omitempty" json:"imgUrl,omitempty"`
}

// UserRef is a minimal back-reference to a user inside a station's
// liked-by set.
type UserRef struct {
	ID   string `bson:"_id" json:"_id"`
	Name string `bson:"name" json:"name"`
}

// Station is the canonical record of a station (playlist). Only the creator
// may mutate its fields or delete it; ownership is enforced by scoping every
// mutating filter to the creator id rather than by a separate check.
type Station struct {
	ID          string     `bson:"-" json:"_id"`
	Name        string     `bson:"name" json:"name"`
	Description string     `bson:"description" json:"description"`
	ImgURL      string     `bson:"imgUrl" json:"imgUrl"`
	Genres      []string   `bson:"genres" json:"genres"`
	CreatedBy   CreatorRef `bson:"createdBy" json:"createdBy"`
	Songs       []Song     `bson:"songs" json:"songs"`
	LikedBy     []UserRef  `bson:"likedByUsers" json:"likedByUsers"`
}

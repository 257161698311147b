package domain

import "time"

// ArtistRef is a denormalized artist reference carried inside a song entry.
type ArtistRef struct {
	ID   string `bson:"_id" json:"_id"`
	Name string `bson:"name" json:"name"`
}

// AlbumRef is a denormalized album reference carried inside a song entry.
type AlbumRef struct {
	ID   string `bson:"_id" json:"_id"`
	Name string `bson:"name" json:"name"`
}

// Song is a single track entry. The same shape is embedded in a station's
// song list and in a user's liked-songs list; each container owns its copy.
type Song struct {
	ID        string      `bson:"_id" json:"_id"`
	Name      string      `bson:"name" json:"name"`
	Artists   []ArtistRef `bson:"artists" json:"artists"`
	Album     AlbumRef    `bson:"album" json:"album"`
	Duration  int         `bson:"duration" json:"duration"`
	ImgURL    string      `bson:"imgUrl" json:"imgUrl"`
	AddedAt   time.Time   `bson:"addedAt" json:"addedAt"`
	YoutubeID string      `bson:"youtubeId,omitempty" json:"youtubeId,omitempty"`
}

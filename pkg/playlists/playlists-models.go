package playlists

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/silktrader/onair/pkg/sqlpatch"
)

const dateLayout = "2006-01-02"

type Playlist struct {
	ID          int64  `db:"id" json:"playlistID"`
	Date        string `db:"date" json:"date"`
	Description string `db:"description" json:"description"`
}

// Created is a new playlist along with the show it was filed under.
type Created struct {
	Playlist
	ShowID int64 `json:"showID"`
}

// Listing is a playlist along with the show airing it.
type Listing struct {
	PlaylistID  int64  `db:"playlist_id" json:"playlistID"`
	Date        string `db:"date" json:"date"`
	Description string `db:"description" json:"description"`
	ShowID      int64  `db:"show_id" json:"showID"`
	ShowName    string `db:"show_name" json:"showName"`
}

// Track is a song as it appears in a playlist.
type Track struct {
	SongID     int64  `db:"song_id" json:"songID"`
	Title      string `db:"title" json:"title"`
	Artist     string `db:"artist" json:"artist"`
	Album      string `db:"album" json:"album"`
	AlbumLink  string `db:"album_link" json:"albumLink"`
	AlbumImage string `db:"album_image" json:"albumImage"`
	SongOrder  int    `db:"song_order" json:"songOrder"`
}

// Details is a playlist along with its tracks, in order.
type Details struct {
	Playlist
	Songs []Track `json:"songs"`
}

// NewPlaylistData files a playlist under the show hosted by MemberID.
type NewPlaylistData struct {
	MemberID    *int64 `json:"memberID"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

func (data NewPlaylistData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Date, validation.Required, validation.Date(dateLayout)),
		validation.Field(&data.Description, validation.Length(0, 500)),
	)
}

// UpdateData lists the changes to a playlist. Dates are fixed once filed.
type UpdateData struct {
	Description *string `json:"description"`
}

func (data UpdateData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Description, validation.Length(0, 500)),
	)
}

var updateColumns = map[string]string{
	"description": "description",
}

func (data UpdateData) patch() sqlpatch.Patch {
	var patch sqlpatch.Patch
	if data.Description != nil {
		patch.Set("description", *data.Description)
	}
	return patch
}

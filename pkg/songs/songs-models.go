package songs

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/silktrader/onair/pkg/integrity"
	"github.com/silktrader/onair/pkg/sqlpatch"
)

var songTextRules = []validation.Rule{validation.Length(1, 200)}

// Song is shared by every playlist listing it; the same artist, title and album always map to one song.
type Song struct {
	ID         int64  `db:"id" json:"songID"`
	Artist     string `db:"artist" json:"artist"`
	Title      string `db:"title" json:"title"`
	Album      string `db:"album" json:"album"`
	AlbumLink  string `db:"album_link" json:"albumLink"`
	AlbumImage string `db:"album_image" json:"albumImage"`
}

func (s Song) identity() integrity.SongIdentity {
	return integrity.SongIdentity{Artist: s.Artist, Title: s.Title, Album: s.Album}
}

// Entry places a song in a playlist.
type Entry struct {
	PlaylistID int64 `db:"playlist_id" json:"playlistID"`
	SongID     int64 `db:"song_id" json:"songID"`
	SongOrder  int   `db:"song_order" json:"songOrder"`
}

// Added is the song appended to a playlist, along with its place in it.
type Added struct {
	Song
	PlaylistInsertedInto Entry `json:"playlistInsertedInto"`
}

// Updated is the edited song along with the playlists listing it, all of which show the change.
type Updated struct {
	Song
	Playlists []int64 `json:"playlists"`
}

type NewSongData struct {
	PlaylistID int64  `json:"playlistID"`
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	Album      string `json:"album"`
}

func (data NewSongData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.PlaylistID, validation.Required, validation.Min(int64(1))),
		validation.Field(&data.Artist, append([]validation.Rule{validation.Required}, songTextRules...)...),
		validation.Field(&data.Title, append([]validation.Rule{validation.Required}, songTextRules...)...),
		validation.Field(&data.Album, validation.Length(0, 200)),
	)
}

func (data NewSongData) identity() integrity.SongIdentity {
	return integrity.SongIdentity{Artist: data.Artist, Title: data.Title, Album: data.Album}
}

// UpdateData lists the changes to a song; nil fields are left untouched.
type UpdateData struct {
	Artist     *string `json:"artist"`
	Title      *string `json:"title"`
	Album      *string `json:"album"`
	AlbumLink  *string `json:"albumLink"`
	AlbumImage *string `json:"albumImage"`
}

func (data UpdateData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Artist, append([]validation.Rule{validation.NilOrNotEmpty}, songTextRules...)...),
		validation.Field(&data.Title, append([]validation.Rule{validation.NilOrNotEmpty}, songTextRules...)...),
		validation.Field(&data.Album, validation.Length(0, 200)),
		validation.Field(&data.AlbumLink, is.URL),
		validation.Field(&data.AlbumImage, is.URL),
	)
}

// changesIdentity reports whether the update touches the fields songs are deduplicated by.
func (data UpdateData) changesIdentity() bool {
	return data.Artist != nil || data.Title != nil || data.Album != nil
}

// merge applies the identity changes to the current song's identity.
func (data UpdateData) merge(current integrity.SongIdentity) integrity.SongIdentity {
	if data.Artist != nil {
		current.Artist = *data.Artist
	}
	if data.Title != nil {
		current.Title = *data.Title
	}
	if data.Album != nil {
		current.Album = *data.Album
	}
	return current
}

var updateColumns = map[string]string{
	"artist":     "artist",
	"title":      "title",
	"album":      "album",
	"albumLink":  "album_link",
	"albumImage": "album_image",
}

func (data UpdateData) patch() sqlpatch.Patch {
	var patch sqlpatch.Patch
	if data.Artist != nil {
		patch.Set("artist", *data.Artist)
	}
	if data.Title != nil {
		patch.Set("title", *data.Title)
	}
	if data.Album != nil {
		patch.Set("album", *data.Album)
	}
	if data.AlbumLink != nil {
		patch.Set("albumLink", *data.AlbumLink)
	}
	if data.AlbumImage != nil {
		patch.Set("albumImage", *data.AlbumImage)
	}
	return patch
}

// RemoveData singles out one entry of a playlist, as a song may be listed more than once.
type RemoveData struct {
	PlaylistID int64 `json:"playlistID"`
	SongID     int64 `json:"songID"`
	SongOrder  int   `json:"songOrder"`
}

func (data RemoveData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.PlaylistID, validation.Required),
		validation.Field(&data.SongID, validation.Required),
		validation.Field(&data.SongOrder, validation.Required, validation.Min(1)),
	)
}

/*
Package integrity holds the existence and uniqueness checks that stores run before writing.

The checks read through the querier they're handed, which is the transaction of the write they guard, so
that the write only happens if the relied upon rows exist and no duplicate was found. Every failure is a
failure.BadRequest; lookups that aren't failures, such as the song deduplication, return found flags.
*/
package integrity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/silktrader/onair/pkg/failure"
)

// exists runs a query selecting a single boolean row, as in `SELECT EXISTS (...)`.
func exists(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (bool, error) {
	var found bool
	if err := sqlx.GetContext(ctx, q, &found, query, args...); err != nil {
		return false, err
	}
	return found, nil
}

func MemberExists(ctx context.Context, q sqlx.QueryerContext, memberID int64) error {
	found, err := exists(ctx, q, `SELECT EXISTS (SELECT 1 FROM members WHERE id = $1)`, memberID)
	if err != nil {
		return fmt.Errorf("checking member %d: %w", memberID, err)
	}
	if !found {
		return failure.BadRequest("No member exists w/ ID: %d", memberID)
	}
	return nil
}

func ShowExists(ctx context.Context, q sqlx.QueryerContext, showID int64) error {
	found, err := exists(ctx, q, `SELECT EXISTS (SELECT 1 FROM shows WHERE id = $1)`, showID)
	if err != nil {
		return fmt.Errorf("checking show %d: %w", showID, err)
	}
	if !found {
		return failure.BadRequest("No show exists w/ ID: %d", showID)
	}
	return nil
}

func PlaylistExists(ctx context.Context, q sqlx.QueryerContext, playlistID int64) error {
	found, err := exists(ctx, q, `SELECT EXISTS (SELECT 1 FROM playlists WHERE id = $1)`, playlistID)
	if err != nil {
		return fmt.Errorf("checking playlist %d: %w", playlistID, err)
	}
	if !found {
		return failure.BadRequest("No playlist exists w/ ID: %d", playlistID)
	}
	return nil
}

// NotFavorited fails when the member already favorited the show.
func NotFavorited(ctx context.Context, q sqlx.QueryerContext, memberID, showID int64) error {
	found, err := exists(ctx, q,
		`SELECT EXISTS (SELECT 1 FROM member_favorites WHERE member_id = $1 AND show_id = $2)`,
		memberID, showID)
	if err != nil {
		return fmt.Errorf("checking favorite %d/%d: %w", memberID, showID, err)
	}
	if found {
		return failure.BadRequest("Show w/ ID: %d already favorited by member w/ ID: %d", showID, memberID)
	}
	return nil
}

func UsernameFree(ctx context.Context, q sqlx.QueryerContext, username string) error {
	found, err := exists(ctx, q, `SELECT EXISTS (SELECT 1 FROM members WHERE username = $1)`, username)
	if err != nil {
		return fmt.Errorf("checking username %q: %w", username, err)
	}
	if found {
		return failure.BadRequest("Duplicate username: %s", username)
	}
	return nil
}

// ShowNameFree fails when a show other than exceptID is named name. Pass 0 to consider every show.
func ShowNameFree(ctx context.Context, q sqlx.QueryerContext, name string, exceptID int64) error {
	found, err := exists(ctx, q,
		`SELECT EXISTS (SELECT 1 FROM shows WHERE show_name = $1 AND id != $2)`,
		name, exceptID)
	if err != nil {
		return fmt.Errorf("checking show name %q: %w", name, err)
	}
	if found {
		return failure.BadRequest("Duplicate show: %s", name)
	}
	return nil
}

// SlotFree fails when a show other than exceptID airs on the same day and time. Pass 0 to consider every
// show.
func SlotFree(ctx context.Context, q sqlx.QueryerContext, day int, showTime string, exceptID int64) error {
	found, err := exists(ctx, q,
		`SELECT EXISTS (SELECT 1 FROM shows WHERE day_of_week = $1 AND show_time = $2 AND id != $3)`,
		day, showTime, exceptID)
	if err != nil {
		return fmt.Errorf("checking slot %d/%s: %w", day, showTime, err)
	}
	if found {
		return failure.BadRequest("Duplicate date/time: %d/%s", day, showTime)
	}
	return nil
}

// HostsNoShow fails when the member already hosts a show other than exceptID. Pass 0 to consider every
// show.
func HostsNoShow(ctx context.Context, q sqlx.QueryerContext, memberID, exceptID int64) error {
	found, err := exists(ctx, q,
		`SELECT EXISTS (SELECT 1 FROM shows WHERE dj_id = $1 AND id != $2)`, memberID, exceptID)
	if err != nil {
		return fmt.Errorf("checking shows of member %d: %w", memberID, err)
	}
	if found {
		return failure.BadRequest("DJ w/ ID %d already hosts a show", memberID)
	}
	return nil
}

// NoPlaylistOn fails when a show owned by the member already has a playlist on date.
func NoPlaylistOn(ctx context.Context, q sqlx.QueryerContext, memberID int64, date string) error {
	found, err := exists(ctx, q, `
		SELECT EXISTS (
			SELECT 1 FROM playlists
			JOIN show_playlists ON show_playlists.playlist_id = playlists.id
			JOIN shows ON shows.id = show_playlists.show_id
			WHERE shows.dj_id = $1 AND playlists.date = $2)`,
		memberID, date)
	if err != nil {
		return fmt.Errorf("checking playlists of member %d on %s: %w", memberID, date, err)
	}
	if found {
		return failure.BadRequest("Duplicate playlist for date: %s", date)
	}
	return nil
}

// OwnedShow returns the show hosted by the member, failing when there's none.
func OwnedShow(ctx context.Context, q sqlx.QueryerContext, memberID int64) (int64, error) {
	var showID int64
	err := sqlx.GetContext(ctx, q, &showID,
		`SELECT id FROM shows WHERE dj_id = $1`, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, failure.BadRequest("No show exists for DJ w/ ID: %d", memberID)
	}
	if err != nil {
		return 0, fmt.Errorf("looking up show of member %d: %w", memberID, err)
	}
	return showID, nil
}

// MemberShow returns the show hosted by the member, if any.
func MemberShow(ctx context.Context, q sqlx.QueryerContext, memberID int64) (*int64, error) {
	showID, err := OwnedShow(ctx, q, memberID)
	if errors.Is(err, failure.ErrBadRequest) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &showID, nil
}

// SongIdentity is the deduplication key of songs.
type SongIdentity struct {
	Artist string
	Title  string
	Album  string
}

// FindSong looks up the song matching the identity, scanning it into dest. It returns false when no song
// matches. dest must be a struct with db tags for the songs columns.
func FindSong(ctx context.Context, q sqlx.QueryerContext, id SongIdentity, dest any) (bool, error) {
	err := sqlx.GetContext(ctx, q, dest, `
		SELECT id, artist, title, album, album_link, album_image
		FROM songs
		WHERE artist = $1 AND title = $2 AND album = $3`,
		id.Artist, id.Title, id.Album)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up song %q by %q: %w", id.Title, id.Artist, err)
	}
	return true, nil
}

// SongIdentityFree fails when a song other than exceptID has the identity.
func SongIdentityFree(ctx context.Context, q sqlx.QueryerContext, id SongIdentity, exceptID int64) error {
	found, err := exists(ctx, q,
		`SELECT EXISTS (SELECT 1 FROM songs WHERE artist = $1 AND title = $2 AND album = $3 AND id != $4)`,
		id.Artist, id.Title, id.Album, exceptID)
	if err != nil {
		return fmt.Errorf("checking song identity: %w", err)
	}
	if found {
		return failure.BadRequest("Duplicate song: %s - %s (%s)", id.Artist, id.Title, id.Album)
	}
	return nil
}

// ValidDay fails for days of the week outside 0 (Sunday) to 6 (Saturday).
func ValidDay(day int) error {
	if day < 0 || day > 6 {
		return failure.BadRequest("dayOfWeek must be an integer from 0-6; 0 = Sun, 1 = Mon, etc.")
	}
	return nil
}

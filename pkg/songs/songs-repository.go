package songs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/silktrader/onair/pkg/failure"
	"github.com/silktrader/onair/pkg/integrity"
	"github.com/silktrader/onair/pkg/sqlpatch"
	"github.com/silktrader/onair/pkg/storage"
)

type Storer interface {
	Create(ctx context.Context, data NewSongData) (Added, error)
	Get(ctx context.Context, id int64) (Song, error)
	Update(ctx context.Context, id int64, data UpdateData) (Updated, error)
	Remove(ctx context.Context, data RemoveData) error
}

const songColumns = `id, artist, title, album, album_link, album_image`

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db}
}

// Create appends the song to the playlist. Songs already known by artist, title and album are reused
// rather than duplicated.
func (ss *Store) Create(ctx context.Context, data NewSongData) (added Added, err error) {
	err = storage.Transact(ctx, ss.db, func(tx *sqlx.Tx) error {
		if err := integrity.PlaylistExists(ctx, tx, data.PlaylistID); err != nil {
			return err
		}

		found, err := integrity.FindSong(ctx, tx, data.identity(), &added.Song)
		if err != nil {
			return err
		}
		if !found {
			if err := tx.GetContext(ctx, &added.Song,
				`INSERT INTO songs (artist, title, album) VALUES ($1, $2, $3) RETURNING `+songColumns,
				data.Artist, data.Title, data.Album); err != nil {
				return err
			}
		}

		order, err := nextSongOrder(ctx, tx, data.PlaylistID)
		if err != nil {
			return err
		}

		return tx.GetContext(ctx, &added.PlaylistInsertedInto, `
			INSERT INTO playlist_songs (playlist_id, song_id, song_order)
			VALUES ($1, $2, $3)
			RETURNING playlist_id, song_id, song_order`,
			data.PlaylistID, added.ID, order)
	})
	if err != nil {
		return Added{}, fmt.Errorf("adding %q by %q to playlist %d: %w", data.Title, data.Artist, data.PlaylistID, err)
	}
	return added, nil
}

func (ss *Store) Get(ctx context.Context, id int64) (Song, error) {
	var song Song
	err := ss.db.GetContext(ctx, &song, `SELECT `+songColumns+` FROM songs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return song, failure.NotFound("No song with ID: %d", id)
	}
	if err != nil {
		return song, fmt.Errorf("getting song %d: %w", id, err)
	}
	return song, nil
}

// Update partially updates the song, as listed by every playlist. It returns the playlists affected by the
// change. A song can't take the artist, title and album of another.
func (ss *Store) Update(ctx context.Context, id int64, data UpdateData) (updated Updated, err error) {
	assignments, err := sqlpatch.Build(data.patch(), updateColumns)
	if err != nil {
		return updated, err
	}

	err = storage.Transact(ctx, ss.db, func(tx *sqlx.Tx) error {
		var current Song
		err := tx.GetContext(ctx, &current, `SELECT `+songColumns+` FROM songs WHERE id = $1`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return failure.NotFound("No song with ID: %d", id)
		}
		if err != nil {
			return err
		}

		if data.changesIdentity() {
			if err := integrity.SongIdentityFree(ctx, tx, data.merge(current.identity()), id); err != nil {
				return err
			}
		}

		if err := tx.GetContext(ctx, &updated.Song,
			`UPDATE songs SET `+assignments.SetCols+` WHERE id = `+assignments.Next()+` RETURNING `+songColumns,
			assignments.Args(id)...); err != nil {
			return err
		}

		updated.Playlists = make([]int64, 0)
		return tx.SelectContext(ctx, &updated.Playlists,
			`SELECT DISTINCT playlist_id FROM playlist_songs WHERE song_id = $1 ORDER BY playlist_id`, id)
	})
	if err != nil {
		return Updated{}, fmt.Errorf("updating song %d: %w", id, err)
	}
	return updated, nil
}

// Remove takes a single entry off a playlist. The song itself is kept and so are the positions of the
// following entries.
func (ss *Store) Remove(ctx context.Context, data RemoveData) error {
	var deleted int64
	err := ss.db.GetContext(ctx, &deleted, `
		DELETE FROM playlist_songs
		WHERE song_id = $1 AND playlist_id = $2 AND song_order = $3
		RETURNING id`,
		data.SongID, data.PlaylistID, data.SongOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return failure.NotFound("No song/playlist combo w/ IDs: %d/%d", data.SongID, data.PlaylistID)
	}
	if err != nil {
		return fmt.Errorf("removing song %d from playlist %d: %w", data.SongID, data.PlaylistID, err)
	}
	return nil
}

package playlists

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
	Create(ctx context.Context, data NewPlaylistData) (Created, error)
	GetAll(ctx context.Context) ([]Listing, error)
	Get(ctx context.Context, id int64) (Details, error)
	Update(ctx context.Context, id int64, data UpdateData) (Playlist, error)
	Remove(ctx context.Context, id int64) error
	OwnedBy(ctx context.Context, id, memberID int64) (bool, error)
}

const playlistColumns = `id, date, description`

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db}
}

// Create files a playlist under the show hosted by the member. The playlist and its link to the show are
// written together or not at all.
func (ps *Store) Create(ctx context.Context, data NewPlaylistData) (created Created, err error) {
	if data.MemberID == nil {
		return created, failure.BadRequest("Missing memberID")
	}
	var memberID = *data.MemberID

	err = storage.Transact(ctx, ps.db, func(tx *sqlx.Tx) error {
		showID, err := integrity.OwnedShow(ctx, tx, memberID)
		if err != nil {
			return err
		}
		// creates for the same show queue here, each seeing the playlists of those before it
		if err := storage.LockRow(ctx, tx, "shows", showID); err != nil {
			return err
		}
		if err := integrity.NoPlaylistOn(ctx, tx, memberID, data.Date); err != nil {
			return err
		}

		if err := tx.GetContext(ctx, &created.Playlist,
			`INSERT INTO playlists (date, description) VALUES ($1, $2) RETURNING `+playlistColumns,
			data.Date, data.Description); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO show_playlists (show_id, playlist_id) VALUES ($1, $2)`,
			showID, created.ID); err != nil {
			return err
		}
		created.ShowID = showID
		return nil
	})
	if err != nil {
		return Created{}, fmt.Errorf("creating playlist of member %d on %s: %w", memberID, data.Date, err)
	}
	return created, nil
}

// GetAll lists every playlist along with its show, most recent first.
func (ps *Store) GetAll(ctx context.Context) ([]Listing, error) {
	var all = make([]Listing, 0)
	err := ps.db.SelectContext(ctx, &all, `
		SELECT playlists.id AS playlist_id, playlists.date, playlists.description,
			shows.id AS show_id, shows.show_name
		FROM playlists
		JOIN show_playlists ON show_playlists.playlist_id = playlists.id
		JOIN shows ON shows.id = show_playlists.show_id
		ORDER BY playlists.date DESC, playlists.id`)
	if err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}
	return all, nil
}

func (ps *Store) Get(ctx context.Context, id int64) (Details, error) {
	var details = Details{Songs: make([]Track, 0)}
	err := ps.db.GetContext(ctx, &details.Playlist, `SELECT `+playlistColumns+` FROM playlists WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return details, failure.NotFound("No playlist with ID: %d", id)
	}
	if err != nil {
		return details, fmt.Errorf("getting playlist %d: %w", id, err)
	}

	err = ps.db.SelectContext(ctx, &details.Songs, `
		SELECT songs.id AS song_id, songs.title, songs.artist, songs.album, songs.album_link, songs.album_image,
			playlist_songs.song_order
		FROM playlist_songs
		JOIN songs ON songs.id = playlist_songs.song_id
		WHERE playlist_songs.playlist_id = $1
		ORDER BY playlist_songs.song_order`, id)
	if err != nil {
		return details, fmt.Errorf("getting songs of playlist %d: %w", id, err)
	}
	return details, nil
}

// Update changes the playlist's description.
func (ps *Store) Update(ctx context.Context, id int64, data UpdateData) (Playlist, error) {
	assignments, err := sqlpatch.Build(data.patch(), updateColumns)
	if err != nil {
		return Playlist{}, err
	}

	var playlist Playlist
	err = ps.db.GetContext(ctx, &playlist,
		`UPDATE playlists SET `+assignments.SetCols+` WHERE id = `+assignments.Next()+` RETURNING `+playlistColumns,
		assignments.Args(id)...)
	if errors.Is(err, sql.ErrNoRows) {
		return Playlist{}, failure.NotFound("No playlist with ID: %d", id)
	}
	if err != nil {
		return Playlist{}, fmt.Errorf("updating playlist %d: %w", id, err)
	}
	return playlist, nil
}

// Remove deletes the playlist and its entries. Songs are kept, as other playlists may list them.
func (ps *Store) Remove(ctx context.Context, id int64) error {
	return storage.Transact(ctx, ps.db, func(tx *sqlx.Tx) error {
		for _, statement := range []string{
			`DELETE FROM playlist_songs WHERE playlist_id = $1`,
			`DELETE FROM show_playlists WHERE playlist_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, statement, id); err != nil {
				return fmt.Errorf("unlinking playlist %d: %w", id, err)
			}
		}

		var deleted int64
		err := tx.GetContext(ctx, &deleted, `DELETE FROM playlists WHERE id = $1 RETURNING id`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return failure.NotFound("No playlist w/ ID: %d", id)
		}
		if err != nil {
			return fmt.Errorf("removing playlist %d: %w", id, err)
		}
		return nil
	})
}

// OwnedBy reports whether the playlist belongs to a show hosted by the member.
func (ps *Store) OwnedBy(ctx context.Context, id, memberID int64) (bool, error) {
	var owned bool
	err := ps.db.GetContext(ctx, &owned, `
		SELECT EXISTS (
			SELECT 1 FROM show_playlists
			JOIN shows ON shows.id = show_playlists.show_id
			WHERE show_playlists.playlist_id = $1 AND shows.dj_id = $2)`, id, memberID)
	if err != nil {
		return false, fmt.Errorf("checking owner of playlist %d: %w", id, err)
	}
	return owned, nil
}

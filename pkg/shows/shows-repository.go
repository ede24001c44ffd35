package shows

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
	Create(ctx context.Context, data NewShowData) (Show, error)
	GetAll(ctx context.Context, day *int) ([]Show, error)
	Get(ctx context.Context, id int64) (Details, error)
	Update(ctx context.Context, id int64, data UpdateData) (Show, error)
	Remove(ctx context.Context, id int64) error
	HostedBy(ctx context.Context, id, memberID int64) (bool, error)
}

const showColumns = `id, dj_id, dj_name, show_name, day_of_week, show_time, img_url, description`

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db}
}

// Create adds a show, provided its name and its weekly slot are free. A DJ, when given, must exist and host
// no other show.
func (ss *Store) Create(ctx context.Context, data NewShowData) (show Show, err error) {
	if data.DayOfWeek == nil {
		return show, failure.BadRequest("Missing dayOfWeek")
	}
	var day = *data.DayOfWeek
	if err := integrity.ValidDay(day); err != nil {
		return show, err
	}

	err = storage.Transact(ctx, ss.db, func(tx *sqlx.Tx) error {
		if err := integrity.ShowNameFree(ctx, tx, data.ShowName, 0); err != nil {
			return err
		}
		if err := integrity.SlotFree(ctx, tx, day, data.ShowTime, 0); err != nil {
			return err
		}
		if data.DJID != nil {
			if err := integrity.MemberExists(ctx, tx, *data.DJID); err != nil {
				return err
			}
			if err := integrity.HostsNoShow(ctx, tx, *data.DJID, 0); err != nil {
				return err
			}
		}

		return tx.GetContext(ctx, &show, `
			INSERT INTO shows (dj_id, dj_name, show_name, day_of_week, show_time, img_url, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+showColumns,
			data.DJID, data.DJName, data.ShowName, day, data.ShowTime, data.ImgURL, data.Description)
	})
	if err != nil {
		return Show{}, fmt.Errorf("creating show %q: %w", data.ShowName, err)
	}
	return show, nil
}

// GetAll lists shows by day, latest first within a day. A nil day lists the whole week.
func (ss *Store) GetAll(ctx context.Context, day *int) ([]Show, error) {
	var (
		all   = make([]Show, 0)
		query = `SELECT ` + showColumns + ` FROM shows`
		args  []any
	)
	if day != nil {
		if err := integrity.ValidDay(*day); err != nil {
			return nil, err
		}
		query += ` WHERE day_of_week = $1`
		args = append(args, *day)
	}
	query += ` ORDER BY day_of_week, show_time DESC`

	if err := ss.db.SelectContext(ctx, &all, query, args...); err != nil {
		return nil, fmt.Errorf("listing shows: %w", err)
	}
	return all, nil
}

func (ss *Store) Get(ctx context.Context, id int64) (Details, error) {
	var details = Details{Playlists: make([]PlaylistSummary, 0)}
	err := ss.db.GetContext(ctx, &details.Show, `SELECT `+showColumns+` FROM shows WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return details, failure.NotFound("No show with ID: %d", id)
	}
	if err != nil {
		return details, fmt.Errorf("getting show %d: %w", id, err)
	}

	err = ss.db.SelectContext(ctx, &details.Playlists, `
		SELECT playlists.id, playlists.date, playlists.description
		FROM playlists
		JOIN show_playlists ON show_playlists.playlist_id = playlists.id
		WHERE show_playlists.show_id = $1
		ORDER BY playlists.date DESC`, id)
	if err != nil {
		return details, fmt.Errorf("getting playlists of show %d: %w", id, err)
	}
	return details, nil
}

// Update partially updates the show. A show keeps its own slot and name without clashing with itself, but
// can't take those of another show.
func (ss *Store) Update(ctx context.Context, id int64, data UpdateData) (show Show, err error) {
	var patch = data.patch()
	assignments, err := sqlpatch.Build(patch, updateColumns)
	if err != nil {
		return show, err
	}

	err = storage.Transact(ctx, ss.db, func(tx *sqlx.Tx) error {
		var current Show
		err := tx.GetContext(ctx, &current, `SELECT `+showColumns+` FROM shows WHERE id = $1`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return failure.NotFound("No show with ID: %d", id)
		}
		if err != nil {
			return err
		}

		if data.ShowName != nil {
			if err := integrity.ShowNameFree(ctx, tx, *data.ShowName, id); err != nil {
				return err
			}
		}

		// the slot is checked once merged with the fields left untouched
		if data.DayOfWeek != nil || data.ShowTime != nil {
			var day, showTime = current.DayOfWeek, current.ShowTime
			if data.DayOfWeek != nil {
				day = *data.DayOfWeek
			}
			if data.ShowTime != nil {
				showTime = *data.ShowTime
			}
			if err := integrity.ValidDay(day); err != nil {
				return err
			}
			if err := integrity.SlotFree(ctx, tx, day, showTime, id); err != nil {
				return err
			}
		}

		if data.DJID != nil {
			if err := integrity.MemberExists(ctx, tx, *data.DJID); err != nil {
				return err
			}
			if err := integrity.HostsNoShow(ctx, tx, *data.DJID, id); err != nil {
				return err
			}
		}

		return tx.GetContext(ctx, &show,
			`UPDATE shows SET `+assignments.SetCols+` WHERE id = `+assignments.Next()+` RETURNING `+showColumns,
			assignments.Args(id)...)
	})
	if err != nil {
		return Show{}, fmt.Errorf("updating show %d: %w", id, err)
	}
	return show, nil
}

// Remove deletes the show along with its playlists and the favorites referencing it.
func (ss *Store) Remove(ctx context.Context, id int64) error {
	return storage.Transact(ctx, ss.db, func(tx *sqlx.Tx) error {
		var playlists []int64
		if err := tx.SelectContext(ctx, &playlists,
			`SELECT playlist_id FROM show_playlists WHERE show_id = $1`, id); err != nil {
			return fmt.Errorf("listing playlists of show %d: %w", id, err)
		}

		for _, playlistID := range playlists {
			for _, statement := range []string{
				`DELETE FROM playlist_songs WHERE playlist_id = $1`,
				`DELETE FROM show_playlists WHERE playlist_id = $1`,
				`DELETE FROM playlists WHERE id = $1`,
			} {
				if _, err := tx.ExecContext(ctx, statement, playlistID); err != nil {
					return fmt.Errorf("removing playlist %d of show %d: %w", playlistID, id, err)
				}
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM member_favorites WHERE show_id = $1`, id); err != nil {
			return fmt.Errorf("removing favorites of show %d: %w", id, err)
		}

		var deleted int64
		err := tx.GetContext(ctx, &deleted, `DELETE FROM shows WHERE id = $1 RETURNING id`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return failure.NotFound("No show w/ ID: %d", id)
		}
		if err != nil {
			return fmt.Errorf("removing show %d: %w", id, err)
		}
		return nil
	})
}

// HostedBy reports whether the member is the show's DJ.
func (ss *Store) HostedBy(ctx context.Context, id, memberID int64) (bool, error) {
	var hosted bool
	err := ss.db.GetContext(ctx, &hosted,
		`SELECT EXISTS (SELECT 1 FROM shows WHERE id = $1 AND dj_id = $2)`, id, memberID)
	if err != nil {
		return false, fmt.Errorf("checking host of show %d: %w", id, err)
	}
	return hosted, nil
}

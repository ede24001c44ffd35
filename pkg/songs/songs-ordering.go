package songs

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// nextSongOrder returns the position following the last entry of the playlist, starting from 1. Positions
// freed by removals are never reused, so later entries keep their place.
//
// The read must share the transaction of the insert it numbers: the unique (playlist, order) index turns a
// concurrent append into a conflict, and the retried transaction reads the new maximum.
func nextSongOrder(ctx context.Context, q sqlx.QueryerContext, playlistID int64) (int, error) {
	var next int
	err := sqlx.GetContext(ctx, q, &next,
		`SELECT COALESCE(MAX(song_order), 0) + 1 FROM playlist_songs WHERE playlist_id = $1`, playlistID)
	if err != nil {
		return 0, fmt.Errorf("numbering entry of playlist %d: %w", playlistID, err)
	}
	return next, nil
}

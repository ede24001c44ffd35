package songs

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/silktrader/onair/pkg/failure"
	"github.com/silktrader/onair/pkg/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore seeds two playlists (1 and 2) of a show.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	ss := NewStore(storagetest.Open(t))
	for _, statement := range []string{
		`INSERT INTO members (id, username, password, is_dj) VALUES (1, 'dj', 'x', TRUE)`,
		`INSERT INTO shows (id, dj_id, show_name, day_of_week, show_time) VALUES (1, 1, 'Night Owls', 1, '22:00')`,
		`INSERT INTO playlists (id, date) VALUES (1, '2022-05-01'), (2, '2022-05-08')`,
		`INSERT INTO show_playlists (show_id, playlist_id) VALUES (1, 1), (1, 2)`,
	} {
		_, err := ss.db.Exec(statement)
		require.NoError(t, err)
	}
	return ss
}

func orders(t *testing.T, ss *Store, playlistID int64) []int {
	t.Helper()
	var found []int
	require.NoError(t, ss.db.Select(&found,
		`SELECT song_order FROM playlist_songs WHERE playlist_id = $1 ORDER BY song_order`, playlistID))
	return found
}

func TestCreateReusesKnownSongs(t *testing.T) {
	ss := newTestStore(t)
	ctx := context.Background()
	var song = NewSongData{Artist: "Nina Simone", Title: "Sinnerman", Album: "Pastel Blues"}

	song.PlaylistID = 1
	first, err := ss.Create(ctx, song)
	require.NoError(t, err)
	song.PlaylistID = 2
	second, err := ss.Create(ctx, song)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, Entry{PlaylistID: 1, SongID: first.ID, SongOrder: 1}, first.PlaylistInsertedInto)
	assert.Equal(t, Entry{PlaylistID: 2, SongID: first.ID, SongOrder: 1}, second.PlaylistInsertedInto)

	var count int
	require.NoError(t, ss.db.Get(&count, `SELECT COUNT(*) FROM songs`))
	assert.Equal(t, 1, count)
}

func TestCreateNumbersEntries(t *testing.T) {
	ss := newTestStore(t)
	ctx := context.Background()

	var added []Added
	for _, title := range []string{"One", "Two", "Three"} {
		entry, err := ss.Create(ctx, NewSongData{PlaylistID: 1, Artist: "A", Title: title})
		require.NoError(t, err)
		added = append(added, entry)
	}
	assert.Equal(t, []int{1, 2, 3}, orders(t, ss, 1))

	require.NoError(t, ss.Remove(ctx, RemoveData{PlaylistID: 1, SongID: added[1].ID, SongOrder: 2}))
	assert.Equal(t, []int{1, 3}, orders(t, ss, 1), "removals leave gaps")

	entry, err := ss.Create(ctx, NewSongData{PlaylistID: 1, Artist: "A", Title: "Four"})
	require.NoError(t, err)
	assert.Equal(t, 4, entry.PlaylistInsertedInto.SongOrder)

	// the same song may be listed twice
	entry, err = ss.Create(ctx, NewSongData{PlaylistID: 1, Artist: "A", Title: "One"})
	require.NoError(t, err)
	assert.Equal(t, added[0].ID, entry.ID)
	assert.Equal(t, 5, entry.PlaylistInsertedInto.SongOrder)
}

func TestCreateConcurrentAppends(t *testing.T) {
	ss := newTestStore(t)
	ctx := context.Background()
	const appends = 8

	var (
		wg   sync.WaitGroup
		errs = make(chan error, appends)
	)
	for i := 0; i < appends; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ss.Create(ctx, NewSongData{PlaylistID: 1, Artist: "A", Title: string(rune('a' + i))})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	found := orders(t, ss, 1)
	sort.Ints(found)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, found)
}

func TestCreateRequiresPlaylist(t *testing.T) {
	ss := newTestStore(t)

	_, err := ss.Create(context.Background(), NewSongData{PlaylistID: 99, Artist: "A", Title: "T"})
	assert.ErrorIs(t, err, failure.ErrBadRequest)

	var count int
	require.NoError(t, ss.db.Get(&count, `SELECT COUNT(*) FROM songs`))
	assert.Zero(t, count)
}

func TestUpdateReportsPlaylists(t *testing.T) {
	ss := newTestStore(t)
	ctx := context.Background()

	song, err := ss.Create(ctx, NewSongData{PlaylistID: 2, Artist: "Nina Simone", Title: "Sinerman"})
	require.NoError(t, err)
	_, err = ss.Create(ctx, NewSongData{PlaylistID: 1, Artist: "Nina Simone", Title: "Sinerman"})
	require.NoError(t, err)
	other, err := ss.Create(ctx, NewSongData{PlaylistID: 1, Artist: "Nina Simone", Title: "Feeling Good"})
	require.NoError(t, err)

	var title, link = "Sinnerman", "https://example.com/pastel-blues"
	updated, err := ss.Update(ctx, song.ID, UpdateData{Title: &title, AlbumLink: &link})
	require.NoError(t, err)
	assert.Equal(t, "Sinnerman", updated.Title)
	assert.Equal(t, link, updated.AlbumLink)
	assert.Equal(t, []int64{1, 2}, updated.Playlists)

	stored, err := ss.Get(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Song, stored)

	_, err = ss.Update(ctx, other.ID, UpdateData{Title: &title})
	assert.ErrorIs(t, err, failure.ErrBadRequest, "songs can't take another song's identity")

	_, err = ss.Update(ctx, 999, UpdateData{Title: &title})
	assert.ErrorIs(t, err, failure.ErrNotFound)

	_, err = ss.Update(ctx, song.ID, UpdateData{})
	assert.ErrorIs(t, err, failure.ErrBadRequest)
}

func TestRemove(t *testing.T) {
	ss := newTestStore(t)
	ctx := context.Background()

	added, err := ss.Create(ctx, NewSongData{PlaylistID: 1, Artist: "A", Title: "T"})
	require.NoError(t, err)

	assert.ErrorIs(t, ss.Remove(ctx, RemoveData{PlaylistID: 1, SongID: added.ID, SongOrder: 2}), failure.ErrNotFound)
	require.NoError(t, ss.Remove(ctx, RemoveData{PlaylistID: 1, SongID: added.ID, SongOrder: 1}))
	assert.ErrorIs(t, ss.Remove(ctx, RemoveData{PlaylistID: 1, SongID: added.ID, SongOrder: 1}), failure.ErrNotFound)

	_, err = ss.Get(ctx, added.ID)
	assert.NoError(t, err, "the song outlives its entries")
}

func TestNextSongOrder(t *testing.T) {
	ss := newTestStore(t)
	ctx := context.Background()

	next, err := nextSongOrder(ctx, ss.db, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	_, err = ss.db.Exec(`INSERT INTO songs (id, artist, title) VALUES (1, 'A', 'T')`)
	require.NoError(t, err)
	_, err = ss.db.Exec(`INSERT INTO playlist_songs (playlist_id, song_id, song_order) VALUES (1, 1, 7)`)
	require.NoError(t, err)

	next, err = nextSongOrder(ctx, ss.db, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, next)

	next, err = nextSongOrder(ctx, ss.db, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, next, "playlists are numbered independently")
}

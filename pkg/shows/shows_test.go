package shows

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/silktrader/onair/pkg/auth"
	"github.com/silktrader/onair/pkg/failure"
	"github.com/silktrader/onair/pkg/rest"
	"github.com/silktrader/onair/pkg/storage/storagetest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) *int {
	return &d
}

func text(s string) *string {
	return &s
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ss := NewStore(storagetest.Open(t))
	_, err := ss.db.Exec(`INSERT INTO members (id, username, password, is_dj) VALUES (1, 'dj', 'x', TRUE), (2, 'other', 'x', TRUE)`)
	require.NoError(t, err)
	return ss
}

func member(id int64) *int64 {
	return &id
}

// addShow creates a show hosted by dj, or by nobody when dj is nil.
func addShow(t *testing.T, ss *Store, dj *int64, name string, d int, showTime string) Show {
	t.Helper()
	show, err := ss.Create(context.Background(), NewShowData{
		DJID:      dj,
		DJName:    "Dee",
		ShowName:  name,
		DayOfWeek: &d,
		ShowTime:  showTime,
	})
	require.NoError(t, err)
	return show
}

func TestCreate(t *testing.T) {
	ss := newTestStore(t)
	ctx := context.Background()

	show := addShow(t, ss, member(1), "Night Owls", 1, "22:00")
	assert.NotZero(t, show.ID)
	require.NotNil(t, show.DJID)
	assert.EqualValues(t, 1, *show.DJID)

	_, err := ss.Create(ctx, NewShowData{ShowName: "Night Owls", DayOfWeek: day(2), ShowTime: "10:00"})
	assert.ErrorIs(t, err, failure.ErrBadRequest, "duplicate name")

	_, err = ss.Create(ctx, NewShowData{ShowName: "Early Birds", DayOfWeek: day(1), ShowTime: "22:00"})
	assert.ErrorIs(t, err, failure.ErrBadRequest, "duplicate slot")
	message, _ := failure.Message(err)
	assert.Equal(t, "Duplicate date/time: 1/22:00", message)

	_, err = ss.Create(ctx, NewShowData{ShowName: "Early Birds", DayOfWeek: day(7), ShowTime: "06:00"})
	assert.ErrorIs(t, err, failure.ErrBadRequest, "invalid day")

	_, err = ss.Create(ctx, NewShowData{DJID: member(99), ShowName: "Early Birds", DayOfWeek: day(2), ShowTime: "06:00"})
	assert.ErrorIs(t, err, failure.ErrBadRequest, "missing DJ")

	birds, err := ss.Create(ctx, NewShowData{ShowName: "Early Birds", DayOfWeek: day(1), ShowTime: "06:00"})
	require.NoError(t, err, "a free name and slot are accepted after the rejections")
	assert.Equal(t, "Early Birds", birds.ShowName)
	assert.Nil(t, birds.DJID)
}

func TestDJsHostOneShow(t *testing.T) {
	ss := newTestStore(t)
	ctx := context.Background()
	first := addShow(t, ss, member(1), "First", 1, "10:00")
	second := addShow(t, ss, member(2), "Second", 2, "11:00")

	_, err := ss.Create(ctx, NewShowData{DJID: member(1), ShowName: "Third", DayOfWeek: day(3), ShowTime: "12:00"})
	assert.ErrorIs(t, err, failure.ErrBadRequest)

	_, err = ss.Update(ctx, second.ID, UpdateData{DJID: member(1)})
	assert.ErrorIs(t, err, failure.ErrBadRequest, "DJ 1 already hosts another show")

	_, err = ss.Update(ctx, first.ID, UpdateData{DJID: member(1)})
	assert.NoError(t, err, "reassigning a show to its own host")

	_, err = ss.Update(ctx, first.ID, UpdateData{DJID: member(3)})
	assert.ErrorIs(t, err, failure.ErrBadRequest, "missing DJ")

	// once freed, a DJ may take over another show
	_, err = ss.db.Exec(`UPDATE shows SET dj_id = NULL WHERE id = $1`, first.ID)
	require.NoError(t, err)
	updated, err := ss.Update(ctx, second.ID, UpdateData{DJID: member(1)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, *updated.DJID)

	var hosted int
	require.NoError(t, ss.db.Get(&hosted, `SELECT COUNT(*) FROM shows WHERE dj_id = 1`))
	assert.Equal(t, 1, hosted)
}

func TestGetAll(t *testing.T) {
	ss := newTestStore(t)
	ctx := context.Background()

	all, err := ss.GetAll(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, all)

	addShow(t, ss, nil, "Late", 1, "22:00")
	addShow(t, ss, nil, "Early", 1, "06:00")
	addShow(t, ss, nil, "Sunday", 0, "12:00")

	all, err = ss.GetAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Sunday", "Late", "Early"}, []string{all[0].ShowName, all[1].ShowName, all[2].ShowName})

	monday, err := ss.GetAll(ctx, day(1))
	require.NoError(t, err)
	assert.Len(t, monday, 2)

	_, err = ss.GetAll(ctx, day(9))
	assert.ErrorIs(t, err, failure.ErrBadRequest)
}

func TestGetAttachesPlaylists(t *testing.T) {
	ss := newTestStore(t)
	ctx := context.Background()
	show := addShow(t, ss, member(1), "Night Owls", 1, "22:00")

	for _, statement := range []string{
		`INSERT INTO playlists (id, date) VALUES (1, '2022-05-01'), (2, '2022-05-08')`,
		`INSERT INTO show_playlists (show_id, playlist_id) VALUES (1, 1), (1, 2)`,
	} {
		_, err := ss.db.Exec(statement)
		require.NoError(t, err)
	}

	details, err := ss.Get(ctx, show.ID)
	require.NoError(t, err)
	require.Len(t, details.Playlists, 2)
	assert.Equal(t, "2022-05-08", details.Playlists[0].Date, "most recent first")

	_, err = ss.Get(ctx, 42)
	assert.ErrorIs(t, err, failure.ErrNotFound)
}

func TestUpdateSlots(t *testing.T) {
	ss := newTestStore(t)
	ctx := context.Background()
	owls := addShow(t, ss, member(1), "Night Owls", 1, "22:00")
	addShow(t, ss, nil, "Early Birds", 2, "06:00")

	updated, err := ss.Update(ctx, owls.ID, UpdateData{DayOfWeek: day(1), ShowTime: text("22:00"), Description: text("jazz")})
	require.NoError(t, err, "a show keeps its own slot")
	assert.Equal(t, "jazz", updated.Description)

	_, err = ss.Update(ctx, owls.ID, UpdateData{DayOfWeek: day(2), ShowTime: text("06:00")})
	assert.ErrorIs(t, err, failure.ErrBadRequest)

	// the time alone clashes once merged with the stored day
	_, err = ss.Update(ctx, owls.ID, UpdateData{DayOfWeek: day(2)})
	require.NoError(t, err)
	_, err = ss.Update(ctx, owls.ID, UpdateData{ShowTime: text("06:00")})
	assert.ErrorIs(t, err, failure.ErrBadRequest)

	_, err = ss.Update(ctx, owls.ID, UpdateData{ShowName: text("Early Birds")})
	assert.ErrorIs(t, err, failure.ErrBadRequest)

	_, err = ss.Update(ctx, owls.ID, UpdateData{})
	assert.ErrorIs(t, err, failure.ErrBadRequest)

	_, err = ss.Update(ctx, 42, UpdateData{Description: text("gone")})
	assert.ErrorIs(t, err, failure.ErrNotFound)
}

func TestRemoveCascades(t *testing.T) {
	ss := newTestStore(t)
	ctx := context.Background()
	show := addShow(t, ss, member(1), "Night Owls", 1, "22:00")

	for _, statement := range []string{
		`INSERT INTO playlists (id, date) VALUES (1, '2022-05-01')`,
		`INSERT INTO show_playlists (show_id, playlist_id) VALUES (1, 1)`,
		`INSERT INTO songs (id, artist, title) VALUES (1, 'A', 'T')`,
		`INSERT INTO playlist_songs (playlist_id, song_id, song_order) VALUES (1, 1, 1)`,
		`INSERT INTO member_favorites (member_id, show_id, added) VALUES (2, 1, '2022-05-01T00:00:00Z')`,
	} {
		_, err := ss.db.Exec(statement)
		require.NoError(t, err)
	}

	require.NoError(t, ss.Remove(ctx, show.ID))

	for _, table := range []string{"shows", "playlists", "show_playlists", "playlist_songs", "member_favorites"} {
		var count int
		require.NoError(t, ss.db.Get(&count, `SELECT COUNT(*) FROM `+table))
		assert.Zero(t, count, table)
	}

	var songs int
	require.NoError(t, ss.db.Get(&songs, `SELECT COUNT(*) FROM songs`))
	assert.Equal(t, 1, songs, "songs outlive playlists")

	assert.ErrorIs(t, ss.Remove(ctx, show.ID), failure.ErrNotFound)
}

// roster maps member IDs to the roles they currently hold.
type roster map[int64]auth.Roles

func (r roster) MemberRoles(_ context.Context, id int64) (auth.Roles, bool) {
	roles, found := r[id]
	return roles, found
}

func TestOnlyHostsEditShows(t *testing.T) {
	ss := newTestStore(t)
	show := addShow(t, ss, member(1), "Night Owls", 1, "22:00")

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	issuer, err := auth.NewIssuer("a-test-secret-of-sufficient-length", time.Hour)
	require.NoError(t, err)
	engine, err := rest.New(rest.Config{Logger: logger})
	require.NoError(t, err)
	engine.Use(auth.Authenticate(issuer, roster{1: {IsDJ: true}, 2: {IsDJ: true}, 3: {IsAdmin: true}, 4: {}}))
	RegisterHandlers(engine, ss)

	patch := func(identity auth.Identity, body string) int {
		token, err := issuer.Issue(identity)
		require.NoError(t, err)
		request := httptest.NewRequest(http.MethodPatch, "/shows/1", strings.NewReader(body))
		request.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()
		engine.Handler().ServeHTTP(recorder, request)
		return recorder.Code
	}

	require.EqualValues(t, 1, show.ID)
	assert.Equal(t, http.StatusOK, patch(auth.Identity{MemberID: 1, Username: "dj", IsDJ: true}, `{"description": "jazz"}`))
	assert.Equal(t, http.StatusForbidden, patch(auth.Identity{MemberID: 2, Username: "other", IsDJ: true}, `{"description": "rock"}`))
	assert.Equal(t, http.StatusForbidden, patch(auth.Identity{MemberID: 1, Username: "dj", IsDJ: true}, `{"djID": 2}`))
	assert.Equal(t, http.StatusOK, patch(auth.Identity{MemberID: 3, Username: "admin", IsAdmin: true}, `{"djID": 2}`))
	assert.Equal(t, http.StatusUnauthorized, patch(auth.Identity{MemberID: 4, Username: "listener"}, `{"description": "pop"}`))

	recorder := httptest.NewRecorder()
	engine.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/shows?dayOfWeek=monday", nil))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

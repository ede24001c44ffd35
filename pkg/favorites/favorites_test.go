package favorites

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

// newTestStore seeds two members (1 and 2) and two shows (10 and 11).
func newTestStore(t *testing.T) *Store {
	t.Helper()
	fs := NewStore(storagetest.Open(t))
	for _, statement := range []string{
		`INSERT INTO members (id, username, password) VALUES (1, 'listener', 'x'), (2, 'other', 'x')`,
		`INSERT INTO shows (id, show_name, day_of_week, show_time) VALUES (10, 'Night Owls', 1, '22:00'), (11, 'Early Birds', 2, '06:00')`,
	} {
		_, err := fs.db.Exec(statement)
		require.NoError(t, err)
	}
	return fs
}

func TestCreate(t *testing.T) {
	fs := newTestStore(t)
	ctx := context.Background()

	favorite, err := fs.Create(ctx, Data{MemberID: 1, ShowID: 10})
	require.NoError(t, err)
	assert.NotZero(t, favorite.ID)
	assert.EqualValues(t, 1, favorite.MemberID)
	assert.EqualValues(t, 10, favorite.ShowID)
	added, valid := favorite.Added.Time()
	assert.True(t, valid)
	assert.WithinDuration(t, time.Now(), added, time.Minute)

	_, err = fs.Create(ctx, Data{MemberID: 1, ShowID: 10})
	assert.ErrorIs(t, err, failure.ErrBadRequest, "duplicate")

	_, err = fs.Create(ctx, Data{MemberID: 3, ShowID: 10})
	assert.ErrorIs(t, err, failure.ErrBadRequest, "missing member")

	_, err = fs.Create(ctx, Data{MemberID: 1, ShowID: 12})
	assert.ErrorIs(t, err, failure.ErrBadRequest, "missing show")
}

func TestGetAndRemove(t *testing.T) {
	fs := newTestStore(t)
	ctx := context.Background()

	none, err := fs.Get(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	for _, showID := range []int64{10, 11} {
		_, err := fs.Create(ctx, Data{MemberID: 1, ShowID: showID})
		require.NoError(t, err)
	}
	_, err = fs.Create(ctx, Data{MemberID: 2, ShowID: 10})
	require.NoError(t, err)

	favorites, err := fs.Get(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []FavoriteShow{{ShowID: 10}, {ShowID: 11}}, favorites)

	require.NoError(t, fs.Remove(ctx, Data{MemberID: 1, ShowID: 10}))
	assert.ErrorIs(t, fs.Remove(ctx, Data{MemberID: 1, ShowID: 10}), failure.ErrNotFound)

	favorites, err = fs.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []FavoriteShow{{ShowID: 11}}, favorites)

	others, err := fs.Get(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, others, 1, "other members' favorites are untouched")
}

type listeners struct{}

func (listeners) MemberRoles(context.Context, int64) (auth.Roles, bool) {
	return auth.Roles{}, true
}

func TestMembersFavoriteForThemselves(t *testing.T) {
	fs := newTestStore(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	issuer, err := auth.NewIssuer("a-test-secret-of-sufficient-length", time.Hour)
	require.NoError(t, err)
	engine, err := rest.New(rest.Config{Logger: logger})
	require.NoError(t, err)
	engine.Use(auth.Authenticate(issuer, listeners{}))
	RegisterHandlers(engine, fs)

	token, err := issuer.Issue(auth.Identity{MemberID: 1, Username: "listener"})
	require.NoError(t, err)

	post := func(body string) int {
		request := httptest.NewRequest(http.MethodPost, "/favorites", strings.NewReader(body))
		request.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()
		engine.Handler().ServeHTTP(recorder, request)
		return recorder.Code
	}

	assert.Equal(t, http.StatusCreated, post(`{"memberID": 1, "showID": 10}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"memberID": 1, "showID": 10}`))
	assert.Equal(t, http.StatusUnauthorized, post(`{"memberID": 2, "showID": 10}`))

	recorder := httptest.NewRecorder()
	engine.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/favorites/1", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"memberFavorites": [{"showID": 10}]}`, recorder.Body.String())
}

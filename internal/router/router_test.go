package router

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/venue-directory/internal/config"
	"github.com/iliyamo/venue-directory/internal/database"
	"github.com/iliyamo/venue-directory/internal/handler"
	"github.com/iliyamo/venue-directory/internal/model"
	"github.com/iliyamo/venue-directory/internal/repository"
	"github.com/iliyamo/venue-directory/internal/service"
	"github.com/iliyamo/venue-directory/internal/view"
)

var testNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

type testApp struct {
	e  *echo.Echo
	db *sql.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWith(t, Middleware{})
}

func newTestAppWith(t *testing.T, m Middleware) *testApp {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, config.DriverSQLite))

	dir := service.NewDirectory(repository.NewVenueRepo(db), repository.NewArtistRepo(db), repository.NewShowRepo(db), nil)
	dir.Now = func() time.Time { return testNow }

	r, err := view.New()
	require.NoError(t, err)
	e := echo.New()
	handler.Configure(e, r)
	RegisterRoutes(e, db)
	RegisterDirectory(e, handler.NewDirectoryHandler(dir), m)
	return &testApp{e: e, db: db}
}

func (a *testApp) do(method, target string, form url.Values, accept string) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if accept != "" {
		req.Header.Set(echo.HeaderAccept, accept)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) count(t *testing.T, q string) int {
	t.Helper()
	var n int
	require.NoError(t, a.db.QueryRow(q).Scan(&n))
	return n
}

func venueForm(name, city, state string, genres ...string) url.Values {
	return url.Values{"name": {name}, "city": {city}, "state": {state}, "genres": genres}
}

func (a *testApp) createVenue(t *testing.T, form url.Values) model.Venue {
	t.Helper()
	rec := a.do(http.MethodPost, "/venues/create", form, echo.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var v model.Venue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (a *testApp) createArtist(t *testing.T, name string) model.Artist {
	t.Helper()
	form := url.Values{"name": {name}, "city": {"San Francisco"}, "state": {"CA"}, "seeking_venue": {"y"}}
	rec := a.do(http.MethodPost, "/artists/create", form, echo.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var art model.Artist
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &art))
	return art
}

func (a *testApp) createShow(t *testing.T, artistID, venueID uint64, start time.Time) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{
		"artist_id":  {jsonID(artistID)},
		"venue_id":   {jsonID(venueID)},
		"start_time": {start.Format("2006-01-02 15:04:05")},
	}
	return a.do(http.MethodPost, "/shows/create", form, "")
}

func jsonID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHomeAndListPagesRender(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{"/", "/venues", "/artists", "/shows", "/venues/create", "/artists/create", "/shows/create"} {
		rec := app.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "<html", path)
	}
}

func TestCreateVenueFlowHTML(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(http.MethodPost, "/venues/create", venueForm("The Musical Hop", "San Francisco", "CA", "Jazz", "Blues"), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Venue The Musical Hop was successfully listed!")

	rec = app.do(http.MethodGet, "/venues", nil, "")
	assert.Contains(t, rec.Body.String(), "San Francisco, CA")
	assert.Contains(t, rec.Body.String(), "The Musical Hop")
}

func TestCreateVenueValidation(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(http.MethodPost, "/venues/create", venueForm("", "San Francisco", "California"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "This field is required.")
	assert.Contains(t, rec.Body.String(), "Use the two-letter state code.")
	assert.Zero(t, app.count(t, `SELECT COUNT(*) FROM venues`))
}

func TestVenueDetailJSON(t *testing.T) {
	app := newTestApp(t)
	v := app.createVenue(t, venueForm("The Musical Hop", "San Francisco", "CA", "Jazz", "Blues"))
	a := app.createArtist(t, "Guns N Petals")
	require.Equal(t, http.StatusOK, app.createShow(t, a.ID, v.ID, testNow.Add(-24*time.Hour)).Code)
	require.Equal(t, http.StatusOK, app.createShow(t, a.ID, v.ID, testNow).Code)

	rec := app.do(http.MethodGet, "/venues/"+jsonID(v.ID), nil, echo.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail model.VenueDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.ElementsMatch(t, []string{"Jazz", "Blues"}, detail.Genres)
	assert.Equal(t, 1, detail.PastShowsCount)
	assert.Equal(t, 1, detail.UpcomingShowsCount)
	assert.Equal(t, "2030-06-01 12:00:00", detail.UpcomingShows[0].StartTimeText)
	assert.Equal(t, "Guns N Petals", detail.UpcomingShows[0].ArtistName)

	rec = app.do(http.MethodGet, "/artists/"+jsonID(a.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 Upcoming Show")
	assert.Contains(t, rec.Body.String(), "1 Past Show")
}

func TestDetailNotFound(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{"/venues/999", "/artists/999", "/venues/abc", "/venues/999/edit", "/artists/999/edit"} {
		rec := app.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "Not Found", path)
	}
	rec := app.do(http.MethodGet, "/venues/999", nil, echo.MIMEApplicationJSON)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}

func TestSearch(t *testing.T) {
	app := newTestApp(t)
	hop := app.createVenue(t, venueForm("The Musical Hop", "San Francisco", "CA"))
	app.createVenue(t, venueForm("Park Square Live Music & Coffee", "San Francisco", "CA"))

	rec := app.do(http.MethodPost, "/venues/search", url.Values{"search_term": {"Hop"}}, echo.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	var res model.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, hop.ID, res.Data[0].ID)

	rec = app.do(http.MethodPost, "/venues/search", url.Values{"search_term": {"Music"}}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `Number of search results for "Music": 2`)

	app.createArtist(t, "Guns N Petals")
	rec = app.do(http.MethodPost, "/artists/search", url.Values{"search_term": {"xyz"}}, echo.MIMEApplicationJSON)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 0, res.Count)
}

func TestCreateShowInvalidArtistTakesPrecedence(t *testing.T) {
	app := newTestApp(t)
	v := app.createVenue(t, venueForm("Hall", "San Francisco", "CA"))

	rec := app.createShow(t, 999, v.ID, testNow)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "There is no artist with id 999 in our records")
	assert.NotContains(t, rec.Body.String(), "There is no venue")

	rec = app.createShow(t, 999, 998, testNow)
	assert.Contains(t, rec.Body.String(), "There is no artist with id 999 in our records")
	assert.Zero(t, app.count(t, `SELECT COUNT(*) FROM shows`))

	a := app.createArtist(t, "Band")
	rec = app.createShow(t, a.ID, 998, testNow)
	assert.Contains(t, rec.Body.String(), "There is no venue with id 998 in our records")

	rec = app.do(http.MethodPost, "/shows/create", url.Values{
		"artist_id": {jsonID(a.ID)}, "venue_id": {jsonID(v.ID)}, "start_time": {"tomorrow"},
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "An error occurred. Show could not be listed.")

	rec = app.createShow(t, a.ID, v.ID, testNow)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "The show by Band has been successfully scheduled at the following venue: Hall")

	rec = app.createShow(t, a.ID, v.ID, testNow)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, app.count(t, `SELECT COUNT(*) FROM shows`))

	rec = app.do(http.MethodGet, "/shows", nil, "")
	assert.Contains(t, rec.Body.String(), "playing at")
}

func TestEditVenueReplacesGenres(t *testing.T) {
	app := newTestApp(t)
	v := app.createVenue(t, venueForm("Old", "San Francisco", "CA", "Jazz"))
	path := "/venues/" + jsonID(v.ID) + "/edit"

	rec := app.do(http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Old"`)
	assert.Contains(t, rec.Body.String(), `<option value="Jazz" selected>`)

	form := venueForm("New", "Oakland", "CA", "Rock n Roll")
	form.Set("seeking_talent", "y")
	rec = app.do(http.MethodPost, path, form, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/venues/"+jsonID(v.ID), rec.Header().Get(echo.HeaderLocation))

	req := httptest.NewRequest(http.MethodGet, "/venues/"+jsonID(v.ID), nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	follow := httptest.NewRecorder()
	app.e.ServeHTTP(follow, req)
	assert.Contains(t, follow.Body.String(), "Venue New was successfully updated!")
	assert.Contains(t, follow.Body.String(), "Rock n Roll")
	assert.NotContains(t, follow.Body.String(), `<span class="genre">Jazz</span>`)
	assert.Contains(t, follow.Body.String(), "Currently seeking talent")

	rec = app.do(http.MethodPost, "/venues/999/edit", venueForm("x", "y", "ZZ"), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditArtist(t *testing.T) {
	app := newTestApp(t)
	a := app.createArtist(t, "Band")
	form := url.Values{"name": {"Band 2"}, "city": {"Austin"}, "state": {"tx"}, "genres": {"Folk"}}
	rec := app.do(http.MethodPost, "/artists/"+jsonID(a.ID)+"/edit", form, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.do(http.MethodGet, "/artists/"+jsonID(a.ID)+"/edit", nil, echo.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Artist
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Band 2", got.Name)
	assert.Equal(t, "TX", got.State)
	assert.Equal(t, []string{"Folk"}, got.Genres)
	assert.False(t, got.SeekingVenue)
	assert.Equal(t, model.DefaultImageLink, got.ImageLink)
}

func TestDeleteVenue(t *testing.T) {
	app := newTestApp(t)
	v := app.createVenue(t, venueForm("Doomed", "San Francisco", "CA", "Jazz"))
	a := app.createArtist(t, "Band")
	require.Equal(t, http.StatusOK, app.createShow(t, a.ID, v.ID, testNow).Code)

	rec := app.do(http.MethodDelete, "/venues/"+jsonID(v.ID)+"/delete", nil, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	assert.Zero(t, app.count(t, `SELECT COUNT(*) FROM venues`))
	assert.Zero(t, app.count(t, `SELECT COUNT(*) FROM venue_genres`))
	assert.Zero(t, app.count(t, `SELECT COUNT(*) FROM shows`))

	rec = app.do(http.MethodPost, "/venues/"+jsonID(v.ID)+"/delete", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"errorMessage":"Venue not found."}`, rec.Body.String())
}

func TestPersistenceFaultRendersPage(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.db.Close())

	rec := app.do(http.MethodPost, "/venues/create", venueForm("Hop", "San Francisco", "CA"), "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "An error occurred. Venue Hop could not be listed.")

	rec = app.do(http.MethodGet, "/venues", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodPost, "/venues/1/delete", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "errorMessage")

	rec = app.do(http.MethodGet, "/artists", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")

	rec = app.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// commandRecorder answers every Redis command with a miss and remembers
// which keys were read, so no server is needed.
type commandRecorder struct {
	mu   sync.Mutex
	gets int
}

func (r *commandRecorder) DialHook(next redis.DialHook) redis.DialHook { return next }

func (r *commandRecorder) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		r.mu.Lock()
		if cmd.Name() == "get" {
			r.gets++
		}
		r.mu.Unlock()
		cmd.SetErr(redis.Nil)
		return redis.Nil
	}
}

func (r *commandRecorder) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (r *commandRecorder) reset() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.gets
	r.gets = 0
	return n
}

func TestUpcomingPagesAreNeverCached(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { rdb.Close() })
	rec := &commandRecorder{}
	rdb.AddHook(rec)

	app := newTestAppWith(t, Middleware{
		Cache: config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, TTL: time.Minute, Prefix: "pages"},
		Redis: rdb,
	})
	v := app.createVenue(t, venueForm("The Musical Hop", "San Francisco", "CA", "Jazz"))
	a := app.createArtist(t, "Guns N Petals")
	require.Equal(t, http.StatusOK, app.createShow(t, a.ID, v.ID, testNow.Add(time.Hour)).Code)
	rec.reset()

	for _, path := range []string{"/venues", "/venues/" + jsonID(v.ID), "/artists/" + jsonID(a.ID)} {
		resp := app.do(http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, resp.Code, path)
		assert.Empty(t, resp.Header().Get("X-Cache"), path)
		assert.Zero(t, rec.reset(), path)
	}
	for _, path := range []string{"/artists", "/shows"} {
		resp := app.do(http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, resp.Code, path)
		assert.Equal(t, "MISS", resp.Header().Get("X-Cache"), path)
		assert.Equal(t, 1, rec.reset(), path)
	}
}

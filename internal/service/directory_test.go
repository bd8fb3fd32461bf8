package service

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/venue-directory/internal/config"
	"github.com/iliyamo/venue-directory/internal/database"
	"github.com/iliyamo/venue-directory/internal/model"
	"github.com/iliyamo/venue-directory/internal/queue"
	"github.com/iliyamo/venue-directory/internal/repository"
)

var fixedNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ActivityEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ActivityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

func newTestDirectory(t *testing.T) (*Directory, *sql.DB, *recordingPublisher) {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, config.DriverSQLite))

	pub := &recordingPublisher{}
	d := NewDirectory(repository.NewVenueRepo(db), repository.NewArtistRepo(db), repository.NewShowRepo(db), pub)
	d.Now = func() time.Time { return fixedNow }
	return d, db, pub
}

func mustVenue(t *testing.T, d *Directory, name, city, state string, genres ...string) *model.Venue {
	t.Helper()
	v := &model.Venue{Name: name, City: city, State: state, Genres: genres}
	require.NoError(t, d.CreateVenue(context.Background(), v))
	return v
}

func mustArtist(t *testing.T, d *Directory, name string) *model.Artist {
	t.Helper()
	a := &model.Artist{Name: name, City: "San Francisco", State: "CA"}
	require.NoError(t, d.CreateArtist(context.Background(), a))
	return a
}

func mustShow(t *testing.T, d *Directory, a *model.Artist, v *model.Venue, start time.Time) {
	t.Helper()
	_, err := d.CreateShow(context.Background(), ShowRequest{
		ArtistID:  idString(a.ID),
		VenueID:   idString(v.ID),
		StartTime: start.Format("2006-01-02 15:04:05"),
	})
	require.NoError(t, err)
}

func idString(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func TestAreasGroupsByExactCityState(t *testing.T) {
	d, _, _ := newTestDirectory(t)
	hop := mustVenue(t, d, "The Musical Hop", "San Francisco", "CA")
	park := mustVenue(t, d, "Park Square Live Music & Coffee", "San Francisco", "CA")
	dueling := mustVenue(t, d, "The Dueling Pianos Bar", "New York", "NY")
	lower := mustVenue(t, d, "Lowercase Hall", "san francisco", "CA")
	a := mustArtist(t, d, "Guns N Petals")
	mustShow(t, d, a, hop, fixedNow.Add(24*time.Hour))
	mustShow(t, d, a, hop, fixedNow)
	mustShow(t, d, a, park, fixedNow.Add(-time.Hour))

	groups := d.Areas(context.Background())
	require.Len(t, groups, 3)

	assert.Equal(t, "New York", groups[0].City)
	assert.Equal(t, []model.VenueSummary{{ID: dueling.ID, Name: "The Dueling Pianos Bar"}}, groups[0].Venues)

	assert.Equal(t, "San Francisco", groups[1].City)
	assert.Equal(t, []model.VenueSummary{
		{ID: hop.ID, Name: "The Musical Hop", NumUpcomingShows: 2},
		{ID: park.ID, Name: "Park Square Live Music & Coffee", NumUpcomingShows: 0},
	}, groups[1].Venues)

	assert.Equal(t, "san francisco", groups[2].City)
	assert.Equal(t, lower.ID, groups[2].Venues[0].ID)
}

func TestAreasDegradesToEmpty(t *testing.T) {
	d, db, _ := newTestDirectory(t)
	mustVenue(t, d, "Hall", "San Francisco", "CA")
	require.NoError(t, db.Close())

	groups := d.Areas(context.Background())
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newTestDirectory(t)
	hop := mustVenue(t, d, "The Musical Hop", "San Francisco", "CA")
	park := mustVenue(t, d, "Park Square Live Music & Coffee", "San Francisco", "CA")
	a := mustArtist(t, d, "Guns N Petals")
	mustArtist(t, d, "Matt Quevedo")
	mustShow(t, d, a, hop, fixedNow.Add(time.Hour))

	res, err := d.SearchVenues(ctx, "Hop")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, []model.SearchHit{{ID: hop.ID, Name: "The Musical Hop", NumUpcomingShows: 1}}, res.Data)

	res, err = d.SearchVenues(ctx, "Music")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, hop.ID, res.Data[0].ID)
	assert.Equal(t, park.ID, res.Data[1].ID)

	// Surrounding spaces are part of the term.
	res, err = d.SearchVenues(ctx, "Music ")
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, park.ID, res.Data[0].ID)

	res, err = d.SearchVenues(ctx, "Hop ")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)

	res, err = d.SearchVenues(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)

	res, err = d.SearchArtists(ctx, "petals")
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, 1, res.Data[0].NumUpcomingShows)

	res, err = d.SearchArtists(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.NotNil(t, res.Data)
}

func TestVenueDetailPartition(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newTestDirectory(t)
	v := mustVenue(t, d, "The Musical Hop", "San Francisco", "CA", "Jazz", "Blues")
	a := mustArtist(t, d, "Guns N Petals")
	mustShow(t, d, a, v, fixedNow.Add(-time.Second))
	mustShow(t, d, a, v, fixedNow)
	mustShow(t, d, a, v, fixedNow.Add(48*time.Hour))

	detail, err := d.VenueDetail(ctx, v.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Jazz", "Blues"}, detail.Genres)
	assert.Equal(t, 1, detail.PastShowsCount)
	assert.Equal(t, 2, detail.UpcomingShowsCount)
	assert.Equal(t, fixedNow.Add(-time.Second), detail.PastShows[0].StartTime)
	assert.Equal(t, fixedNow, detail.UpcomingShows[0].StartTime)
	assert.Equal(t, "Guns N Petals", detail.UpcomingShows[0].ArtistName)
	assert.Equal(t, model.DefaultImageLink, detail.UpcomingShows[0].ArtistImageLink)

	ad, err := d.ArtistDetail(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, ad.PastShowsCount)
	assert.Equal(t, 2, ad.UpcomingShowsCount)
	assert.Equal(t, "The Musical Hop", ad.PastShows[0].VenueName)
}

func TestDetailNotFound(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newTestDirectory(t)

	_, err := d.VenueDetail(ctx, 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = d.ArtistDetail(ctx, 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPartitionSkipsDangling(t *testing.T) {
	listings := []model.ShowListing{
		{ShowID: 1, StartTime: fixedNow.Add(-time.Minute)},
		{ShowID: 2, StartTime: fixedNow},
		{ShowID: 3, StartTime: fixedNow.Add(time.Minute), Dangling: true},
	}
	past, upcoming := partition(context.Background(), listings, fixedNow)
	require.Len(t, past, 1)
	require.Len(t, upcoming, 1)
	assert.Equal(t, uint64(1), past[0].ShowID)
	assert.Equal(t, uint64(2), upcoming[0].ShowID)

	past, upcoming = partition(context.Background(), nil, fixedNow)
	assert.NotNil(t, past)
	assert.NotNil(t, upcoming)
}

func TestCreateShowPrecedence(t *testing.T) {
	ctx := context.Background()
	d, db, _ := newTestDirectory(t)
	v := mustVenue(t, d, "Hall", "San Francisco", "CA")
	a := mustArtist(t, d, "Band")

	tests := []struct {
		name string
		req  ShowRequest
		want error
	}{
		{"missing artist valid venue", ShowRequest{"999", idString(v.ID), "2035-01-01 20:00:00"}, ErrInvalidArtistID},
		{"both missing", ShowRequest{"999", "998", "2035-01-01 20:00:00"}, ErrInvalidArtistID},
		{"non numeric artist", ShowRequest{"abc", "998", "2035-01-01 20:00:00"}, ErrInvalidArtistID},
		{"missing venue", ShowRequest{idString(a.ID), "998", "2035-01-01 20:00:00"}, ErrInvalidVenueID},
		{"missing artist bad time", ShowRequest{"999", idString(v.ID), "soon"}, ErrInvalidArtistID},
		{"bad time", ShowRequest{idString(a.ID), idString(v.ID), "soon"}, ErrInvalidStartTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.CreateShow(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.ErrorIs(t, ErrInvalidArtistID, ErrValidation)
	assert.False(t, errors.Is(ErrInvalidArtistID, ErrInvalidVenueID))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM shows`).Scan(&n))
	assert.Zero(t, n)

	s, err := d.CreateShow(ctx, ShowRequest{idString(a.ID), idString(v.ID), "2035-01-01T20:00"})
	require.NoError(t, err)
	assert.Equal(t, "Band", s.ArtistName)
	assert.Equal(t, "Hall", s.VenueName)
	assert.Equal(t, time.Date(2035, 1, 1, 20, 0, 0, 0, time.UTC), s.StartTime)

	_, err = d.CreateShow(ctx, ShowRequest{idString(a.ID), idString(v.ID), "2035-01-01 20:00:00"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestDeleteVenueLeavesNoOrphans(t *testing.T) {
	ctx := context.Background()
	d, db, pub := newTestDirectory(t)
	v := mustVenue(t, d, "Doomed", "San Francisco", "CA", "Jazz")
	a := mustArtist(t, d, "Band")
	mustShow(t, d, a, v, fixedNow.Add(time.Hour))

	deleted, err := d.DeleteVenue(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Doomed", deleted.Name)

	for _, q := range []string{
		`SELECT COUNT(*) FROM shows WHERE venue_id = ?`,
		`SELECT COUNT(*) FROM venue_genres WHERE venue_id = ?`,
	} {
		var n int
		require.NoError(t, db.QueryRow(q, v.ID).Scan(&n))
		assert.Zero(t, n, q)
	}
	ad, err := d.ArtistDetail(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, ad.UpcomingShowsCount)

	_, err = d.DeleteVenue(ctx, v.ID)
	assert.ErrorIs(t, err, repository.ErrVenueNotFound)

	assert.Equal(t, []string{
		queue.KindVenueCreated, queue.KindArtistCreated, queue.KindShowCreated, queue.KindVenueDeleted,
	}, pub.kinds())
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	d, _, pub := newTestDirectory(t)
	pub.err = errors.New("broker down")
	v := mustVenue(t, d, "Hall", "San Francisco", "CA")
	assert.NotZero(t, v.ID)

	ctx := queue.ContextWithRequestID(context.Background(), "req-7")
	v.Name = "Hall 2"
	require.NoError(t, d.UpdateVenue(ctx, v))
	assert.Equal(t, "req-7", pub.events[len(pub.events)-1].RequestID)
}

func TestParseStartTime(t *testing.T) {
	want := time.Date(2035, 4, 1, 20, 30, 0, 0, time.UTC)
	for _, in := range []string{
		"2035-04-01 20:30:00",
		" 2035-04-01 20:30 ",
		"2035-04-01T20:30:00",
		"2035-04-01T20:30",
		"2035-04-01T22:30:00+02:00",
	} {
		got, err := ParseStartTime(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseStartTime("")
	assert.ErrorIs(t, err, ErrInvalidStartTime)
}

func TestGroupByAreaEmpty(t *testing.T) {
	groups := groupByArea(nil, nil)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

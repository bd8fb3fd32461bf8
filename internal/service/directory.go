// Package service implements the directory's query and mutation workflows
// on top of the repositories.  Handlers call a Directory and branch on the
// sentinel errors of this package and of package repository.
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/venue-directory/internal/model"
	"github.com/iliyamo/venue-directory/internal/queue"
	"github.com/iliyamo/venue-directory/internal/repository"
)

// startTimeLayouts are the accepted show start time inputs, tried in order.
// Inputs without a zone are read as UTC.
var startTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
}

// Directory is the query and mutation layer of the venue directory.
type Directory struct {
	venues  *repository.VenueRepo
	artists *repository.ArtistRepo
	shows   *repository.ShowRepo
	events  queue.Publisher

	// Now is the clock used to split shows into past and upcoming.
	Now func() time.Time
}

// NewDirectory wires a Directory.  A nil publisher disables events.
func NewDirectory(venues *repository.VenueRepo, artists *repository.ArtistRepo, shows *repository.ShowRepo, events queue.Publisher) *Directory {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &Directory{venues: venues, artists: artists, shows: shows, events: events, Now: time.Now}
}

// Areas returns all venues grouped by (city, state) with their upcoming
// show counts.  Any data-access fault is logged and yields an empty list.
func (d *Directory) Areas(ctx context.Context) []model.AreaGroup {
	venues, err := d.venues.ListAll(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("listing venues")
		return []model.AreaGroup{}
	}
	slots, err := d.shows.ListSlots(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("listing show slots")
		return []model.AreaGroup{}
	}
	byVenue, _ := upcomingCounts(slots, d.Now())
	return groupByArea(venues, byVenue)
}

// SearchVenues returns the venues whose name contains term, ignoring case.
func (d *Directory) SearchVenues(ctx context.Context, term string) (model.SearchResult, error) {
	hits, err := d.venues.SearchByName(ctx, term)
	if err != nil {
		return model.SearchResult{}, err
	}
	slots, err := d.shows.ListSlots(ctx)
	if err != nil {
		return model.SearchResult{}, err
	}
	byVenue, _ := upcomingCounts(slots, d.Now())
	return withCounts(hits, byVenue), nil
}

// SearchArtists returns the artists whose name contains term, ignoring case.
func (d *Directory) SearchArtists(ctx context.Context, term string) (model.SearchResult, error) {
	hits, err := d.artists.SearchByName(ctx, term)
	if err != nil {
		return model.SearchResult{}, err
	}
	slots, err := d.shows.ListSlots(ctx)
	if err != nil {
		return model.SearchResult{}, err
	}
	_, byArtist := upcomingCounts(slots, d.Now())
	return withCounts(hits, byArtist), nil
}

// Artists lists every artist by id.
func (d *Directory) Artists(ctx context.Context) ([]model.ArtistSummary, error) {
	return d.artists.ListAll(ctx)
}

// Shows lists every show whose artist and venue both exist.
func (d *Directory) Shows(ctx context.Context) ([]model.ShowListing, error) {
	all, err := d.shows.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.ShowListing, 0, len(all))
	for _, l := range all {
		if l.Dangling {
			log.Ctx(ctx).Warn().Uint64("show_id", l.ShowID).Msg("skipping show with dangling reference")
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// Venue returns one venue with its genres.
func (d *Directory) Venue(ctx context.Context, id uint64) (*model.Venue, error) {
	return d.venues.GetByID(ctx, id)
}

// Artist returns one artist with its genres.
func (d *Directory) Artist(ctx context.Context, id uint64) (*model.Artist, error) {
	return d.artists.GetByID(ctx, id)
}

// VenueDetail assembles a venue page: its fields, genres and its shows
// split at the current time.  A missing venue yields
// repository.ErrVenueNotFound.
func (d *Directory) VenueDetail(ctx context.Context, id uint64) (*model.VenueDetail, error) {
	v, err := d.venues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	listings, err := d.shows.ListByVenue(ctx, id)
	if err != nil {
		return nil, err
	}
	past, upcoming := partition(ctx, listings, d.Now())
	return &model.VenueDetail{
		Venue:              *v,
		PastShows:          past,
		UpcomingShows:      upcoming,
		PastShowsCount:     len(past),
		UpcomingShowsCount: len(upcoming),
	}, nil
}

// ArtistDetail assembles an artist page the same way as VenueDetail.
func (d *Directory) ArtistDetail(ctx context.Context, id uint64) (*model.ArtistDetail, error) {
	a, err := d.artists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	listings, err := d.shows.ListByArtist(ctx, id)
	if err != nil {
		return nil, err
	}
	past, upcoming := partition(ctx, listings, d.Now())
	return &model.ArtistDetail{
		Artist:             *a,
		PastShows:          past,
		UpcomingShows:      upcoming,
		PastShowsCount:     len(past),
		UpcomingShowsCount: len(upcoming),
	}, nil
}

// CreateVenue stores v and its genres atomically.
func (d *Directory) CreateVenue(ctx context.Context, v *model.Venue) error {
	if err := d.venues.Create(ctx, v); err != nil {
		return err
	}
	d.publish(ctx, queue.NewActivityEvent(queue.KindVenueCreated, v.ID, v.Name, d.Now()))
	return nil
}

// UpdateVenue overwrites the venue with v.ID and replaces its genres.
func (d *Directory) UpdateVenue(ctx context.Context, v *model.Venue) error {
	if err := d.venues.Update(ctx, v); err != nil {
		return err
	}
	d.publish(ctx, queue.NewActivityEvent(queue.KindVenueUpdated, v.ID, v.Name, d.Now()))
	return nil
}

// DeleteVenue removes a venue with its genres and shows and returns the
// deleted venue.
func (d *Directory) DeleteVenue(ctx context.Context, id uint64) (*model.Venue, error) {
	v, err := d.venues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.venues.Delete(ctx, id); err != nil {
		return nil, err
	}
	d.publish(ctx, queue.NewActivityEvent(queue.KindVenueDeleted, v.ID, v.Name, d.Now()))
	return v, nil
}

// CreateArtist stores a and its genres atomically.
func (d *Directory) CreateArtist(ctx context.Context, a *model.Artist) error {
	if err := d.artists.Create(ctx, a); err != nil {
		return err
	}
	d.publish(ctx, queue.NewActivityEvent(queue.KindArtistCreated, a.ID, a.Name, d.Now()))
	return nil
}

// UpdateArtist overwrites the artist with a.ID and replaces its genres.
func (d *Directory) UpdateArtist(ctx context.Context, a *model.Artist) error {
	if err := d.artists.Update(ctx, a); err != nil {
		return err
	}
	d.publish(ctx, queue.NewActivityEvent(queue.KindArtistUpdated, a.ID, a.Name, d.Now()))
	return nil
}

// ShowRequest is the raw input of CreateShow as submitted by a form.
type ShowRequest struct {
	ArtistID  string
	VenueID   string
	StartTime string
}

// ScheduledShow is a show that was written, with both names resolved.
type ScheduledShow struct {
	model.Show
	ArtistName string
	VenueName  string
}

// CreateShow schedules a show.  The artist is checked before the venue, so
// ErrInvalidArtistID wins when both are invalid, and both are checked
// before the start time is parsed.  Nothing is written on any error.
func (d *Directory) CreateShow(ctx context.Context, req ShowRequest) (*ScheduledShow, error) {
	artistID, err := parseID(req.ArtistID)
	if err != nil {
		return nil, ErrInvalidArtistID
	}
	artist, err := d.artists.GetByID(ctx, artistID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidArtistID
		}
		return nil, err
	}
	venueID, err := parseID(req.VenueID)
	if err != nil {
		return nil, ErrInvalidVenueID
	}
	venue, err := d.venues.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidVenueID
		}
		return nil, err
	}
	start, err := ParseStartTime(req.StartTime)
	if err != nil {
		return nil, err
	}

	s := model.Show{ArtistID: artistID, VenueID: venueID, StartTime: start}
	if err := d.shows.Create(ctx, &s); err != nil {
		switch {
		case errors.Is(err, repository.ErrArtistNotFound):
			return nil, ErrInvalidArtistID
		case errors.Is(err, repository.ErrVenueNotFound):
			return nil, ErrInvalidVenueID
		}
		return nil, err
	}

	ev := queue.NewActivityEvent(queue.KindShowCreated, s.ID, artist.Name, d.Now())
	ev.ArtistID, ev.VenueID = s.ArtistID, s.VenueID
	ev.StartTime = s.StartTime.Format(model.StartTimeLayout)
	d.publish(ctx, ev)
	return &ScheduledShow{Show: s, ArtistName: artist.Name, VenueName: venue.Name}, nil
}

// ParseStartTime reads a show start time in one of the accepted layouts.
func ParseStartTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidStartTime
}

func parseID(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 10, 64)
}

// publish sends ev after a committed write.  Failures are logged only.
func (d *Directory) publish(ctx context.Context, ev queue.ActivityEvent) {
	ev.RequestID = queue.RequestIDFromContext(ctx)
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := d.events.Publish(pctx, ev); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("kind", ev.Kind).Msg("activity event not published")
	}
}

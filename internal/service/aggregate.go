package service

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/venue-directory/internal/model"
)

type areaKey struct{ city, state string }

// groupByArea buckets venues by exact (city, state) equality.  Groups are
// sorted by city then state and keep the input order of their venues.
func groupByArea(venues []model.Venue, upcoming map[uint64]int) []model.AreaGroup {
	index := make(map[areaKey]int)
	groups := []model.AreaGroup{}
	for _, v := range venues {
		k := areaKey{v.City, v.State}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, model.AreaGroup{City: v.City, State: v.State, Venues: []model.VenueSummary{}})
		}
		groups[i].Venues = append(groups[i].Venues, model.VenueSummary{
			ID:               v.ID,
			Name:             v.Name,
			NumUpcomingShows: upcoming[v.ID],
		})
	}
	slices.SortStableFunc(groups, func(a, b model.AreaGroup) int {
		if c := cmp.Compare(a.City, b.City); c != 0 {
			return c
		}
		return cmp.Compare(a.State, b.State)
	})
	return groups
}

// upcomingCounts counts, per venue and per artist, the shows that start at
// or after now.
func upcomingCounts(shows []model.Show, now time.Time) (byVenue, byArtist map[uint64]int) {
	byVenue = make(map[uint64]int)
	byArtist = make(map[uint64]int)
	for _, s := range shows {
		if s.IsUpcoming(now) {
			byVenue[s.VenueID]++
			byArtist[s.ArtistID]++
		}
	}
	return byVenue, byArtist
}

// partition splits listings at now.  Dangling listings are logged and
// left out of both halves.  Both results are non-nil.
func partition(ctx context.Context, listings []model.ShowListing, now time.Time) (past, upcoming []model.ShowListing) {
	past, upcoming = []model.ShowListing{}, []model.ShowListing{}
	for _, l := range listings {
		if l.Dangling {
			log.Ctx(ctx).Warn().
				Uint64("show_id", l.ShowID).
				Uint64("artist_id", l.ArtistID).
				Uint64("venue_id", l.VenueID).
				Msg("skipping show with dangling reference")
			continue
		}
		if (model.Show{StartTime: l.StartTime}).IsUpcoming(now) {
			upcoming = append(upcoming, l)
		} else {
			past = append(past, l)
		}
	}
	return past, upcoming
}

// withCounts fills NumUpcomingShows on each hit.
func withCounts(hits []model.SearchHit, counts map[uint64]int) model.SearchResult {
	for i := range hits {
		hits[i].NumUpcomingShows = counts[hits[i].ID]
	}
	return model.SearchResult{Count: len(hits), Data: hits}
}

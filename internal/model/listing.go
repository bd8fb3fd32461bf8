package model

import "time"

// StartTimeLayout renders show start times in listings.
const StartTimeLayout = "2006-01-02 15:04:05"

// ShowListing is a show joined with the names and images of both sides.
// Artist* fields are empty when the artist row is missing (and likewise for
// Venue*); Dangling reports that case.
type ShowListing struct {
    ShowID          uint64    `json:"show_id"`
    ArtistID        uint64    `json:"artist_id"`
    ArtistName      string    `json:"artist_name"`
    ArtistImageLink string    `json:"artist_image_link"`
    VenueID         uint64    `json:"venue_id"`
    VenueName       string    `json:"venue_name"`
    VenueImageLink  string    `json:"venue_image_link"`
    StartTime       time.Time `json:"-"`
    StartTimeText   string    `json:"start_time"`
    Dangling        bool      `json:"-"`
}

// VenueSummary is a venue as listed inside its area group.
type VenueSummary struct {
    ID               uint64 `json:"id"`
    Name             string `json:"name"`
    NumUpcomingShows int    `json:"num_upcoming_shows"`
}

// AreaGroup is one (City, State) bucket of the venue directory.
type AreaGroup struct {
    City   string         `json:"city"`
    State  string         `json:"state"`
    Venues []VenueSummary `json:"venues"`
}

// SearchHit is one venue or artist matching a name search.
type SearchHit struct {
    ID               uint64 `json:"id"`
    Name             string `json:"name"`
    NumUpcomingShows int    `json:"num_upcoming_shows"`
}

// SearchResult is the response of a name search.
type SearchResult struct {
    Count int         `json:"count"`
    Data  []SearchHit `json:"data"`
}

// ArtistSummary is an artist as listed on the artists page.
type ArtistSummary struct {
    ID   uint64 `json:"id"`
    Name string `json:"name"`
}

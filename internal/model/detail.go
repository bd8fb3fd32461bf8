package model

// VenueDetail is a venue with its shows split at the read-time clock.
type VenueDetail struct {
    Venue
    PastShows          []ShowListing `json:"past_shows"`
    UpcomingShows      []ShowListing `json:"upcoming_shows"`
    PastShowsCount     int           `json:"past_shows_count"`
    UpcomingShowsCount int           `json:"upcoming_shows_count"`
}

// ArtistDetail is an artist with its shows split at the read-time clock.
type ArtistDetail struct {
    Artist
    PastShows          []ShowListing `json:"past_shows"`
    UpcomingShows      []ShowListing `json:"upcoming_shows"`
    PastShowsCount     int           `json:"past_shows_count"`
    UpcomingShowsCount int           `json:"upcoming_shows_count"`
}

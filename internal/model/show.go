package model

import "time"

// Show represents one performance of an artist at a venue.  A show is
// never stored as past or upcoming; that classification is made against
// the clock at read time.
//
// Fields:
//  ID       : surrogate primary key.
//  ArtistID : performing artist (artists.id).
//  VenueID  : hosting venue (venues.id).
//  StartTime: when the show begins, stored in UTC at second precision.
type Show struct {
    ID        uint64    `json:"id"`         // shows.id
    ArtistID  uint64    `json:"artist_id"`  // shows.artist_id
    VenueID   uint64    `json:"venue_id"`   // shows.venue_id
    StartTime time.Time `json:"start_time"` // shows.start_time
}

// IsUpcoming reports whether the show starts at or after now.  A show that
// starts exactly at now is upcoming, never past.
func (s Show) IsUpcoming(now time.Time) bool {
    return !s.StartTime.Before(now)
}

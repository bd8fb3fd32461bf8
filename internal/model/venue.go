package model

// DefaultImageLink is stored when a venue or artist is submitted without an
// image.
const DefaultImageLink = "https://images.unsplash.com/photo-1549213783-8284d0336c4f?ixlib=rb-1.2.1&auto=format&fit=crop&w=300&q=80"

// Venue represents a place that hosts shows.  Venues are grouped in the
// directory by their exact (City, State) pair.  This struct corresponds to
// a row in the `venues` table; Genres is assembled from `venue_genres`.
//
// Fields:
//  ID                : primary key identifier.
//  Name              : display name, searched case-insensitively.
//  City, State       : location; the directory grouping key.
//  SeekingTalent     : whether the venue is looking for artists.
//  SeekingDescription: free text shown when SeekingTalent is set.
//  ImageLink         : picture URL; DefaultImageLink when not supplied.
type Venue struct {
    ID                 uint64   `json:"id"`
    Name               string   `json:"name"`
    City               string   `json:"city"`
    State              string   `json:"state"`
    Address            string   `json:"address"`
    Phone              string   `json:"phone"`
    SeekingTalent      bool     `json:"seeking_talent"`
    SeekingDescription string   `json:"seeking_description"`
    ImageLink          string   `json:"image_link"`
    FacebookLink       string   `json:"facebook_link"`
    Website            string   `json:"website"`
    Genres             []string `json:"genres"`
}

package model

// Artist represents a performer that plays shows at venues.  This struct
// corresponds to a row in the `artists` table; Genres is assembled from
// `artist_genres`.
type Artist struct {
    ID                 uint64   `json:"id"`
    Name               string   `json:"name"`
    City               string   `json:"city"`
    State              string   `json:"state"`
    Phone              string   `json:"phone"`
    SeekingVenue       bool     `json:"seeking_venue"`
    SeekingDescription string   `json:"seeking_description"`
    ImageLink          string   `json:"image_link"`
    FacebookLink       string   `json:"facebook_link"`
    Genres             []string `json:"genres"`
}

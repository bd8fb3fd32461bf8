package handler

import (
    "strings"

    "github.com/iliyamo/venue-directory/internal/model"
)

// VenueForm is the body of the venue create and edit forms.
type VenueForm struct {
    Name               string   `form:"name" validate:"required,max=120"`
    City               string   `form:"city" validate:"required,max=120"`
    State              string   `form:"state" validate:"required,state"`
    Address            string   `form:"address" validate:"max=120"`
    Phone              string   `form:"phone" validate:"max=120"`
    Genres             []string `form:"genres" validate:"dive,max=120"`
    ImageLink          string   `form:"image_link" validate:"omitempty,url,max=500"`
    FacebookLink       string   `form:"facebook_link" validate:"omitempty,url,max=120"`
    Website            string   `form:"website" validate:"omitempty,url,max=120"`
    Seeking            string   `form:"seeking_talent"`
    SeekingDescription string   `form:"seeking_description" validate:"max=500"`
}

// ArtistForm is the body of the artist create and edit forms.
type ArtistForm struct {
    Name               string   `form:"name" validate:"required,max=120"`
    City               string   `form:"city" validate:"required,max=120"`
    State              string   `form:"state" validate:"required,state"`
    Phone              string   `form:"phone" validate:"max=120"`
    Genres             []string `form:"genres" validate:"dive,max=120"`
    ImageLink          string   `form:"image_link" validate:"omitempty,url,max=500"`
    FacebookLink       string   `form:"facebook_link" validate:"omitempty,url,max=120"`
    Seeking            string   `form:"seeking_venue"`
    SeekingDescription string   `form:"seeking_description" validate:"max=500"`
}

// ShowForm is the body of the show create form.  Values stay raw strings;
// the service decides which one is invalid.
type ShowForm struct {
    ArtistID  string `form:"artist_id"`
    VenueID   string `form:"venue_id"`
    StartTime string `form:"start_time"`
}

// formPage is the data of the venue and artist form templates.
type formPage struct {
    Heading string
    Action  string
    Submit  string
    Form    any
    Errors  map[string]string
}

// checked reports whether a checkbox value means "on".
func checked(v string) bool {
    switch strings.ToLower(strings.TrimSpace(v)) {
    case "y", "yes", "on", "true", "1":
        return true
    }
    return false
}

func checkbox(b bool) string {
    if b {
        return "y"
    }
    return ""
}

func (f *VenueForm) normalize() {
    f.Name = strings.TrimSpace(f.Name)
    f.City = strings.TrimSpace(f.City)
    f.State = strings.ToUpper(strings.TrimSpace(f.State))
    f.Address = strings.TrimSpace(f.Address)
    f.Phone = strings.TrimSpace(f.Phone)
    f.ImageLink = strings.TrimSpace(f.ImageLink)
    f.FacebookLink = strings.TrimSpace(f.FacebookLink)
    f.Website = strings.TrimSpace(f.Website)
    f.SeekingDescription = strings.TrimSpace(f.SeekingDescription)
}

func (f *VenueForm) toModel(id uint64) *model.Venue {
    return &model.Venue{
        ID:                 id,
        Name:               f.Name,
        City:               f.City,
        State:              f.State,
        Address:            f.Address,
        Phone:              f.Phone,
        SeekingTalent:      checked(f.Seeking),
        SeekingDescription: f.SeekingDescription,
        ImageLink:          f.ImageLink,
        FacebookLink:       f.FacebookLink,
        Website:            f.Website,
        Genres:             f.Genres,
    }
}

func venueFormFrom(v *model.Venue) *VenueForm {
    return &VenueForm{
        Name:               v.Name,
        City:               v.City,
        State:              v.State,
        Address:            v.Address,
        Phone:              v.Phone,
        Genres:             v.Genres,
        ImageLink:          v.ImageLink,
        FacebookLink:       v.FacebookLink,
        Website:            v.Website,
        Seeking:            checkbox(v.SeekingTalent),
        SeekingDescription: v.SeekingDescription,
    }
}

func (f *ArtistForm) normalize() {
    f.Name = strings.TrimSpace(f.Name)
    f.City = strings.TrimSpace(f.City)
    f.State = strings.ToUpper(strings.TrimSpace(f.State))
    f.Phone = strings.TrimSpace(f.Phone)
    f.ImageLink = strings.TrimSpace(f.ImageLink)
    f.FacebookLink = strings.TrimSpace(f.FacebookLink)
    f.SeekingDescription = strings.TrimSpace(f.SeekingDescription)
}

func (f *ArtistForm) toModel(id uint64) *model.Artist {
    return &model.Artist{
        ID:                 id,
        Name:               f.Name,
        City:               f.City,
        State:              f.State,
        Phone:              f.Phone,
        SeekingVenue:       checked(f.Seeking),
        SeekingDescription: f.SeekingDescription,
        ImageLink:          f.ImageLink,
        FacebookLink:       f.FacebookLink,
        Genres:             f.Genres,
    }
}

func artistFormFrom(a *model.Artist) *ArtistForm {
    return &ArtistForm{
        Name:               a.Name,
        City:               a.City,
        State:              a.State,
        Phone:              a.Phone,
        Genres:             a.Genres,
        ImageLink:          a.ImageLink,
        FacebookLink:       a.FacebookLink,
        Seeking:            checkbox(a.SeekingVenue),
        SeekingDescription: a.SeekingDescription,
    }
}

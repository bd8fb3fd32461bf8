package handler

import (
    "errors"
    "fmt"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/venue-directory/internal/repository"
    "github.com/iliyamo/venue-directory/internal/service"
)

// Shows lists every scheduled show.
func (h *DirectoryHandler) Shows(c echo.Context) error {
    shows, err := h.Dir.Shows(c.Request().Context())
    if err != nil {
        return err
    }
    return render(c, http.StatusOK, "shows", "Shows", shows)
}

// NewShowForm renders the blank show form.
func (h *DirectoryHandler) NewShowForm(c echo.Context) error {
    return render(c, http.StatusOK, "show_form", "New show", &ShowForm{})
}

// CreateShow schedules a show.  An unknown artist or venue re-renders the
// form with a message naming the id; nothing is written in that case.
func (h *DirectoryHandler) CreateShow(c echo.Context) error {
    var f ShowForm
    if err := c.Bind(&f); err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "malformed form")
    }
    f.ArtistID = strings.TrimSpace(f.ArtistID)
    f.VenueID = strings.TrimSpace(f.VenueID)

    s, err := h.Dir.CreateShow(c.Request().Context(), service.ShowRequest{
        ArtistID:  f.ArtistID,
        VenueID:   f.VenueID,
        StartTime: f.StartTime,
    })
    switch {
    case err == nil:
        return render(c, http.StatusOK, "home", "", s.Show,
            success(fmt.Sprintf("The show by %s has been successfully scheduled at the following venue: %s", s.ArtistName, s.VenueName)))
    case errors.Is(err, service.ErrInvalidArtistID):
        return render(c, http.StatusBadRequest, "show_form", "New show", &f,
            danger(fmt.Sprintf("There is no artist with id %s in our records", f.ArtistID)))
    case errors.Is(err, service.ErrInvalidVenueID):
        return render(c, http.StatusBadRequest, "show_form", "New show", &f,
            danger(fmt.Sprintf("There is no venue with id %s in our records", f.VenueID)))
    case errors.Is(err, service.ErrInvalidStartTime):
        return render(c, http.StatusBadRequest, "show_form", "New show", &f,
            danger("An error occurred. Show could not be listed."))
    case errors.Is(err, repository.ErrConflict):
        return render(c, http.StatusConflict, "show_form", "New show", &f,
            danger("This show is already scheduled."))
    default:
        logFault(c, err, "creating show")
        return render(c, http.StatusInternalServerError, "home", "", nil,
            danger("An error occurred. Show could not be listed."))
    }
}

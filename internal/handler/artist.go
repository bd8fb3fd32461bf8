package handler

import (
    "errors"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/venue-directory/internal/repository"
)

// Artists lists all artists by id.
func (h *DirectoryHandler) Artists(c echo.Context) error {
    artists, err := h.Dir.Artists(c.Request().Context())
    if err != nil {
        return err
    }
    return render(c, http.StatusOK, "artists", "Artists", artists)
}

// SearchArtists answers POST /artists/search.
func (h *DirectoryHandler) SearchArtists(c echo.Context) error {
    term := searchTerm(c)
    res, err := h.Dir.SearchArtists(c.Request().Context(), term)
    if err != nil {
        return err
    }
    if wantsJSON(c) {
        return c.JSON(http.StatusOK, res)
    }
    return render(c, http.StatusOK, "search_artists", "Artist search", searchPage{Term: term, Result: res})
}

// ShowArtist renders one artist with its past and upcoming shows.
func (h *DirectoryHandler) ShowArtist(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return err
    }
    detail, err := h.Dir.ArtistDetail(c.Request().Context(), id)
    if err != nil {
        return lookupError(err)
    }
    return render(c, http.StatusOK, "artist", detail.Name, detail)
}

// NewArtistForm renders the blank artist form.
func (h *DirectoryHandler) NewArtistForm(c echo.Context) error {
    return render(c, http.StatusOK, "artist_form", "New artist", newArtistPage(&ArtistForm{}, nil))
}

func newArtistPage(f *ArtistForm, errs map[string]string) formPage {
    return formPage{Heading: "List a new artist", Action: "/artists/create", Submit: "Create Artist", Form: f, Errors: errs}
}

func editArtistPage(id uint64, f *ArtistForm, errs map[string]string) formPage {
    return formPage{
        Heading: fmt.Sprintf("Edit artist %s", f.Name),
        Action:  fmt.Sprintf("/artists/%d/edit", id),
        Submit:  "Edit Artist",
        Form:    f,
        Errors:  errs,
    }
}

func bindArtist(c echo.Context) (*ArtistForm, map[string]string, error) {
    var f ArtistForm
    if err := c.Bind(&f); err != nil {
        return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "malformed form")
    }
    f.normalize()
    if err := c.Validate(&f); err != nil {
        if errs, ok := fieldErrors(err); ok {
            return &f, errs, nil
        }
        return nil, nil, err
    }
    return &f, nil, nil
}

// CreateArtist stores a new artist with its genres.
func (h *DirectoryHandler) CreateArtist(c echo.Context) error {
    f, errs, err := bindArtist(c)
    if err != nil {
        return err
    }
    if errs != nil {
        return render(c, http.StatusBadRequest, "artist_form", "New artist", newArtistPage(f, errs),
            danger(fmt.Sprintf("Artist %s could not be listed. Please fix the errors below.", f.Name)))
    }
    a := f.toModel(0)
    if err := h.Dir.CreateArtist(c.Request().Context(), a); err != nil {
        logFault(c, err, "creating artist")
        return render(c, http.StatusInternalServerError, "home", "", nil,
            danger(fmt.Sprintf("An error occurred. Artist %s could not be listed.", f.Name)))
    }
    return render(c, http.StatusOK, "home", "", a,
        success(fmt.Sprintf("Artist %s was successfully listed!", a.Name)))
}

// EditArtistForm renders the artist form filled with the stored values.
func (h *DirectoryHandler) EditArtistForm(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return err
    }
    a, err := h.Dir.Artist(c.Request().Context(), id)
    if err != nil {
        return lookupError(err)
    }
    if wantsJSON(c) {
        return c.JSON(http.StatusOK, a)
    }
    return render(c, http.StatusOK, "artist_form", "Edit artist", editArtistPage(id, artistFormFrom(a), nil))
}

// UpdateArtist overwrites an artist and redirects to its page.
func (h *DirectoryHandler) UpdateArtist(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return err
    }
    f, errs, err := bindArtist(c)
    if err != nil {
        return err
    }
    if errs != nil {
        return render(c, http.StatusBadRequest, "artist_form", "Edit artist", editArtistPage(id, f, errs),
            danger(fmt.Sprintf("Artist %s could not be updated. Please fix the errors below.", f.Name)))
    }
    a := f.toModel(id)
    if err := h.Dir.UpdateArtist(c.Request().Context(), a); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return echo.ErrNotFound
        }
        logFault(c, err, "updating artist")
        return render(c, http.StatusInternalServerError, "artist_form", "Edit artist", editArtistPage(id, f, nil),
            danger(fmt.Sprintf("An error occurred. Artist %s could not be updated.", f.Name)))
    }
    return redirect(c, fmt.Sprintf("/artists/%d", id), flashSuccess,
        fmt.Sprintf("Artist %s was successfully updated!", a.Name))
}

package handler

import (
    "errors"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/venue-directory/internal/repository"
)

// Venues lists all venues grouped by city and state.
func (h *DirectoryHandler) Venues(c echo.Context) error {
    areas := h.Dir.Areas(c.Request().Context())
    return render(c, http.StatusOK, "venues", "Venues", areas)
}

// SearchVenues answers POST /venues/search.
func (h *DirectoryHandler) SearchVenues(c echo.Context) error {
    term := searchTerm(c)
    res, err := h.Dir.SearchVenues(c.Request().Context(), term)
    if err != nil {
        return err
    }
    if wantsJSON(c) {
        return c.JSON(http.StatusOK, res)
    }
    return render(c, http.StatusOK, "search_venues", "Venue search", searchPage{Term: term, Result: res})
}

// ShowVenue renders one venue with its past and upcoming shows.
func (h *DirectoryHandler) ShowVenue(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return err
    }
    detail, err := h.Dir.VenueDetail(c.Request().Context(), id)
    if err != nil {
        return lookupError(err)
    }
    return render(c, http.StatusOK, "venue", detail.Name, detail)
}

// NewVenueForm renders the blank venue form.
func (h *DirectoryHandler) NewVenueForm(c echo.Context) error {
    return render(c, http.StatusOK, "venue_form", "New venue", newVenuePage(&VenueForm{}, nil))
}

func newVenuePage(f *VenueForm, errs map[string]string) formPage {
    return formPage{Heading: "List a new venue", Action: "/venues/create", Submit: "Create Venue", Form: f, Errors: errs}
}

func editVenuePage(id uint64, f *VenueForm, errs map[string]string) formPage {
    return formPage{
        Heading: fmt.Sprintf("Edit venue %s", f.Name),
        Action:  fmt.Sprintf("/venues/%d/edit", id),
        Submit:  "Edit Venue",
        Form:    f,
        Errors:  errs,
    }
}

// bindVenue binds and validates the venue form.  On a validation failure
// the returned map holds one message per field.
func bindVenue(c echo.Context) (*VenueForm, map[string]string, error) {
    var f VenueForm
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

// CreateVenue stores a new venue with its genres.  The home page is
// rendered with a flash naming the venue whether the write succeeds or
// fails.
func (h *DirectoryHandler) CreateVenue(c echo.Context) error {
    f, errs, err := bindVenue(c)
    if err != nil {
        return err
    }
    if errs != nil {
        return render(c, http.StatusBadRequest, "venue_form", "New venue", newVenuePage(f, errs),
            danger(fmt.Sprintf("Venue %s could not be listed. Please fix the errors below.", f.Name)))
    }
    v := f.toModel(0)
    if err := h.Dir.CreateVenue(c.Request().Context(), v); err != nil {
        logFault(c, err, "creating venue")
        return render(c, http.StatusInternalServerError, "home", "", nil,
            danger(fmt.Sprintf("An error occurred. Venue %s could not be listed.", f.Name)))
    }
    return render(c, http.StatusOK, "home", "", v,
        success(fmt.Sprintf("Venue %s was successfully listed!", v.Name)))
}

// EditVenueForm renders the venue form filled with the stored values.
func (h *DirectoryHandler) EditVenueForm(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return err
    }
    v, err := h.Dir.Venue(c.Request().Context(), id)
    if err != nil {
        return lookupError(err)
    }
    if wantsJSON(c) {
        return c.JSON(http.StatusOK, v)
    }
    f := venueFormFrom(v)
    return render(c, http.StatusOK, "venue_form", "Edit venue", editVenuePage(id, f, nil))
}

// UpdateVenue overwrites a venue and redirects to its page.
func (h *DirectoryHandler) UpdateVenue(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return err
    }
    f, errs, err := bindVenue(c)
    if err != nil {
        return err
    }
    if errs != nil {
        return render(c, http.StatusBadRequest, "venue_form", "Edit venue", editVenuePage(id, f, errs),
            danger(fmt.Sprintf("Venue %s could not be updated. Please fix the errors below.", f.Name)))
    }
    v := f.toModel(id)
    if err := h.Dir.UpdateVenue(c.Request().Context(), v); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return echo.ErrNotFound
        }
        logFault(c, err, "updating venue")
        return render(c, http.StatusInternalServerError, "venue_form", "Edit venue", editVenuePage(id, f, nil),
            danger(fmt.Sprintf("An error occurred. Venue %s could not be updated.", f.Name)))
    }
    return redirect(c, fmt.Sprintf("/venues/%d", id), flashSuccess,
        fmt.Sprintf("Venue %s was successfully updated!", v.Name))
}

// DeleteVenue removes a venue with its genres and shows.  Failures are
// answered with a JSON error payload; success redirects home.
func (h *DirectoryHandler) DeleteVenue(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"errorMessage": "Venue not found."})
    }
    v, err := h.Dir.DeleteVenue(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"errorMessage": "Venue not found."})
        }
        logFault(c, err, "deleting venue")
        return c.JSON(http.StatusInternalServerError, echo.Map{
            "errorMessage": "An error occurred. The venue could not be deleted.",
        })
    }
    return redirect(c, "/", flashSuccess, fmt.Sprintf("Venue: %s was successfully deleted.", v.Name))
}

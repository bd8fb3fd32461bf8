// Package handler exposes the HTTP handlers of the venue directory.  Each
// handler binds its input, calls the service layer and branches on the
// returned error kind to pick a status code, a page and a flash message.
package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog/log"

    "github.com/iliyamo/venue-directory/internal/repository"
    "github.com/iliyamo/venue-directory/internal/service"
)

// DirectoryHandler serves the venue, artist and show pages.
type DirectoryHandler struct {
    Dir *service.Directory
}

// NewDirectoryHandler constructs a DirectoryHandler.
func NewDirectoryHandler(dir *service.Directory) *DirectoryHandler {
    return &DirectoryHandler{Dir: dir}
}

// searchPage is the data of the search result templates.
type searchPage struct {
    Term   string
    Result any
}

// Home renders the landing page.
func (h *DirectoryHandler) Home(c echo.Context) error {
    return render(c, http.StatusOK, "home", "", nil)
}

// pathID parses the :id path parameter.  Anything that is not a positive
// integer cannot name a row and is reported as not found.
func pathID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, echo.ErrNotFound
    }
    return id, nil
}

// lookupError converts a read failure to the HTTP error handled by the
// error handler.
func lookupError(err error) error {
    if errors.Is(err, repository.ErrNotFound) {
        return echo.ErrNotFound
    }
    return err
}

// logFault records a persistence fault at the handler boundary.
func logFault(c echo.Context, err error, msg string) {
    log.Ctx(c.Request().Context()).Error().Err(err).Msg(msg)
}

// searchTerm reads search_term from the form body or the query string.
func searchTerm(c echo.Context) string {
    if v := c.FormValue("search_term"); v != "" {
        return v
    }
    return c.QueryParam("search_term")
}

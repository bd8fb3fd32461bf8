package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog/log"
)

// NewErrorHandler renders the 404 and 500 pages for HTML clients and a
// JSON error for JSON clients.  Other statuses fall back to echo's
// default handler.
func NewErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }
        code := http.StatusInternalServerError
        var he *echo.HTTPError
        if errors.As(err, &he) {
            code = he.Code
        }

        var page string
        switch code {
        case http.StatusNotFound:
            page = "errors/404"
        case http.StatusInternalServerError:
            page = "errors/500"
            log.Ctx(c.Request().Context()).Error().Err(err).Msg("unhandled error")
        default:
            e.DefaultHTTPErrorHandler(err, c)
            return
        }

        var rerr error
        if c.Request().Method == http.MethodHead {
            rerr = c.NoContent(code)
        } else if wantsJSON(c) {
            rerr = c.JSON(code, echo.Map{"error": http.StatusText(code)})
        } else {
            rerr = c.Render(code, page, nil)
        }
        if rerr != nil {
            log.Ctx(c.Request().Context()).Error().Err(rerr).Msg("rendering error page")
            _ = c.String(code, http.StatusText(code))
        }
    }
}

// Configure installs the renderer, the form validator and the error
// handler on e.
func Configure(e *echo.Echo, r echo.Renderer) {
    e.Renderer = r
    e.Validator = NewFormValidator()
    e.HTTPErrorHandler = NewErrorHandler(e)
}

package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/venue-directory/internal/view"
)

// wantsJSON reports whether the client asked for JSON instead of HTML.
func wantsJSON(c echo.Context) bool {
    accept := c.Request().Header.Get(echo.HeaderAccept)
    return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}

// render writes page with data.  Flashes queued by an earlier redirect are
// shown before the given ones.  JSON clients get data itself, or the
// messages when there is no data.
func render(c echo.Context, status int, page, title string, data any, flashes ...view.Flash) error {
    all := append(append([]view.Flash{}, takeFlashes(c)...), flashes...)
    if wantsJSON(c) {
        if data == nil {
            return c.JSON(status, echo.Map{"messages": all})
        }
        return c.JSON(status, data)
    }
    return c.Render(status, page, view.Page{Title: title, Flashes: all, Data: data})
}

// redirect queues a flash and sends the client to target with 303.
func redirect(c echo.Context, target, category, message string) error {
    setFlash(c, category, message)
    return c.Redirect(http.StatusSeeOther, target)
}

func success(msg string) view.Flash { return view.Flash{Category: flashSuccess, Message: msg} }
func danger(msg string) view.Flash  { return view.Flash{Category: flashDanger, Message: msg} }

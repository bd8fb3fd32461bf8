package handler

import (
    "encoding/base64"
    "encoding/json"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/venue-directory/internal/view"
)

// flashCookie carries flash messages across a redirect.
const flashCookie = "flash"

const (
    flashSuccess = "success"
    flashDanger  = "danger"
)

func encodeFlashes(fs []view.Flash) (string, error) {
    b, err := json.Marshal(fs)
    if err != nil {
        return "", err
    }
    return base64.RawURLEncoding.EncodeToString(b), nil
}

func decodeFlashes(s string) []view.Flash {
    b, err := base64.RawURLEncoding.DecodeString(s)
    if err != nil {
        return nil
    }
    var fs []view.Flash
    if err := json.Unmarshal(b, &fs); err != nil {
        return nil
    }
    return fs
}

// setFlash queues a message for the next page the client loads.
func setFlash(c echo.Context, category, message string) {
    var fs []view.Flash
    if ck, err := c.Cookie(flashCookie); err == nil {
        fs = decodeFlashes(ck.Value)
    }
    fs = append(fs, view.Flash{Category: category, Message: message})
    v, err := encodeFlashes(fs)
    if err != nil {
        return
    }
    c.SetCookie(&http.Cookie{Name: flashCookie, Value: v, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// takeFlashes returns the queued messages and clears the cookie.
func takeFlashes(c echo.Context) []view.Flash {
    ck, err := c.Cookie(flashCookie)
    if err != nil || ck.Value == "" {
        return nil
    }
    c.SetCookie(&http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1, Expires: time.Unix(0, 0), HttpOnly: true})
    return decodeFlashes(ck.Value)
}

// HasFlash reports whether the request carries queued flash messages.  The
// response cache is bypassed for such requests since the page they get is
// personalised.
func HasFlash(c echo.Context) bool {
    ck, err := c.Cookie(flashCookie)
    return err == nil && ck.Value != ""
}

// Package view renders the directory's HTML pages.  Every page is parsed
// together with the shared layout and executed through it.
package view

import (
    "embed"
    "fmt"
    "html/template"
    "io"
    "io/fs"
    "path"
    "slices"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
)

//go:embed templates
var files embed.FS

// Genres are the choices offered by the venue and artist forms.
var Genres = []string{
    "Alternative", "Blues", "Classical", "Country", "Electronic", "Folk", "Funk",
    "Hip-Hop", "Heavy Metal", "Instrumental", "Jazz", "Musical Theatre", "Pop",
    "Punk", "R&B", "Reggae", "Rock n Roll", "Soul", "Other",
}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
    Category string `json:"category"` // "success" or "danger"
    Message  string `json:"message"`
}

// Page is the value every template receives.
type Page struct {
    Title   string
    Flashes []Flash
    Data    any
}

// Renderer implements echo.Renderer over the embedded templates.  Page
// names are file names relative to templates/ without the extension, for
// example "venues" or "errors/404".
type Renderer struct {
    pages map[string]*template.Template
}

var funcs = template.FuncMap{
    "has":      func(list []string, s string) bool { return slices.Contains(list, s) },
    "genres":   func() []string { return Genres },
    "datetime": FormatDateTime,
}

// DisplayLayout is how show start times read on HTML pages, for example
// "Sun 04, 01, 2035 8:00PM".
const DisplayLayout = "Mon 01, 02, 2006 3:04PM"

// FormatDateTime renders t in UTC using DisplayLayout.  The zero time
// renders as an empty string.
func FormatDateTime(t time.Time) string {
    if t.IsZero() {
        return ""
    }
    return t.UTC().Format(DisplayLayout)
}

// New parses all pages.  It fails if any template is malformed.
func New() (*Renderer, error) {
    layout, err := template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html")
    if err != nil {
        return nil, fmt.Errorf("view: parsing layout: %w", err)
    }
    r := &Renderer{pages: make(map[string]*template.Template)}
    for _, pattern := range []string{"templates/pages/*.html", "templates/errors/*.html"} {
        matches, err := fs.Glob(files, pattern)
        if err != nil {
            return nil, err
        }
        for _, m := range matches {
            t, err := template.Must(layout.Clone()).ParseFS(files, m)
            if err != nil {
                return nil, fmt.Errorf("view: parsing %s: %w", m, err)
            }
            r.pages[pageName(m)] = t
        }
    }
    return r, nil
}

// pageName maps "templates/pages/venues.html" to "venues" and
// "templates/errors/404.html" to "errors/404".
func pageName(file string) string {
    name := strings.TrimSuffix(strings.TrimPrefix(file, "templates/"), ".html")
    return strings.TrimPrefix(name, "pages/")
}

// Has reports whether a page with name exists.
func (r *Renderer) Has(name string) bool {
    _, ok := r.pages[name]
    return ok
}

// Render implements echo.Renderer.  data is wrapped in a Page unless it
// already is one.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
    t, ok := r.pages[name]
    if !ok {
        return fmt.Errorf("view: unknown page %q", name)
    }
    p, ok := data.(Page)
    if !ok {
        p = Page{Title: path.Base(name), Data: data}
    }
    return t.ExecuteTemplate(w, "layout", p)
}

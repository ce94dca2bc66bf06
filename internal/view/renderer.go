// Package view renders HTML pages with html/template.  Every page template
// is parsed together with the shared layout and executed through it.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/flash"
)

//go:embed templates
var templateFS embed.FS

// Page is the value every template receives.
type Page struct {
	Title   string
	Flashes []flash.Message
	Data    any
}

// Renderer implements echo.Renderer.  Templates are addressed by their path
// below templates/ without extension, e.g. "pages/venues".
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	return newRenderer(templateFS, "templates")
}

func newRenderer(fsys fs.FS, root string) (*Renderer, error) {
	layouts, err := fs.Glob(fsys, path.Join(root, "layouts", "*.html"))
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, dir := range []string{"pages", "forms", "errors"} {
		files, err := fs.Glob(fsys, path.Join(root, dir, "*.html"))
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			files := append([]string{f}, layouts...)
			t, err := template.New(path.Base(f)).Funcs(Funcs()).ParseFS(fsys, files...)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", f, err)
			}
			name := dir + "/" + strings.TrimSuffix(path.Base(f), ".html")
			r.pages[name] = t
		}
	}
	return r, nil
}

// Render executes the "layout" template of the named page.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// Has reports whether a page is registered under name.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Funcs returns the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"datetime": FormatDateTime,
		"join":     strings.Join,
	}
}

// FormatDateTime renders t in the "full" or "medium" style.  Any other
// format string is used as a Go layout.
func FormatDateTime(t time.Time, format string) string {
	switch format {
	case "full":
		format = "Monday January, 2, 2006 at 3:04PM"
	case "medium", "":
		format = "Mon 01, 02, 2006 3:04PM"
	}
	return t.Format(format)
}

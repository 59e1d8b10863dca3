// Package view renders the HTML pages of the blog.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/Maxbrain0/echo_blog/model"
	"github.com/Maxbrain0/echo_blog/util"
	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var files embed.FS

// excerptLength is how much of a post body the feed shows.
const excerptLength = 100

// Page is what every template executes against.
type Page struct {
	User      *model.User
	Providers []model.Provider
	Data      any
}

// Templates is an echo.Renderer. Files starting with "_" are partials
// shared by every page; every other file is a page named after its file
// without the extension.
type Templates struct {
	pages     map[string]*template.Template
	providers []model.Provider
}

// New parses the embedded templates. providers is the list of OAuth
// providers offered on the sign in and sign up pages.
func New(providers []model.Provider) (*Templates, error) {
	funcs := template.FuncMap{
		"excerpt": func(s string) string { return util.Excerpt(s, excerptLength) },
	}

	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, err
	}
	t := &Templates{pages: map[string]*template.Template{}, providers: providers}
	for _, file := range names {
		base := path.Base(file)
		if strings.HasPrefix(base, "_") {
			continue
		}
		tmpl, err := template.New(base).Funcs(funcs).ParseFS(files, "templates/_*.html", file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		t.pages[strings.TrimSuffix(base, ".html")] = tmpl
	}
	return t, nil
}

// Render implements echo.Renderer.
func (t *Templates) Render(w io.Writer, name string, data any, c echo.Context) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("view %q not found", name)
	}
	page := Page{Providers: t.providers, Data: data}
	if c != nil {
		page.User = util.GetUser(c)
	}
	return tmpl.Execute(w, page)
}

// Has reports whether a page named name exists.
func (t *Templates) Has(name string) bool {
	_, ok := t.pages[name]
	return ok
}

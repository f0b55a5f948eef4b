package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
)

//go:embed templates/*.html
var files embed.FS

// Page names.
const (
	PageMenu     = "menu"
	PageCategory = "category"
	PageDetail   = "detail"
	PageRegister = "register"
	PageError    = "error"

	// FragmentReviews is the reviews section of the detail page on its own.
	FragmentReviews = "reviews"
)

var pages = []string{PageMenu, PageCategory, PageDetail, PageRegister, PageError}

// Renderer executes the embedded templates. Each page is parsed together with
// the shared layout and partials.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page.
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages)+1)}

	for _, name := range pages {
		tpl, err := template.New("layout.html").Funcs(funcs()).ParseFS(files,
			"templates/layout.html", "templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[name] = tpl
	}

	frag, err := template.New("partials.html").Funcs(funcs()).ParseFS(files, "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", FragmentReviews, err)
	}
	r.templates[FragmentReviews] = frag

	return r, nil
}

// Render writes a full page with status.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	tpl, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return write(w, status, tpl, "layout", data)
}

// RenderFragment writes the reviews fragment without the layout.
func (r *Renderer) RenderFragment(w http.ResponseWriter, status int, data any) error {
	return write(w, status, r.templates[FragmentReviews], "reviews", data)
}

func write(w http.ResponseWriter, status int, tpl *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := io.Copy(w, &buf)
	return err
}

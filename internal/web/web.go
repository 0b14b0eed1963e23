// Package web renders the HTML served by the submission server.
//
// # Templates
//
// Templates are embedded at build time. Each page is parsed into its own set
// together with the shared layout and fragments, so pages can each define a
// "content" block without clobbering one another:
//
//   - layout.html: document shell, pulls in the topnav and footer fragments
//   - fragments.html: "topnav" and "footer", also served alone under /fragments/{name}
//   - index.html: the submission form, one author row per editor row
//   - about.html: Markdown rendered from the configured README
//
// # Fragments
//
// The page shell loads its navigation and footer as fragments. Only the names
// listed in [Fragments] are served; anything else is reported as not found.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"slices"

	"github.com/desertthunder/msx/internal/authors"
	"github.com/desertthunder/msx/internal/shared"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var files embed.FS

// Fragments lists the fragment names that may be requested on their own.
var Fragments = []string{"topnav", "footer"}

// PageData is the view model shared by every template.
type PageData struct {
	Title      string
	Error      string
	UploadPath string
	Extensions []string
	Rows       []authors.Row
	Body       template.HTML
}

// Pages holds the parsed template sets.
type Pages struct {
	pages     map[string]*template.Template
	fragments *template.Template
	markdown  goldmark.Markdown
}

// New parses the embedded templates.
func New() (*Pages, error) {
	base, err := template.ParseFS(files, "templates/layout.html", "templates/fragments.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	p := &Pages{
		pages:     map[string]*template.Template{},
		fragments: base,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}

	for _, page := range []string{"index", "about"} {
		set, err := template.Must(base.Clone()).ParseFS(files, "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s page: %w", page, err)
		}
		p.pages[page] = set
	}

	return p, nil
}

// Render writes a full page.
func (p *Pages) Render(w io.Writer, page string, data PageData) error {
	set, ok := p.pages[page]
	if !ok {
		return fmt.Errorf("%w: page %q", shared.ErrNotFound, page)
	}
	return render(w, set, "layout", data)
}

// Fragment writes a single named fragment.
func (p *Pages) Fragment(w io.Writer, name string, data PageData) error {
	if !slices.Contains(Fragments, name) {
		return fmt.Errorf("%w: fragment %q", shared.ErrNotFound, name)
	}
	return render(w, p.fragments, name, data)
}

// Markdown converts src to HTML. Raw HTML in the source is dropped.
func (p *Pages) Markdown(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := p.markdown.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// render executes into a buffer first so a failed template never produces a half-written response.
func render(w io.Writer, t *template.Template, name string, data PageData) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

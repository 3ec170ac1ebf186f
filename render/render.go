// Package render produces the HTML pages of the documentation server.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/valyala/bytebufferpool"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/foomo/mddocs/service/vo"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Renderer struct {
	pages    *template.Template
	markdown goldmark.Markdown
}

type indexData struct {
	Title string
	TOC   template.HTML
}

type documentData struct {
	Title string
	Slug  string
	Body  template.HTML
}

func New() (*Renderer, error) {
	pages, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	return &Renderer{
		pages: pages,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.TaskList),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}, nil
}

// Index writes the table of contents page.
func (r *Renderer) Index(w io.Writer, tree *vo.Tree) error {
	toc := bytebufferpool.Get()
	defer bytebufferpool.Put(toc)
	if err := WriteTOC(toc, tree); err != nil {
		return fmt.Errorf("failed to render table of contents: %w", err)
	}
	return r.execute(w, "index.html", indexData{
		Title: "Documentation",
		TOC:   template.HTML(toc.String()),
	})
}

// AddNew writes the document creation form.
func (r *Renderer) AddNew(w io.Writer) error {
	return r.execute(w, "add-new.html", nil)
}

// Document writes doc rendered from markdown to HTML. Raw HTML inside the
// markdown body is omitted.
func (r *Renderer) Document(w io.Writer, doc *vo.Document) error {
	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)
	if err := r.markdown.Convert([]byte(doc.Markdown), body); err != nil {
		return fmt.Errorf("markdown parse: %w", err)
	}
	return r.execute(w, "document.html", documentData{
		Title: doc.Title,
		Slug:  doc.Slug,
		Body:  template.HTML(body.String()),
	})
}

// execute renders into a pooled buffer first so a failing template never
// leaves a half written response.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := r.pages.ExecuteTemplate(buf, name, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

package vo

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Markdown string

type MimeType string

const (
	MimeTypeMarkdown MimeType = "text/markdown; charset=utf-8"
	MimeTypeHTML     MimeType = "text/html; charset=utf-8"
)

type DocumentSummary struct {
	Slug  string `json:"slug"`  // Logical path without extension
	URL   string `json:"url"`   // Public path, "/" + slug
	Title string `json:"title"` // Front-matter title or derived from the file name
}

type Document struct {
	DocumentSummary
	Path     string   `json:"path"`               // Relative on-disk path
	Markdown Markdown `json:"markdown,omitempty"` // Body without front-matter
}

// Directory is a node of the table of contents tree.
type Directory struct {
	Name        string            `json:"name"`
	Label       string            `json:"label"`
	Documents   []DocumentSummary `json:"documents"`
	Directories []*Directory      `json:"directories"`
}

// Tree is the recursive listing of the content root.
type Tree struct {
	Documents   []DocumentSummary `json:"documents"`
	Directories []*Directory      `json:"directories"`
}

// Flatten returns every document of the tree, depth first.
func (t *Tree) Flatten() []DocumentSummary {
	if t == nil {
		return nil
	}
	out := append([]DocumentSummary(nil), t.Documents...)
	for _, dir := range t.Directories {
		out = dir.appendTo(out)
	}
	return out
}

func (d *Directory) appendTo(out []DocumentSummary) []DocumentSummary {
	out = append(out, d.Documents...)
	for _, child := range d.Directories {
		out = child.appendTo(out)
	}
	return out
}

type ContentFormat string

const (
	FormatMarkdown ContentFormat = "markdown"
	FormatHTML     ContentFormat = "html"
)

type CreateRequest struct {
	FilePath  string        `json:"filePath"`            // Target path, ".md" appended when missing
	Content   string        `json:"content"`             // Document body
	Format    ContentFormat `json:"format,omitempty"`    // Format of Content, markdown by default
	Selector  string        `json:"selector,omitempty"`  // Selector applied to HTML input
	SourceURL string        `json:"sourceUrl,omitempty"` // Page to import instead of Content
}

type CreateResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// TitleFromName derives a display title from a file or slug name:
// "getting-started" becomes "Getting Started".
func TitleFromName(name string) string {
	name = strings.TrimSuffix(name, ".md")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	words := strings.Split(name, "-")
	for i, word := range words {
		words[i] = UpperFirst(word)
	}
	return strings.Join(words, " ")
}

// UpperFirst upper-cases the first rune of s.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

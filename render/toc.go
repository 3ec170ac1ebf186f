package render

import (
	"io"
	"net/url"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/foomo/mddocs/service/vo"
)

// TOC builds the nested table of contents list for tree: directories become
// a bold label followed by their own list, documents become links.
func TOC(tree *vo.Tree) *html.Node {
	if tree == nil {
		tree = &vo.Tree{}
	}
	return list(tree.Documents, tree.Directories)
}

// WriteTOC renders the table of contents fragment to w.
func WriteTOC(w io.Writer, tree *vo.Tree) error {
	return html.Render(w, TOC(tree))
}

func list(docs []vo.DocumentSummary, dirs []*vo.Directory) *html.Node {
	ul := element(atom.Ul)
	for _, doc := range docs {
		a := element(atom.A, html.Attribute{Key: "href", Val: href(doc.Slug)})
		a.AppendChild(text(doc.Title))
		li := element(atom.Li)
		li.AppendChild(a)
		ul.AppendChild(li)
	}
	for _, dir := range dirs {
		label := dir.Label
		if label == "" {
			label = vo.UpperFirst(dir.Name)
		}
		strong := element(atom.Strong)
		strong.AppendChild(text(label))
		li := element(atom.Li)
		li.AppendChild(strong)
		li.AppendChild(list(dir.Documents, dir.Directories))
		ul.AppendChild(li)
	}
	return ul
}

// href escapes slug so names containing "?", "#" or "%" still link to themselves.
func href(slug string) string {
	return (&url.URL{Path: "/" + slug}).EscapedPath()
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

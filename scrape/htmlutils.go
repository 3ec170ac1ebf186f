package scrape

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// extractNodeBySelector finds the first node matching selector. Supported
// selectors are "#id", ".class" and a bare tag name.
func extractNodeBySelector(doc *html.Node, selector string) (*html.Node, error) {
	switch {
	case strings.HasPrefix(selector, "#"):
		id := strings.TrimPrefix(selector, "#")
		return findNode(doc, fmt.Sprintf("element with id '%s' not found", id), func(n *html.Node) bool {
			return attr(n, "id") == id
		})
	case strings.HasPrefix(selector, "."):
		class := strings.TrimPrefix(selector, ".")
		return findNode(doc, fmt.Sprintf("element with class '%s' not found", class), func(n *html.Node) bool {
			return slices.Contains(strings.Fields(attr(n, "class")), class)
		})
	default:
		tag := strings.ToLower(selector)
		return findNode(doc, fmt.Sprintf("element with tag '%s' not found", tag), func(n *html.Node) bool {
			return n.Data == tag
		})
	}
}

func findNode(doc *html.Node, notFound string, match func(*html.Node) bool) (*html.Node, error) {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && match(n) {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if found == nil {
		return nil, errors.New(notFound)
	}
	return found, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// extractTitle extracts the title from the HTML document
func extractTitle(doc *html.Node) string {
	n, err := findNode(doc, "", func(n *html.Node) bool { return n.Data == "title" })
	if err != nil || n.FirstChild == nil || n.FirstChild.Type != html.TextNode {
		return ""
	}
	return strings.TrimSpace(n.FirstChild.Data)
}

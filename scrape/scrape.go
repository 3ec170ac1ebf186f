// Package scrape turns HTML, posted directly or downloaded from a page, into
// markdown documents.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/foomo/mddocs/service/vo"
)

// maxBodySize caps downloaded pages.
const maxBodySize = 10 << 20

type Result struct {
	Title    string
	Markdown vo.Markdown
}

// Convert parses source as HTML and converts the node matched by selector into
// markdown. An empty selector converts the whole document.
func Convert(source []byte, selector string) (*Result, error) {
	doc, err := html.Parse(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	node := doc
	if selector != "" {
		node, err = extractNodeBySelector(doc, selector)
		if err != nil {
			return nil, fmt.Errorf("failed to extract node with selector '%s': %w", selector, err)
		}
	}

	markdownBytes, err := htmltomarkdown.ConvertNode(node)
	if err != nil {
		return nil, fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}

	return &Result{
		Title:    extractTitle(doc),
		Markdown: vo.Markdown(markdownBytes),
	}, nil
}

// Scrape downloads url and converts it like Convert.
func Scrape(ctx context.Context, client *http.Client, url, selector string) (*Result, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download HTML: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return Convert(body, selector)
}

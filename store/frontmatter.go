package store

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

type frontMatter struct {
	Title string `yaml:"title" toml:"title" json:"title"`
}

// ParseFrontMatter splits source into its front-matter title and the markdown
// body. Sources without a front-matter block are returned unchanged with an
// empty title.
func ParseFrontMatter(source []byte) (string, []byte, error) {
	var meta frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return "", nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta.Title, body, nil
}

package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Extension is the file extension every document carries on disk.
const Extension = ".md"

var (
	ErrEmptyPath   = errors.New("file path is required")
	ErrInvalidPath = errors.New("invalid file path")
)

// Sanitize turns a user supplied document path into a relative on-disk path
// ending in a single ".md". Leading slashes are stripped and every segment is
// checked so the result always stays below the content root.
func Sanitize(input string) (string, error) {
	if input == "" {
		return "", ErrEmptyPath
	}
	p := strings.TrimLeft(input, "/")
	if !strings.HasSuffix(p, Extension) {
		p += Extension
	}
	if err := validateSegments(p); err != nil {
		return "", err
	}
	return p, nil
}

// SlugPath resolves a slug taken from a URL to its on-disk relative path.
func SlugPath(slug string) (string, error) {
	if slug == "" {
		return "", ErrEmptyPath
	}
	p := strings.TrimLeft(slug, "/") + Extension
	if err := validateSegments(p); err != nil {
		return "", err
	}
	return p, nil
}

// SlugOf strips the document extension from a relative path.
func SlugOf(relPath string) string {
	return strings.TrimSuffix(filepath.ToSlash(relPath), Extension)
}

// PublicPath is the URL a document is served under.
func PublicPath(relPath string) string {
	return "/" + SlugOf(relPath)
}

func validateSegments(p string) error {
	segments := strings.Split(p, "/")
	for _, segment := range segments {
		switch {
		case segment == "", segment == ".", segment == "..":
			return fmt.Errorf("%w: bad segment %q", ErrInvalidPath, segment)
		case strings.ContainsAny(segment, "\\\x00"):
			return fmt.Errorf("%w: bad character in %q", ErrInvalidPath, segment)
		}
	}
	if segments[len(segments)-1] == Extension {
		return fmt.Errorf("%w: missing file name", ErrInvalidPath)
	}
	if !filepath.IsLocal(filepath.FromSlash(p)) {
		return fmt.Errorf("%w: %q escapes the content root", ErrInvalidPath, p)
	}
	return nil
}

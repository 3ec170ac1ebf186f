// Package store maps document slugs onto markdown files below a content root.
// The filesystem is the only source of truth: nothing is cached between calls.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/foomo/mddocs/service/vo"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrConflict = errors.New("document already exists")
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

type Store struct {
	root string
}

// New returns a store rooted at dir. The directory is created when missing.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve content root: %w", err)
	}
	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create content root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute content root.
func (s *Store) Root() string {
	return s.root
}

// Read loads the document for slug. A missing file, a directory at that path or
// an ignored path all yield ErrNotFound.
func (s *Store) Read(ctx context.Context, slug string) (*vo.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := SlugPath(slug)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	rules, err := loadIgnoreRules(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to load ignore rules: %w", err)
	}
	if rules.hidden(rel) {
		return nil, ErrNotFound
	}

	full := filepath.Join(s.root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat %s: %w", rel, err)
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}
	source, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return buildDocument(rel, source), nil
}

// List walks the content root and returns the document tree.
func (s *Store) List(ctx context.Context) (*vo.Tree, error) {
	rules, err := loadIgnoreRules(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to load ignore rules: %w", err)
	}
	docs, dirs, err := s.listDir(ctx, rules, "")
	if err != nil {
		return nil, err
	}
	return &vo.Tree{Documents: docs, Directories: dirs}, nil
}

func (s *Store) listDir(ctx context.Context, rules *ignoreRules, rel string) ([]vo.DocumentSummary, []*vo.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read directory %q: %w", rel, err)
	}

	docs := []vo.DocumentSummary{}
	dirs := []*vo.Directory{}
	for _, entry := range entries {
		name := entry.Name()
		entryRel := name
		if rel != "" {
			entryRel = rel + "/" + name
		}
		if entry.IsDir() {
			if rules.match(entryRel, true) {
				continue
			}
			childDocs, childDirs, err := s.listDir(ctx, rules, entryRel)
			if err != nil {
				return nil, nil, err
			}
			dirs = append(dirs, &vo.Directory{
				Name:        name,
				Label:       vo.UpperFirst(name),
				Documents:   childDocs,
				Directories: childDirs,
			})
			continue
		}
		if filepath.Ext(name) != Extension || rules.match(entryRel, false) {
			continue
		}
		if !entry.Type().IsRegular() {
			// symlinks count when they resolve to a regular file
			info, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(entryRel)))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		summary, err := s.summarize(entryRel)
		if err != nil {
			return nil, nil, err
		}
		docs = append(docs, summary)
	}

	sortDocuments(docs)
	sortDirectories(dirs)
	return docs, dirs, nil
}

func (s *Store) summarize(rel string) (vo.DocumentSummary, error) {
	source, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		return vo.DocumentSummary{}, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return buildDocument(rel, source).DocumentSummary, nil
}

// Hidden reports whether rel, a slash separated path below the root, is the
// ignore file itself or is hidden by its rules.
func (s *Store) Hidden(rel string) (bool, error) {
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	if rel == IgnoreFile {
		return true, nil
	}
	rules, err := loadIgnoreRules(s.root)
	if err != nil {
		return false, fmt.Errorf("failed to load ignore rules: %w", err)
	}
	return rules.hidden(rel), nil
}

// Create writes content to the sanitized path and returns its public path.
// Creation is exclusive: an existing file is never overwritten.
func (s *Store) Create(ctx context.Context, filePath, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel, err := Sanitize(filePath)
	if err != nil {
		return "", err
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), dirPerm); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", ErrConflict
		}
		return "", fmt.Errorf("failed to create %s: %w", rel, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("failed to close %s: %w", rel, err)
	}
	return PublicPath(rel), nil
}

// buildDocument never fails: a file with a malformed front-matter block is
// served verbatim under its file name title.
func buildDocument(rel string, source []byte) *vo.Document {
	slug := SlugOf(rel)
	title, body, err := ParseFrontMatter(source)
	if err != nil {
		title, body = "", source
	}
	if strings.TrimSpace(title) == "" {
		title = vo.TitleFromName(slug)
	}
	return &vo.Document{
		DocumentSummary: vo.DocumentSummary{
			Slug:  slug,
			URL:   "/" + slug,
			Title: title,
		},
		Path:     rel,
		Markdown: vo.Markdown(body),
	}
}

func sortDocuments(docs []vo.DocumentSummary) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := strings.ToLower(docs[i].Title), strings.ToLower(docs[j].Title)
		if a != b {
			return a < b
		}
		return docs[i].Slug < docs[j].Slug
	})
}

func sortDirectories(dirs []*vo.Directory) {
	sort.SliceStable(dirs, func(i, j int) bool {
		a, b := strings.ToLower(dirs[i].Name), strings.ToLower(dirs[j].Name)
		if a != b {
			return a < b
		}
		return dirs[i].Name < dirs[j].Name
	})
}

package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFile is read from the content root. It uses gitignore syntax and hides
// matching files and directories from Read and List.
const IgnoreFile = ".docsignore"

type ignoreRules struct {
	gi *ignore.GitIgnore
}

func loadIgnoreRules(root string) (*ignoreRules, error) {
	path := filepath.Join(root, IgnoreFile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ignoreRules{}, nil
		}
		return nil, err
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, err
	}
	return &ignoreRules{gi: gi}, nil
}

func (r *ignoreRules) match(relPath string, isDir bool) bool {
	if r == nil || r.gi == nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	if isDir {
		return r.gi.MatchesPath(relPath) || r.gi.MatchesPath(relPath+"/")
	}
	return r.gi.MatchesPath(relPath)
}

// hidden reports whether relPath or one of its parent directories is ignored.
func (r *ignoreRules) hidden(relPath string) bool {
	if r == nil || r.gi == nil {
		return false
	}
	dir := filepath.Dir(filepath.FromSlash(relPath))
	for dir != "." && dir != string(filepath.Separator) {
		if r.match(dir, true) {
			return true
		}
		dir = filepath.Dir(dir)
	}
	return r.match(relPath, false)
}

package documents

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-lute/pkg/interfaces"
)

// LoaderConfig controls file discovery.
type LoaderConfig struct {
	// Pattern filters file names, or paths when it contains a slash
	// (default "*.md"). A "**/" prefix matches at any depth.
	Pattern string
	// Recursive descends into sub-directories.
	Recursive bool
}

// Loader reads Markdown documents from a filesystem.
type Loader struct {
	fsys      fs.FS
	pattern   string
	recursive bool
}

// NewLoader returns a loader over fsys.
func NewLoader(fsys fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	return &Loader{fsys: fsys, pattern: pattern, recursive: cfg.Recursive}
}

// LoadFile reads one document and computes its checksum.
func (l *Loader) LoadFile(ctx context.Context, name string) (*interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = cleanPath(name)
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("documents: read %s: %w", name, err)
	}
	info, err := fs.Stat(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("documents: stat %s: %w", name, err)
	}
	doc, err := BuildDocument(name, data, info.ModTime())
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	doc.Checksum = sum[:]
	return doc, nil
}

// LoadDirectory loads every matching document below dir, sorted by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*interfaces.Document, error) {
	root := cleanPath(dir)
	var docs []*interfaces.Document
	err := fs.WalkDir(l.fsys, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && !l.recursive {
				return fs.SkipDir
			}
			return nil
		}
		if !l.matches(p) {
			return nil
		}
		doc, err := l.LoadFile(ctx, p)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func (l *Loader) matches(p string) bool {
	pattern := strings.TrimPrefix(l.pattern, "**/")
	target := path.Base(p)
	if strings.Contains(pattern, "/") {
		target = p
	}
	ok, err := path.Match(pattern, target)
	return err == nil && ok
}

func cleanPath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return "."
	}
	if p = strings.TrimPrefix(path.Clean(p), "/"); p == "" {
		return "."
	}
	return p
}

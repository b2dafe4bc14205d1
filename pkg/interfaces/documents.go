package interfaces

import (
	"context"
	"time"
)

// Document is a Markdown file loaded from a content tree together with its
// parsed front matter and the output of its most recent render.
type Document struct {
	Path         string
	FrontMatter  FrontMatter
	Body         []byte
	Output       string
	Format       string
	LastModified time.Time
	// Checksum is the SHA-256 digest of the raw file, front matter included.
	Checksum []byte
	// Reused is set when Output came from the render archive.
	Reused bool
	// Stopped is set when a renderer ended the walk early.
	Stopped bool
}

// FrontMatter holds the metadata block found at the top of a document. Keys
// outside the known fields land in Custom.
type FrontMatter struct {
	Title   string         `yaml:"title" json:"title"`
	Slug    string         `yaml:"slug" json:"slug"`
	Summary string         `yaml:"summary" json:"summary"`
	Format  string         `yaml:"format" json:"format"`
	Tags    []string       `yaml:"tags" json:"tags"`
	Date    time.Time      `yaml:"date" json:"date"`
	Draft   bool           `yaml:"draft" json:"draft"`
	Custom  map[string]any `yaml:",inline" json:"custom"`
}

// RenderOptions selects the output format for a document render. An empty
// Format defers to the document's front matter and then to the engine
// default.
type RenderOptions struct {
	Format string
	// Force re-renders even when the archive holds a result for the same
	// checksum.
	Force bool
}

// RenderSummary reports what happened during a directory render.
type RenderSummary struct {
	Rendered int
	Reused   int
	Stopped  int
	Failed   int
	Errors   []error
}

// DocumentService renders Markdown documents read from a content tree.
type DocumentService interface {
	Render(ctx context.Context, markdown []byte, format string) (string, error)
	Load(ctx context.Context, path string) (*Document, error)
	RenderDocument(ctx context.Context, path string, opts RenderOptions) (*Document, error)
	RenderDirectory(ctx context.Context, dir string, opts RenderOptions) ([]*Document, RenderSummary, error)
}

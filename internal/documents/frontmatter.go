package documents

import (
	"bytes"
	"fmt"
	"maps"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-lute/pkg/interfaces"
)

type frontMatterFields struct {
	Title   string         `yaml:"title" toml:"title"`
	Slug    string         `yaml:"slug" toml:"slug"`
	Summary string         `yaml:"summary" toml:"summary"`
	Format  string         `yaml:"format" toml:"format"`
	Tags    []string       `yaml:"tags" toml:"tags"`
	Date    time.Time      `yaml:"date" toml:"date"`
	Draft   bool           `yaml:"draft" toml:"draft"`
	Custom  map[string]any `yaml:",inline" toml:"-"`
}

// ParseFrontMatter splits a YAML (---) or TOML (+++) front matter block off
// source. Sources without front matter return the whole input as body.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var fields frontMatterFields
	body, err := frontmatter.Parse(bytes.NewReader(source), &fields)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("documents: front matter: %w", err)
	}
	custom := maps.Clone(fields.Custom)
	if custom == nil {
		custom = map[string]any{}
	}
	return interfaces.FrontMatter{
		Title:   fields.Title,
		Slug:    fields.Slug,
		Summary: fields.Summary,
		Format:  fields.Format,
		Tags:    append([]string(nil), fields.Tags...),
		Date:    fields.Date,
		Draft:   fields.Draft,
		Custom:  custom,
	}, body, nil
}

// BuildDocument parses source into a document. Output is left empty.
func BuildDocument(path string, source []byte, modified time.Time) (*interfaces.Document, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &interfaces.Document{
		Path:         path,
		FrontMatter:  meta,
		Body:         body,
		LastModified: modified,
	}, nil
}

package archive

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-lute/internal/identity"
)

// Record is the archived output of one document rendered in one format.
type Record struct {
	bun.BaseModel `bun:"table:render_records,alias:rr"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Key        string    `bun:"key,notnull,unique" json:"key"`
	Path       string    `bun:"path,notnull" json:"path"`
	Format     string    `bun:"format,notnull" json:"format"`
	Checksum   string    `bun:"checksum,notnull" json:"checksum"`
	Output     string    `bun:"output" json:"output"`
	Stopped    bool      `bun:"stopped,notnull,default:false" json:"stopped"`
	RenderedAt time.Time `bun:"rendered_at,nullzero,default:current_timestamp" json:"rendered_at"`
}

// NewRecord returns a record whose ID and Key are derived from path and
// format.
func NewRecord(path, format string) *Record {
	return &Record{
		ID:     identity.RenderRecordUUID(path, format),
		Key:    RecordKey(path, format),
		Path:   identity.CleanPath(path),
		Format: strings.TrimSpace(format),
	}
}

// RecordKey is the unique lookup key for a path and format pair. The path
// is cleaned the same way the record ID is.
func RecordKey(path, format string) string {
	return identity.RenderKey(path, format)
}

func cloneRecord(r *Record) *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

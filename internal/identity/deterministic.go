package identity

import (
	"path"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-lute:"

// UUID derives a stable UUID from key with go-hashid (SHA-256). The key is
// hashed as given apart from surrounding whitespace, so keys that differ
// only in case get distinct ids. A blank key yields uuid.Nil.
func UUID(key string) uuid.UUID {
	key = strings.TrimSpace(key)
	if key == "" {
		return uuid.Nil
	}
	id, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(false))
	if err != nil || id == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	}
	return id
}

// CleanPath is the canonical form of a document path used in ids and
// lookup keys. A blank path stays blank.
func CleanPath(documentPath string) string {
	p := strings.TrimSpace(documentPath)
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

// RenderKey joins a cleaned document path and a format.
func RenderKey(documentPath, format string) string {
	return CleanPath(documentPath) + "|" + strings.TrimSpace(format)
}

// RenderRecordUUID identifies the archived render of one document in one
// format. Paths are cleaned so "./a/b.md" and "a/b.md" collide.
func RenderRecordUUID(documentPath, format string) uuid.UUID {
	if CleanPath(documentPath) == "" {
		return uuid.Nil
	}
	return UUID(namespace + "render:" + RenderKey(documentPath, format))
}

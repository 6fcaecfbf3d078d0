package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ArticleUUID returns the stable identifier for an article slug. The same slug
// always maps to the same ID across rebuilds.
func ArticleUUID(slug string) uuid.UUID {
	return UUID("go-blog:article:" + strings.ToLower(strings.TrimSpace(slug)))
}

// TagUUID returns the stable identifier for a tag label.
func TagUUID(tag string) uuid.UUID {
	return UUID("go-blog:tag:" + strings.ToLower(strings.TrimSpace(tag)))
}

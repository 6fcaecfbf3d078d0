package articles

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Article is a validated blog post built from a Markdown document. Instances
// are treated as immutable once a Collection is loaded; callers must not
// mutate the slices or maps they receive.
type Article struct {
	ID           uuid.UUID
	Slug         string
	Title        string
	Summary      string
	Author       string
	Date         time.Time
	Tags         []string
	Images       []string
	Draft        bool
	Path         string
	Body         []byte
	BodyHTML     []byte
	LastModified time.Time
	Checksum     []byte
	Custom       map[string]any
}

// Published reports whether the article participates in listings and feeds.
func (a *Article) Published() bool {
	return a != nil && !a.Draft
}

// HasTag reports whether the article carries the given tag. Comparison uses
// the same normalization applied at load time.
func (a *Article) HasTag(tag string) bool {
	if a == nil {
		return false
	}
	needle := normalizeTag(tag)
	if needle == "" {
		return false
	}
	for _, t := range a.Tags {
		if t == needle {
			return true
		}
	}
	return false
}

// TagCount pairs a tag with the number of published articles carrying it.
// The ID is deterministic: the same tag name maps to the same identifier
// across rebuilds.
type TagCount struct {
	ID    uuid.UUID
	Name  string
	Count int
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

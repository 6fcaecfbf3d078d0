package articles

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	"github.com/goliatone/go-blog/internal/identity"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// CustomFieldValidator checks the non-reserved front matter fields of a
// document against a host-provided schema. Implementations return an error
// describing every failing field.
type CustomFieldValidator interface {
	ValidateFields(path string, fields map[string]any) error
}

// LoadOptions tunes how documents become articles.
type LoadOptions struct {
	// Normalizer overrides the slug rules used when deriving slugs from titles.
	Normalizer SlugNormalizer
	// CustomFields, when set, validates the free-form front matter fields of
	// every document. A failing document fails the whole load.
	CustomFields CustomFieldValidator
}

// Collection holds the validated articles of a site. It is built once by Load
// and is safe for concurrent reads; it never changes after construction.
type Collection struct {
	bySlug    map[string]*Article
	all       []*Article
	published []*Article
	tags      map[string]int
}

// Load validates documents and assembles them into a Collection. Any document
// that fails validation aborts the load with a *ValidationError naming the
// source path and field, so a broken article never ships silently.
func Load(docs []*interfaces.Document) (*Collection, error) {
	return LoadWithOptions(docs, LoadOptions{})
}

// LoadWithOptions is Load with slug and schema overrides.
func LoadWithOptions(docs []*interfaces.Document, opts LoadOptions) (*Collection, error) {
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = DefaultSlugNormalizer()
	}

	c := &Collection{
		bySlug: make(map[string]*Article, len(docs)),
		all:    make([]*Article, 0, len(docs)),
		tags:   make(map[string]int),
	}

	for _, doc := range docs {
		if doc == nil {
			continue
		}
		article, err := buildArticle(doc, normalizer)
		if err != nil {
			return nil, err
		}
		if opts.CustomFields != nil && len(doc.FrontMatter.Custom) > 0 {
			if err := opts.CustomFields.ValidateFields(doc.FilePath, doc.FrontMatter.Custom); err != nil {
				return nil, newValidationError(doc.FilePath, "custom", fmt.Errorf("%w: %v", ErrSchemaViolation, err))
			}
		}
		if existing, ok := c.bySlug[article.Slug]; ok {
			return nil, newValidationError(doc.FilePath, "slug",
				fmt.Errorf("%w: %q also defined by %s", ErrDuplicateSlug, article.Slug, existing.Path))
		}
		c.bySlug[article.Slug] = article
		c.all = append(c.all, article)
	}

	sortArticles(c.all)

	for _, article := range c.all {
		if article.Draft {
			continue
		}
		c.published = append(c.published, article)
		for _, tag := range article.Tags {
			c.tags[tag]++
		}
	}

	return c, nil
}

// Len returns the number of articles in the collection, drafts included.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.all)
}

// All returns every article, drafts included, newest first with slug as the
// tiebreaker. The returned slice is a copy.
func (c *Collection) All() []*Article {
	if c == nil {
		return nil
	}
	out := make([]*Article, len(c.all))
	copy(out, c.all)
	return out
}

// ListOptions filters ListPublished results.
type ListOptions struct {
	// Tag restricts results to articles carrying the tag. Matching uses the
	// normalized form, so "Go" and "go" select the same articles.
	Tag string
	// Limit caps the number of results; zero means no cap.
	Limit int
}

// ListPublished returns non-draft articles ordered by date descending, slug
// ascending. The returned slice is a copy.
func (c *Collection) ListPublished(opts ListOptions) []*Article {
	if c == nil {
		return nil
	}
	tag := normalizeTag(opts.Tag)
	out := make([]*Article, 0, len(c.published))
	for _, article := range c.published {
		if tag != "" && !article.HasTag(tag) {
			continue
		}
		out = append(out, article)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out
}

// GetBySlug returns the article with the given slug, drafts included so
// authors can preview unpublished work. A miss returns a *NotFoundError; it is
// an expected outcome, not a failure of the collection.
func (c *Collection) GetBySlug(slug string) (*Article, error) {
	key := strings.ToLower(strings.TrimSpace(slug))
	if c == nil || key == "" {
		return nil, &NotFoundError{Slug: slug}
	}
	article, ok := c.bySlug[key]
	if !ok {
		return nil, &NotFoundError{Slug: key}
	}
	return article, nil
}

// Tags returns tag usage counts across published articles only; drafts never
// leak into the public tag index. The returned map is a copy.
func (c *Collection) Tags() map[string]int {
	if c == nil {
		return map[string]int{}
	}
	return maps.Clone(c.tags)
}

// TagCounts returns the published tag counts sorted by tag name, for stable
// rendering of tag indexes.
func (c *Collection) TagCounts() []TagCount {
	if c == nil {
		return nil
	}
	out := make([]TagCount, 0, len(c.tags))
	for name, count := range c.tags {
		out = append(out, TagCount{ID: identity.TagUUID(name), Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func buildArticle(doc *interfaces.Document, normalizer SlugNormalizer) (*Article, error) {
	fm := doc.FrontMatter

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		return nil, newValidationError(doc.FilePath, "title", ErrTitleRequired)
	}
	if !fm.HasDate() {
		return nil, newValidationError(doc.FilePath, "date", ErrDateRequired)
	}

	articleSlug, err := resolveSlug(fm.Slug, title, doc.FilePath, normalizer)
	if err != nil {
		return nil, newValidationError(doc.FilePath, "slug", err)
	}

	return &Article{
		ID:           identity.ArticleUUID(articleSlug),
		Slug:         articleSlug,
		Title:        title,
		Summary:      strings.TrimSpace(fm.Summary),
		Author:       strings.TrimSpace(fm.Author),
		Date:         fm.Date,
		Tags:         normalizeTags(fm.Tags),
		Images:       normalizeImages(fm.Images),
		Draft:        fm.Draft,
		Path:         doc.FilePath,
		Body:         doc.Body,
		BodyHTML:     doc.BodyHTML,
		LastModified: doc.LastModified,
		Checksum:     doc.Checksum,
		Custom:       maps.Clone(fm.Custom),
	}, nil
}

func resolveSlug(explicit, title, path string, normalizer SlugNormalizer) (string, error) {
	explicit = strings.TrimSpace(explicit)
	if explicit != "" {
		if !IsValidSlug(explicit) {
			return "", fmt.Errorf("%w: %q", ErrSlugInvalid, explicit)
		}
		return explicit, nil
	}
	if derived, err := normalizer.Normalize(title); err == nil && strings.TrimSpace(derived) != "" {
		return derived, nil
	}
	// Titles made entirely of symbols normalize to nothing; fall back to the
	// source file name.
	if derived, err := normalizer.Normalize(fileStem(path)); err == nil && strings.TrimSpace(derived) != "" {
		return derived, nil
	}
	return "", fmt.Errorf("%w: cannot derive slug from title %q or path %q", ErrSlugRequired, title, path)
}

func fileStem(path string) string {
	base := path
	if idx := strings.LastIndexAny(base, "/\\"); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}

// normalizeTags trims, lowercases, and deduplicates tags. Ordering is
// alphabetical so downstream output is deterministic.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		normalized := normalizeTag(tag)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	sort.Strings(out)
	return out
}

func normalizeImages(images []string) []string {
	if len(images) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(images))
	for _, image := range images {
		if trimmed := strings.TrimSpace(image); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func sortArticles(list []*Article) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].Slug < list[j].Slug
	})
}

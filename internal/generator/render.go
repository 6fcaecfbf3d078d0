package generator

import (
	"strings"
	"time"

	"github.com/goliatone/go-blog/articles"
)

// PageKind identifies the layout a page renders with.
type PageKind string

const (
	KindArticle  PageKind = "article"
	KindIndex    PageKind = "index"
	KindTagIndex PageKind = "tags"
	KindTag      PageKind = "tag"
)

// TemplateContext is the data contract passed to TemplateRenderer
// implementations for every page of the site.
type TemplateContext struct {
	Site    SiteMetadata
	Page    PageContext
	Build   BuildMetadata
	Helpers TemplateHelpers
}

// SiteMetadata exposes site-wide information to templates and feeds.
type SiteMetadata struct {
	Title       string
	Description string
	BaseURL     string
	Author      string
	Language    string
}

// BuildMetadata surfaces high level build information to templates.
type BuildMetadata struct {
	GeneratedAt time.Time
	Options     BuildOptions
}

// ArticleRef pairs an article with its resolved site-relative route, so
// listing templates never hardcode permalink patterns.
type ArticleRef struct {
	*articles.Article
	Route string
}

// TagRef pairs a tag count with its resolved route.
type TagRef struct {
	articles.TagCount
	Route string
}

// PageContext contains the resolved data for a single output page. Exactly
// one of Article / Articles / Tags is populated depending on Kind.
type PageContext struct {
	Kind      PageKind
	Title     string
	Route     string
	Permalink string
	Article   *articles.Article
	Articles  []ArticleRef
	Tag       string
	Tags      []TagRef
}

// TemplateHelpers exposes convenience helpers for template authors.
type TemplateHelpers struct {
	baseURL string
}

func newTemplateHelpers(baseURL string) TemplateHelpers {
	return TemplateHelpers{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// BaseURL returns the configured site base URL.
func (h TemplateHelpers) BaseURL() string {
	return h.baseURL
}

// WithBaseURL prefixes the provided path with the configured base URL.
func (h TemplateHelpers) WithBaseURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return h.baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if h.baseURL == "" {
		return path
	}
	return h.baseURL + path
}

// FormatDate renders a timestamp with the given layout, defaulting to a
// readable date when layout is empty.
func (h TemplateHelpers) FormatDate(ts time.Time, layout string) string {
	if ts.IsZero() {
		return ""
	}
	if strings.TrimSpace(layout) == "" {
		layout = "January 2, 2006"
	}
	return ts.Format(layout)
}

// pageJob describes one output page scheduled for rendering.
type pageJob struct {
	Kind     PageKind
	Route    string
	Template string
	Title    string
	Hash     string
	LastMod  time.Time
	Article  *articles.Article
	Articles []ArticleRef
	Tag      string
	Tags     []TagRef
}

// RenderedPage captures the rendered HTML output for a page.
type RenderedPage struct {
	Kind     PageKind
	Route    string
	Output   string
	Template string
	HTML     string
	Hash     string
	LastMod  time.Time
	Duration time.Duration
	Checksum string
}

// RenderDiagnostic records rendering timing and errors per page.
type RenderDiagnostic struct {
	Kind     PageKind
	Route    string
	Template string
	Duration time.Duration
	Skipped  bool
	Err      error
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	err        error
	skipped    bool
}

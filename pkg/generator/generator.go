// Package generator exposes the static site generation API for blog hosts.
// Use NewService with Config and Dependencies to render article pages, tag
// listings, feeds, and sitemaps outside the blog facade.
package generator

import (
	internal "github.com/goliatone/go-blog/internal/generator"
	urlkit "github.com/goliatone/go-urlkit"
)

type (
	Service          = internal.Service
	Config           = internal.Config
	SiteMetadata     = internal.SiteMetadata
	BuildOptions     = internal.BuildOptions
	BuildResult      = internal.BuildResult
	RenderedPage     = internal.RenderedPage
	RenderDiagnostic = internal.RenderDiagnostic
	Dependencies     = internal.Dependencies
	URLResolver      = internal.URLResolver
	HTMLRenderer     = internal.HTMLRenderer
)

var ErrServiceDisabled = internal.ErrServiceDisabled

// NewService wires a static site generator with the supplied configuration
// and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	return internal.NewService(cfg, deps)
}

// NewDisabledService returns a Service that fails all operations with
// ErrServiceDisabled.
func NewDisabledService() Service {
	return internal.NewDisabledService()
}

// NewHTMLRenderer builds the default html/template renderer, layering
// templates from dir over the embedded set when dir is non-empty.
func NewHTMLRenderer(dir string) (*HTMLRenderer, error) {
	return internal.NewHTMLRenderer(dir)
}

// NewURLResolver builds the permalink resolver from a urlkit route config.
func NewURLResolver(cfg *urlkit.Config) (*URLResolver, error) {
	return internal.NewURLResolver(cfg)
}

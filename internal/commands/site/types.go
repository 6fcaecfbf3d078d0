package sitecmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-blog/articles"
	"github.com/goliatone/go-blog/internal/generator"
)

const (
	buildSiteMessageType    = "blog.site.build"
	cleanSiteMessageType    = "blog.site.clean"
	listArticlesMessageType = "blog.site.list_articles"
	showArticleMessageType  = "blog.site.show_article"
	listTagsMessageType     = "blog.site.list_tags"
)

// CollectionLoader loads the article collection the handlers operate on. The
// blog facade implements it so command handlers stay decoupled from content
// discovery.
type CollectionLoader interface {
	LoadCollection(ctx context.Context) (*articles.Collection, error)
}

// CollectionLoaderFunc adapts a function to the CollectionLoader interface.
type CollectionLoaderFunc func(ctx context.Context) (*articles.Collection, error)

// LoadCollection implements CollectionLoader.
func (f CollectionLoaderFunc) LoadCollection(ctx context.Context) (*articles.Collection, error) {
	return f(ctx)
}

// BuildResultCallback receives the build result produced by a generator run.
// The callback is optional and is invoked synchronously from the handler.
type BuildResultCallback func(BuildResultEnvelope)

// BuildResultEnvelope captures the outcome of a site build execution.
type BuildResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// ArticlesCallback receives the articles selected by a list query.
type ArticlesCallback func(ArticlesEnvelope)

// ArticlesEnvelope carries the articles matched by a ListArticlesQuery.
type ArticlesEnvelope struct {
	Articles []*articles.Article
	Total    int
}

// ArticleCallback receives the article resolved by a show query.
type ArticleCallback func(ArticleEnvelope)

// ArticleEnvelope carries a single resolved article.
type ArticleEnvelope struct {
	Article *articles.Article
}

// TagsCallback receives the tag counts produced by a tags query.
type TagsCallback func(TagsEnvelope)

// TagsEnvelope carries published tag usage counts sorted by name.
type TagsEnvelope struct {
	Tags []articles.TagCount
}

// BuildSiteCommand executes a full generator build of the loaded collection.
type BuildSiteCommand struct {
	DryRun         bool                `json:"dry_run,omitempty"`
	ResultCallback BuildResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (BuildSiteCommand) Validate() error { return nil }

// CleanSiteCommand removes all generator artifacts from the output directory.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }

// ListArticlesQuery selects published articles, optionally filtered by tag.
type ListArticlesQuery struct {
	Tag      string           `json:"tag,omitempty"`
	Limit    int              `json:"limit,omitempty"`
	Callback ArticlesCallback `json:"-"`
}

// Type implements command.Message.
func (ListArticlesQuery) Type() string { return listArticlesMessageType }

// Validate ensures the limit is non-negative.
func (m ListArticlesQuery) Validate() error {
	errs := validation.Errors{}
	if m.Limit < 0 {
		errs["limit"] = validation.NewError("blog.site.list_articles.limit_invalid", "limit must be zero or positive")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ShowArticleQuery resolves a single article by slug, drafts included.
type ShowArticleQuery struct {
	Slug     string          `json:"slug"`
	Callback ArticleCallback `json:"-"`
}

// Type implements command.Message.
func (ShowArticleQuery) Type() string { return showArticleMessageType }

// Validate ensures a slug is provided.
func (m ShowArticleQuery) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.Slug) == "" {
		errs["slug"] = validation.NewError("blog.site.show_article.slug_required", "slug is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ListTagsQuery reports tag usage across published articles.
type ListTagsQuery struct {
	Callback TagsCallback `json:"-"`
}

// Type implements command.Message.
func (ListTagsQuery) Type() string { return listTagsMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (ListTagsQuery) Validate() error { return nil }

// FeatureGates exposes runtime switches used to guard handler execution.
type FeatureGates struct {
	GeneratorEnabled func() bool
}

func (g FeatureGates) generatorEnabled() bool {
	if g.GeneratorEnabled == nil {
		return false
	}
	return g.GeneratorEnabled()
}

package sitecmd

import (
	"context"
	"strings"

	"github.com/goliatone/go-blog/articles"
	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// BuildSiteHandler orchestrates generator builds using the shared command
// handler foundation.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the provided loader and
// generator service.
func NewBuildSiteHandler(loader CollectionLoader, service generator.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}

		collection, err := loader.LoadCollection(ctx)
		if err != nil {
			return err
		}

		result, err := service.Build(ctx, collection, generator.BuildOptions{
			DryRun: msg.DryRun,
		})
		if msg.ResultCallback != nil {
			msg.ResultCallback(BuildResultEnvelope{
				Result: result,
				Metadata: map[string]any{
					"operation": "build",
					"articles":  collection.Len(),
				},
			})
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("site.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler clears generator artifacts.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler constructs a handler that cleans generator output.
func NewCleanSiteHandler(service generator.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg CleanSiteCommand) error {
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}
		return service.Clean(ctx)
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](baseLogger),
		commands.WithOperation[CleanSiteCommand]("site.clean"),
		commands.WithTelemetry(commands.DefaultTelemetry[CleanSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ListArticlesHandler answers published article queries.
type ListArticlesHandler struct {
	inner *commands.Handler[ListArticlesQuery]
}

// NewListArticlesHandler constructs a handler backed by the provided loader.
func NewListArticlesHandler(loader CollectionLoader, logger interfaces.Logger, opts ...commands.HandlerOption[ListArticlesQuery]) *ListArticlesHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ListArticlesQuery) error {
		collection, err := loader.LoadCollection(ctx)
		if err != nil {
			return err
		}

		matched := collection.ListPublished(articles.ListOptions{
			Tag:   strings.TrimSpace(msg.Tag),
			Limit: msg.Limit,
		})
		if msg.Callback != nil {
			msg.Callback(ArticlesEnvelope{
				Articles: matched,
				Total:    len(matched),
			})
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ListArticlesQuery]{
		commands.WithLogger[ListArticlesQuery](baseLogger),
		commands.WithOperation[ListArticlesQuery]("site.list_articles"),
		commands.WithMessageFields(func(msg ListArticlesQuery) map[string]any {
			fields := map[string]any{}
			if tag := strings.TrimSpace(msg.Tag); tag != "" {
				fields["tag"] = tag
			}
			if msg.Limit > 0 {
				fields["limit"] = msg.Limit
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ListArticlesQuery](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ListArticlesHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ListArticlesQuery].
func (h *ListArticlesHandler) Execute(ctx context.Context, msg ListArticlesQuery) error {
	return h.inner.Execute(ctx, msg)
}

// ShowArticleHandler resolves a single article by slug.
type ShowArticleHandler struct {
	inner *commands.Handler[ShowArticleQuery]
}

// NewShowArticleHandler constructs a handler backed by the provided loader.
func NewShowArticleHandler(loader CollectionLoader, logger interfaces.Logger, opts ...commands.HandlerOption[ShowArticleQuery]) *ShowArticleHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ShowArticleQuery) error {
		collection, err := loader.LoadCollection(ctx)
		if err != nil {
			return err
		}

		article, err := collection.GetBySlug(msg.Slug)
		if err != nil {
			return err
		}
		if msg.Callback != nil {
			msg.Callback(ArticleEnvelope{Article: article})
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ShowArticleQuery]{
		commands.WithLogger[ShowArticleQuery](baseLogger),
		commands.WithOperation[ShowArticleQuery]("site.show_article"),
		commands.WithMessageFields(func(msg ShowArticleQuery) map[string]any {
			return map[string]any{"slug": strings.TrimSpace(msg.Slug)}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ShowArticleQuery](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ShowArticleHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ShowArticleQuery].
func (h *ShowArticleHandler) Execute(ctx context.Context, msg ShowArticleQuery) error {
	return h.inner.Execute(ctx, msg)
}

// ListTagsHandler reports tag usage across published articles.
type ListTagsHandler struct {
	inner *commands.Handler[ListTagsQuery]
}

// NewListTagsHandler constructs a handler backed by the provided loader.
func NewListTagsHandler(loader CollectionLoader, logger interfaces.Logger, opts ...commands.HandlerOption[ListTagsQuery]) *ListTagsHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ListTagsQuery) error {
		collection, err := loader.LoadCollection(ctx)
		if err != nil {
			return err
		}
		if msg.Callback != nil {
			msg.Callback(TagsEnvelope{Tags: collection.TagCounts()})
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ListTagsQuery]{
		commands.WithLogger[ListTagsQuery](baseLogger),
		commands.WithOperation[ListTagsQuery]("site.list_tags"),
		commands.WithTelemetry(commands.DefaultTelemetry[ListTagsQuery](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ListTagsHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ListTagsQuery].
func (h *ListTagsHandler) Execute(ctx context.Context, msg ListTagsQuery) error {
	return h.inner.Execute(ctx, msg)
}

// Package blog turns a directory of Markdown articles with YAML front matter
// into a validated, queryable collection and a generated static site.
package blog

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/goliatone/go-blog/articles"
	"github.com/goliatone/go-blog/internal/commands"
	sitecmd "github.com/goliatone/go-blog/internal/commands/site"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/logging/console"
	"github.com/goliatone/go-blog/internal/logging/gologger"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/validation"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Article exports the article record for consumers of the blog package.
type Article = articles.Article

// Collection exports the immutable article collection.
type Collection = articles.Collection

// ListOptions exports the published listing filters.
type ListOptions = articles.ListOptions

// TagCount exports the tag usage pair returned by tag listings.
type TagCount = articles.TagCount

// ValidationError exports the front matter validation failure type.
type ValidationError = articles.ValidationError

// NotFoundError exports the typed slug lookup failure.
type NotFoundError = articles.NotFoundError

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// BuildOptions exports the generator run options.
type BuildOptions = generator.BuildOptions

// BuildResult exports the generator run report.
type BuildResult = generator.BuildResult

// Article collection sentinels re-exported for errors.Is checks.
var (
	ErrTitleRequired   = articles.ErrTitleRequired
	ErrDateRequired    = articles.ErrDateRequired
	ErrSlugRequired    = articles.ErrSlugRequired
	ErrSlugInvalid     = articles.ErrSlugInvalid
	ErrDuplicateSlug   = articles.ErrDuplicateSlug
	ErrSchemaViolation = articles.ErrSchemaViolation
	ErrArticleNotFound = articles.ErrArticleNotFound
)

// Option overrides a collaborator wired by New.
type Option func(*Module)

// WithLoggerProvider replaces the logging provider derived from the config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		if provider != nil {
			m.provider = provider
		}
	}
}

// WithMarkdownParser replaces the default Goldmark parser.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(m *Module) {
		m.parser = parser
	}
}

// WithSlugNormalizer replaces the slug normalizer used when deriving slugs
// from titles.
func WithSlugNormalizer(normalizer articles.SlugNormalizer) Option {
	return func(m *Module) {
		if normalizer != nil {
			m.normalizer = normalizer
		}
	}
}

// WithTemplateRenderer replaces the embedded HTML template renderer.
func WithTemplateRenderer(renderer interfaces.TemplateRenderer) Option {
	return func(m *Module) {
		if renderer != nil {
			m.renderer = renderer
		}
	}
}

// Module is the top level blog runtime facade. It owns the Markdown
// pipeline, the loaded collection, and the generator.
type Module struct {
	cfg      Config
	provider interfaces.LoggerProvider
	logger   interfaces.Logger

	parser     interfaces.MarkdownParser
	renderer   interfaces.TemplateRenderer
	normalizer articles.SlugNormalizer

	markdown  *markdown.Service
	schema    *validation.Schema
	generator generator.Service

	mu         sync.Mutex
	collection *articles.Collection
}

// New constructs a blog module from the provided configuration.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{
		cfg:        cfg,
		normalizer: articles.DefaultSlugNormalizer(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.provider == nil {
		provider, err := newLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}
	m.logger = logging.ModuleLogger(m.provider, "blog")

	mdService, err := markdown.NewService(markdown.Config{
		BasePath:  cfg.Content.Dir,
		Pattern:   cfg.Content.Pattern,
		Recursive: cfg.Content.Recursive,
		Parser: interfaces.ParseOptions{
			Extensions: cfg.Parser.Extensions,
			Sanitize:   cfg.Parser.Sanitize,
			HardWraps:  cfg.Parser.HardWraps,
			SafeMode:   cfg.Parser.SafeMode,
		},
	}, m.parser)
	if err != nil {
		return nil, err
	}
	m.markdown = mdService

	schema, err := validation.Compile(cfg.FrontMatterSchema)
	if err != nil {
		return nil, err
	}
	m.schema = schema

	gen, err := newGeneratorService(cfg, m)
	if err != nil {
		return nil, err
	}
	m.generator = gen

	return m, nil
}

// Load reads every Markdown document under the content directory, validates
// front matter, and replaces the cached collection. It returns the fresh
// collection.
func (m *Module) Load(ctx context.Context) (*articles.Collection, error) {
	docs, err := m.markdown.LoadDirectory(ctx, ".", interfaces.LoadOptions{})
	if err != nil {
		return nil, fmt.Errorf("blog: load content: %w", err)
	}

	opts := articles.LoadOptions{Normalizer: m.normalizer}
	if m.schema != nil {
		opts.CustomFields = m.schema
	}
	collection, err := articles.LoadWithOptions(docs, opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.collection = collection
	m.mu.Unlock()

	m.logger.Info("blog.load.success", "articles", collection.Len())
	return collection, nil
}

// Collection returns the cached collection, loading it on first use.
func (m *Module) Collection(ctx context.Context) (*articles.Collection, error) {
	m.mu.Lock()
	cached := m.collection
	m.mu.Unlock()
	if cached != nil {
		return cached, nil
	}
	return m.Load(ctx)
}

// ListPublished returns the published articles ordered newest first, slug
// ascending on date ties.
func (m *Module) ListPublished(ctx context.Context, opts ListOptions) ([]*Article, error) {
	collection, err := m.Collection(ctx)
	if err != nil {
		return nil, err
	}
	return collection.ListPublished(opts), nil
}

// GetBySlug resolves an article by slug, drafts included.
func (m *Module) GetBySlug(ctx context.Context, slug string) (*Article, error) {
	collection, err := m.Collection(ctx)
	if err != nil {
		return nil, err
	}
	return collection.GetBySlug(slug)
}

// ListTags reports tag usage across published articles sorted by name.
func (m *Module) ListTags(ctx context.Context) ([]TagCount, error) {
	collection, err := m.Collection(ctx)
	if err != nil {
		return nil, err
	}
	return collection.TagCounts(), nil
}

// Markdown returns the Markdown pipeline service.
func (m *Module) Markdown() interfaces.MarkdownService {
	return m.markdown
}

// Generator returns the configured generator service.
func (m *Module) Generator() GeneratorService {
	return m.generator
}

// Logger returns the module root logger.
func (m *Module) Logger() interfaces.Logger {
	return m.logger
}

// LoggerProvider returns the provider used to mint scoped loggers.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	return m.provider
}

// Commands bundles the command handlers wired against this module.
type Commands struct {
	BuildSite    *sitecmd.BuildSiteHandler
	CleanSite    *sitecmd.CleanSiteHandler
	ListArticles *sitecmd.ListArticlesHandler
	ShowArticle  *sitecmd.ShowArticleHandler
	ListTags     *sitecmd.ListTagsHandler
}

// Commands constructs the command handlers backed by this module.
func (m *Module) Commands() Commands {
	loader := sitecmd.CollectionLoaderFunc(func(ctx context.Context) (*articles.Collection, error) {
		return m.Collection(ctx)
	})
	gates := sitecmd.FeatureGates{
		GeneratorEnabled: func() bool { return m.cfg.Generator.Enabled },
	}
	logger := commands.CommandLogger(m.provider, "site")

	return Commands{
		BuildSite:    sitecmd.NewBuildSiteHandler(loader, m.generator, logger, gates),
		CleanSite:    sitecmd.NewCleanSiteHandler(m.generator, logger, gates),
		ListArticles: sitecmd.NewListArticlesHandler(loader, logger),
		ShowArticle:  sitecmd.NewShowArticleHandler(loader, logger),
		ListTags:     sitecmd.NewListTagsHandler(loader, logger),
	}
}

func newGeneratorService(cfg Config, m *Module) (generator.Service, error) {
	if !cfg.Generator.Enabled {
		return generator.NewDisabledService(), nil
	}

	renderer := m.renderer
	if renderer == nil {
		htmlRenderer, err := generator.NewHTMLRenderer(cfg.Generator.TemplatesDir)
		if err != nil {
			return nil, err
		}
		renderer = htmlRenderer
	}

	routes := cfg.Routes
	if routes == nil {
		routes = DefaultConfig().Routes
	}
	resolver, err := generator.NewURLResolver(routes)
	if err != nil {
		return nil, err
	}

	deps := generator.Dependencies{
		Renderer: renderer,
		Routes:   resolver,
		Logger:   logging.GeneratorLogger(m.provider),
	}
	if cfg.Generator.CopyAssets && cfg.Generator.AssetsDir != "" {
		if info, err := os.Stat(cfg.Generator.AssetsDir); err == nil && info.IsDir() {
			deps.Assets = os.DirFS(cfg.Generator.AssetsDir)
		}
	}

	return generator.NewService(generator.Config{
		OutputDir: cfg.Generator.OutputDir,
		BaseURL:   cfg.Site.BaseURL,
		Site: generator.SiteMetadata{
			Title:       cfg.Site.Title,
			Description: cfg.Site.Description,
			BaseURL:     cfg.Site.BaseURL,
			Author:      cfg.Site.Author,
			Language:    cfg.Site.Language,
		},
		CleanBuild:      cfg.Generator.CleanBuild,
		Incremental:     cfg.Generator.Incremental,
		CopyAssets:      cfg.Generator.CopyAssets,
		IncludeDrafts:   cfg.Generator.IncludeDrafts,
		GenerateSitemap: cfg.Generator.GenerateSitemap,
		GenerateRobots:  cfg.Generator.GenerateRobots,
		GenerateFeeds:   cfg.Generator.GenerateFeeds,
		FeedLimit:       cfg.Generator.FeedLimit,
		Workers:         cfg.Generator.Workers,
		RenderTimeout:   cfg.Generator.RenderTimeout,
	}, deps), nil
}

func newLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch cfg.Provider {
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		return console.NewProvider(console.Options{
			MinLevel: console.ParseLevel(cfg.Level),
		}), nil
	}
}

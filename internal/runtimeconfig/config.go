package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

var (
	ErrSiteTitleRequired          = errors.New("blog config: site title is required")
	ErrSiteBaseURLRequired        = errors.New("blog config: site base URL is required when feeds or sitemap are enabled")
	ErrContentDirRequired         = errors.New("blog config: content directory is required")
	ErrGeneratorOutputDirRequired = errors.New("blog config: generator output directory is required when the generator is enabled")
	ErrGeneratorWorkersInvalid    = errors.New("blog config: generator worker count must be zero or positive")
	ErrFeedLimitInvalid           = errors.New("blog config: feed item limit must be zero or positive")
	ErrLoggingProviderUnknown     = errors.New("blog config: logging provider is invalid")
	ErrLoggingLevelInvalid        = errors.New("blog config: logging level is invalid")
	ErrLoggingFormatInvalid       = errors.New("blog config: logging format is invalid")
)

// Config aggregates the runtime settings of the blog module. Fields use
// simple types so they can be unmarshalled from a site YAML file and
// overridden from flags.
type Config struct {
	Site              SiteConfig      `yaml:"site" json:"site"`
	Content           ContentConfig   `yaml:"content" json:"content"`
	Parser            ParserConfig    `yaml:"parser" json:"parser"`
	Generator         GeneratorConfig `yaml:"generator" json:"generator"`
	Logging           LoggingConfig   `yaml:"logging" json:"logging"`
	FrontMatterSchema map[string]any  `yaml:"front_matter_schema" json:"front_matter_schema"`
	Routes            *urlkit.Config  `yaml:"-" json:"-"`
}

// SiteConfig carries the site-wide metadata rendered into layouts and feeds.
type SiteConfig struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	BaseURL     string `yaml:"base_url" json:"base_url"`
	Author      string `yaml:"author" json:"author"`
	Language    string `yaml:"language" json:"language"`
}

// ContentConfig locates and filters the Markdown sources.
type ContentConfig struct {
	Dir       string `yaml:"dir" json:"dir"`
	Pattern   string `yaml:"pattern" json:"pattern"`
	Recursive bool   `yaml:"recursive" json:"recursive"`
}

// ParserConfig mirrors the Markdown parse options for runtime configuration.
type ParserConfig struct {
	Extensions []string `yaml:"extensions" json:"extensions"`
	Sanitize   bool     `yaml:"sanitize" json:"sanitize"`
	HardWraps  bool     `yaml:"hard_wraps" json:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode" json:"safe_mode"`
}

// GeneratorConfig captures behaviour for the static site generator.
type GeneratorConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled"`
	OutputDir       string        `yaml:"output_dir" json:"output_dir"`
	TemplatesDir    string        `yaml:"templates_dir" json:"templates_dir"`
	AssetsDir       string        `yaml:"assets_dir" json:"assets_dir"`
	CleanBuild      bool          `yaml:"clean_build" json:"clean_build"`
	Incremental     bool          `yaml:"incremental" json:"incremental"`
	CopyAssets      bool          `yaml:"copy_assets" json:"copy_assets"`
	IncludeDrafts   bool          `yaml:"include_drafts" json:"include_drafts"`
	GenerateSitemap bool          `yaml:"generate_sitemap" json:"generate_sitemap"`
	GenerateRobots  bool          `yaml:"generate_robots" json:"generate_robots"`
	GenerateFeeds   bool          `yaml:"generate_feeds" json:"generate_feeds"`
	FeedLimit       int           `yaml:"feed_limit" json:"feed_limit"`
	Workers         int           `yaml:"workers" json:"workers"`
	RenderTimeout   time.Duration `yaml:"render_timeout" json:"render_timeout"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider" json:"provider"`
	Level     string   `yaml:"level" json:"level"`
	Format    string   `yaml:"format" json:"format"`
	AddSource bool     `yaml:"add_source" json:"add_source"`
	Focus     []string `yaml:"focus" json:"focus"`
}

// DefaultConfig returns the defaults for a conventional blog layout: Markdown
// under content/, output under dist/, feeds and sitemap on.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Title:    "Blog",
			Language: "en",
		},
		Content: ContentConfig{
			Dir:       "content",
			Pattern:   "*.md",
			Recursive: true,
		},
		Parser: ParserConfig{},
		Generator: GeneratorConfig{
			Enabled:         true,
			OutputDir:       "dist",
			AssetsDir:       "static",
			CleanBuild:      false,
			Incremental:     true,
			CopyAssets:      true,
			GenerateSitemap: true,
			GenerateRobots:  true,
			GenerateFeeds:   true,
			FeedLimit:       20,
			Workers:         0,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Routes: DefaultRoutes(),
	}
}

// DefaultRoutes returns the route table used to build permalinks. Hosts can
// swap patterns (say, date-based permalinks) without touching the generator.
func DefaultRoutes() *urlkit.Config {
	return &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name: "site",
				Paths: map[string]string{
					"home":    "/",
					"article": "/posts/:slug",
					"tags":    "/tags",
					"tag":     "/tags/:tag",
				},
			},
		},
	}
}

// Validate performs high-level consistency checks before any work starts.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Site.Title) == "" {
		return ErrSiteTitleRequired
	}
	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if cfg.Generator.Enabled {
		if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
			return ErrGeneratorOutputDirRequired
		}
		if cfg.Generator.Workers < 0 {
			return ErrGeneratorWorkersInvalid
		}
		if cfg.Generator.FeedLimit < 0 {
			return ErrFeedLimitInvalid
		}
		if (cfg.Generator.GenerateFeeds || cfg.Generator.GenerateSitemap) && strings.TrimSpace(cfg.Site.BaseURL) == "" {
			return ErrSiteBaseURLRequired
		}
	}
	if provider := normalizeToken(cfg.Logging.Provider); provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := normalizeToken(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := normalizeToken(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch format {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}

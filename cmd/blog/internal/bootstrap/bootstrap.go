package bootstrap

import (
	"fmt"
	"os"
	"strings"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/joho/godotenv"
)

// Options captures configuration overrides for the blog CLI bootstrap. Flag
// values win over environment variables, which win over the config file.
type Options struct {
	ConfigPath    string
	ContentDir    string
	OutputDir     string
	BaseURL       string
	IncludeDrafts bool
	LogLevel      string
}

// Resources bundles the module and its command handlers for CLI consumption.
type Resources struct {
	Module   *blog.Module
	Commands blog.Commands
	Logger   interfaces.Logger
}

// BuildModule constructs a blog module from the config file, environment,
// and flag overrides.
func BuildModule(opts Options) (*Resources, error) {
	// A missing .env file is fine; explicit environment still applies.
	_ = godotenv.Load()

	cfg, err := blog.LoadConfigFile(configPath(opts.ConfigPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	applyEnv(&cfg)
	applyOptions(&cfg, opts)

	module, err := blog.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialise blog module: %w", err)
	}

	return &Resources{
		Module:   module,
		Commands: module.Commands(),
		Logger:   module.Logger(),
	}, nil
}

func configPath(flagValue string) string {
	if trimmed := strings.TrimSpace(flagValue); trimmed != "" {
		return trimmed
	}
	if env := strings.TrimSpace(os.Getenv("BLOG_CONFIG")); env != "" {
		return env
	}
	return "blog.yaml"
}

func applyEnv(cfg *blog.Config) {
	if v := strings.TrimSpace(os.Getenv("BLOG_CONTENT_DIR")); v != "" {
		cfg.Content.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv("BLOG_OUTPUT_DIR")); v != "" {
		cfg.Generator.OutputDir = v
	}
	if v := strings.TrimSpace(os.Getenv("BLOG_BASE_URL")); v != "" {
		cfg.Site.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("BLOG_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
}

func applyOptions(cfg *blog.Config, opts Options) {
	if v := strings.TrimSpace(opts.ContentDir); v != "" {
		cfg.Content.Dir = v
	}
	if v := strings.TrimSpace(opts.OutputDir); v != "" {
		cfg.Generator.OutputDir = v
	}
	if v := strings.TrimSpace(opts.BaseURL); v != "" {
		cfg.Site.BaseURL = v
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if opts.IncludeDrafts {
		cfg.Generator.IncludeDrafts = true
	}
}

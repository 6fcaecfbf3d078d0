package blog

import "github.com/goliatone/go-blog/internal/runtimeconfig"

var (
	ErrSiteTitleRequired          = runtimeconfig.ErrSiteTitleRequired
	ErrSiteBaseURLRequired        = runtimeconfig.ErrSiteBaseURLRequired
	ErrContentDirRequired         = runtimeconfig.ErrContentDirRequired
	ErrGeneratorOutputDirRequired = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrGeneratorWorkersInvalid    = runtimeconfig.ErrGeneratorWorkersInvalid
	ErrFeedLimitInvalid           = runtimeconfig.ErrFeedLimitInvalid
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
	ErrConfigFileInvalid          = runtimeconfig.ErrConfigFileInvalid
)

type (
	Config          = runtimeconfig.Config
	SiteConfig      = runtimeconfig.SiteConfig
	ContentConfig   = runtimeconfig.ContentConfig
	ParserConfig    = runtimeconfig.ParserConfig
	GeneratorConfig = runtimeconfig.GeneratorConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
)

// DefaultConfig returns the conventional blog defaults: Markdown under
// content/, output under dist/, feeds and sitemap enabled.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfigFile reads a YAML config file and merges it over the defaults.
// A missing file yields the defaults unchanged.
func LoadConfigFile(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}

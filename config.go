package mdgallery

import "github.com/goliatone/go-mdgallery/internal/runtimeconfig"

var (
	ErrConfigNotFound         = runtimeconfig.ErrConfigNotFound
	ErrContentDirRequired     = runtimeconfig.ErrContentDirRequired
	ErrOutputDirRequired      = runtimeconfig.ErrOutputDirRequired
	ErrOutputFolderRequired   = runtimeconfig.ErrOutputFolderRequired
	ErrSiteProviderUnknown    = runtimeconfig.ErrSiteProviderUnknown
	ErrRouteGroupRequired     = runtimeconfig.ErrRouteGroupRequired
	ErrRoutesRequired         = runtimeconfig.ErrRoutesRequired
	ErrPatternMissingName     = runtimeconfig.ErrPatternMissingName
	ErrEmptyPolicyInvalid     = runtimeconfig.ErrEmptyPolicyInvalid
	ErrErrorPolicyInvalid     = runtimeconfig.ErrErrorPolicyInvalid
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	GalleryConfig        = runtimeconfig.GalleryConfig
	SiteConfig           = runtimeconfig.SiteConfig
	RouteGroup           = runtimeconfig.RouteGroup
	LoggingConfig        = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file over the defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}

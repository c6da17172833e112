package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

var (
	ErrContentDirRequired     = errors.New("mdgallery config: markdown content directory is required")
	ErrOutputDirRequired      = errors.New("mdgallery config: markdown output directory is required")
	ErrOutputFolderRequired   = errors.New("mdgallery config: site output folder is required")
	ErrSiteProviderUnknown    = errors.New("mdgallery config: site provider is invalid")
	ErrRouteGroupRequired     = errors.New("mdgallery config: route group is required for the urlkit site provider")
	ErrRoutesRequired         = errors.New("mdgallery config: routes are required for the urlkit site provider")
	ErrPatternMissingName     = errors.New("mdgallery config: site pattern must contain {name}")
	ErrEmptyPolicyInvalid     = errors.New("mdgallery config: gallery empty policy is invalid")
	ErrErrorPolicyInvalid     = errors.New("mdgallery config: gallery error policy is invalid")
	ErrLoggingProviderUnknown = errors.New("mdgallery config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("mdgallery config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("mdgallery config: logging format is invalid")
)

const (
	SiteProviderPattern = "pattern"
	SiteProviderURLKit  = "urlkit"
)

// Config aggregates the settings for rendering Markdown with galleries.
type Config struct {
	Markdown MarkdownConfig `yaml:"markdown"`
	Gallery  GalleryConfig  `yaml:"gallery"`
	Site     SiteConfig     `yaml:"site"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MarkdownConfig captures filesystem and parser behaviour.
type MarkdownConfig struct {
	ContentDir string               `yaml:"content_dir"`
	OutputDir  string               `yaml:"output_dir"`
	Pattern    string               `yaml:"pattern"`
	Recursive  bool                 `yaml:"recursive"`
	SkipDrafts bool                 `yaml:"skip_drafts"`
	Parser     MarkdownParserConfig `yaml:"parser"`
}

// MarkdownParserConfig mirrors interfaces.ParseOptions.
type MarkdownParserConfig struct {
	Extensions []string `yaml:"extensions"`
	Sanitize   bool     `yaml:"sanitize"`
	HardWraps  bool     `yaml:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode"`
	XHTML      bool     `yaml:"xhtml"`
}

// GalleryConfig controls fragment markup and failure handling.
type GalleryConfig struct {
	ContainerID string `yaml:"container_id"`
	RowClass    string `yaml:"row_class"`
	CellClass   string `yaml:"cell_class"`
	LinkClass   string `yaml:"link_class"`
	// EmptyPolicy is "render" or "error".
	EmptyPolicy string `yaml:"empty_policy"`
	// ErrorPolicy is "keep" or "fail".
	ErrorPolicy string `yaml:"error_policy"`
}

// SiteConfig selects how gallery names resolve to index files.
type SiteConfig struct {
	Provider     string            `yaml:"provider"`
	OutputFolder string            `yaml:"output_folder"`
	Prefix       string            `yaml:"prefix"`
	Slugify      bool              `yaml:"slugify"`
	Patterns     map[string]string `yaml:"patterns"`
	RouteGroup   string            `yaml:"route_group"`
	NameParam    string            `yaml:"name_param"`
	Routes       []RouteGroup      `yaml:"routes"`
}

// RouteGroup is the YAML form of a go-urlkit group.
type RouteGroup struct {
	Name    string            `yaml:"name"`
	BaseURL string            `yaml:"base_url"`
	Path    string            `yaml:"path"`
	Paths   map[string]string `yaml:"paths"`
	Groups  []RouteGroup      `yaml:"groups"`
}

// URLKitConfig converts Routes into a go-urlkit configuration.
func (s SiteConfig) URLKitConfig() *urlkit.Config {
	if len(s.Routes) == 0 {
		return nil
	}
	return &urlkit.Config{Groups: toGroupConfigs(s.Routes)}
}

func toGroupConfigs(groups []RouteGroup) []urlkit.GroupConfig {
	if len(groups) == 0 {
		return nil
	}
	out := make([]urlkit.GroupConfig, 0, len(groups))
	for _, group := range groups {
		out = append(out, urlkit.GroupConfig{
			Name:    group.Name,
			BaseURL: group.BaseURL,
			Path:    group.Path,
			Paths:   group.Paths,
			Groups:  toGroupConfigs(group.Groups),
		})
	}
	return out
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns defaults matching a stock gallery generator layout.
func DefaultConfig() Config {
	return Config{
		Markdown: MarkdownConfig{
			ContentDir: "posts",
			OutputDir:  "output",
			Pattern:    "*.md",
			Recursive:  true,
		},
		Gallery: GalleryConfig{
			ContainerID: "gallery-container",
			RowClass:    "row",
			CellClass:   "col-xs-6 col-md-3",
			LinkClass:   "thumbnail image-reference",
			EmptyPolicy: "render",
			ErrorPolicy: "keep",
		},
		Site: SiteConfig{
			Provider:     SiteProviderPattern,
			OutputFolder: "output",
			Patterns:     map[string]string{},
			NameParam:    "name",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Markdown.ContentDir) == "" {
		return ErrContentDirRequired
	}
	if strings.TrimSpace(cfg.Markdown.OutputDir) == "" {
		return ErrOutputDirRequired
	}
	if strings.TrimSpace(cfg.Site.OutputFolder) == "" {
		return ErrOutputFolderRequired
	}

	switch normalize(cfg.Site.Provider) {
	case "", SiteProviderPattern:
		for kind, pattern := range cfg.Site.Patterns {
			if !strings.Contains(pattern, "{name}") {
				return fmt.Errorf("%w: %s", ErrPatternMissingName, kind)
			}
		}
	case SiteProviderURLKit:
		if strings.TrimSpace(cfg.Site.RouteGroup) == "" {
			return ErrRouteGroupRequired
		}
		if len(cfg.Site.Routes) == 0 {
			return ErrRoutesRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrSiteProviderUnknown, cfg.Site.Provider)
	}

	switch normalize(cfg.Gallery.EmptyPolicy) {
	case "", "render", "error", "fail":
	default:
		return fmt.Errorf("%w: %s", ErrEmptyPolicyInvalid, cfg.Gallery.EmptyPolicy)
	}
	switch normalize(cfg.Gallery.ErrorPolicy) {
	case "", "keep", "fail", "error", "abort":
	default:
		return fmt.Errorf("%w: %s", ErrErrorPolicyInvalid, cfg.Gallery.ErrorPolicy)
	}

	provider := normalize(cfg.Logging.Provider)
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "none":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}

package di

import (
	"fmt"
	"io"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-mdgallery/internal/commands"
	rendercmd "github.com/goliatone/go-mdgallery/internal/commands/render"
	"github.com/goliatone/go-mdgallery/internal/gallery"
	"github.com/goliatone/go-mdgallery/internal/logging"
	"github.com/goliatone/go-mdgallery/internal/logging/console"
	"github.com/goliatone/go-mdgallery/internal/logging/gologger"
	"github.com/goliatone/go-mdgallery/internal/markdown"
	"github.com/goliatone/go-mdgallery/internal/runtimeconfig"
	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

// Option mutates the container before services are wired.
type Option func(*Container)

// Container wires the gallery expander, the markdown pipeline and the render
// commands from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logWriter      io.Writer
	indexReader    interfaces.GalleryIndexReader
	site           interfaces.SiteContext
	routes         *urlkit.RouteManager

	expander *gallery.Expander
	parser   *markdown.GoldmarkParser
	markdown *markdown.Service

	renderFile      *rendercmd.RenderFileHandler
	renderDirectory *rendercmd.RenderDirectoryHandler
	onWritten       rendercmd.Written
}

// WithLoggerProvider overrides the provider selected by Logging.Provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithLogWriter redirects the console provider output.
func WithLogWriter(w io.Writer) Option {
	return func(c *Container) {
		c.logWriter = w
	}
}

// WithSiteContext overrides the site built from the Site section.
func WithSiteContext(site interfaces.SiteContext) Option {
	return func(c *Container) {
		if site != nil {
			c.site = site
		}
	}
}

// WithRouteManager supplies a prebuilt go-urlkit manager for the urlkit
// site provider instead of building one from Site.Routes.
func WithRouteManager(manager *urlkit.RouteManager) Option {
	return func(c *Container) {
		c.routes = manager
	}
}

// WithIndexReader overrides how gallery index files are read.
func WithIndexReader(reader interfaces.GalleryIndexReader) Option {
	return func(c *Container) {
		c.indexReader = reader
	}
}

// WithWrittenCallback is invoked by the render commands for every document.
func WithWrittenCallback(fn rendercmd.Written) Option {
	return func(c *Container) {
		c.onWritten = fn
	}
}

// NewContainer validates cfg and wires every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureSite(); err != nil {
		return nil, err
	}
	if err := c.configureMarkdown(); err != nil {
		return nil, err
	}
	c.configureCommands()
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		level, _ := console.ParseLevel(cfg.Level)
		c.loggerProvider = console.NewProvider(console.Options{
			Writer:   c.logWriter,
			MinLevel: &level,
		})
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	case "none":
		c.loggerProvider = noopProvider{}
	default:
		return fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
	return nil
}

func (c *Container) configureSite() error {
	if c.site != nil {
		return nil
	}
	cfg := c.Config.Site
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", runtimeconfig.SiteProviderPattern:
		c.site = gallery.NewPatternSite(gallery.PatternSiteConfig{
			OutputFolder: cfg.OutputFolder,
			Patterns:     cfg.Patterns,
			Prefix:       cfg.Prefix,
			Slugify:      cfg.Slugify,
		})
	case runtimeconfig.SiteProviderURLKit:
		manager := c.routes
		if manager == nil {
			routes := cfg.URLKitConfig()
			if routes == nil {
				return runtimeconfig.ErrRoutesRequired
			}
			manager = urlkit.NewRouteManager(routes)
		}
		c.site = gallery.NewURLKitSite(gallery.URLKitSiteConfig{
			Manager:      manager,
			Group:        cfg.RouteGroup,
			OutputFolder: cfg.OutputFolder,
			NameParam:    cfg.NameParam,
		})
	default:
		return fmt.Errorf("%w: %s", runtimeconfig.ErrSiteProviderUnknown, cfg.Provider)
	}
	return nil
}

func (c *Container) configureMarkdown() error {
	galleryCfg := c.Config.Gallery
	expanderOpts := []gallery.Option{
		gallery.WithLogger(logging.GalleryLogger(c.loggerProvider)),
		gallery.WithClasses(gallery.Classes{
			ContainerID: galleryCfg.ContainerID,
			RowClass:    galleryCfg.RowClass,
			CellClass:   galleryCfg.CellClass,
			LinkClass:   galleryCfg.LinkClass,
		}),
		gallery.WithEmptyGalleryPolicy(gallery.ParseEmptyGalleryPolicy(galleryCfg.EmptyPolicy)),
	}
	if c.indexReader != nil {
		expanderOpts = append(expanderOpts, gallery.WithIndexReader(c.indexReader))
	}
	c.expander = gallery.NewExpander(expanderOpts...)

	markdownLogger := logging.MarkdownLogger(c.loggerProvider)
	extension := markdown.NewGalleryExtension(
		markdown.WithExpander(c.expander),
		markdown.WithSite(c.site),
		markdown.WithExtensionLogger(markdownLogger),
		markdown.WithErrorPolicy(markdown.ParseErrorPolicy(galleryCfg.ErrorPolicy)),
	)

	parse := c.ParseOptions()
	c.parser = markdown.NewGoldmarkParser(parse, markdown.WithGalleryExtension(extension))

	mdCfg := c.Config.Markdown
	service, err := markdown.NewService(markdown.Config{
		BasePath:  mdCfg.ContentDir,
		Pattern:   mdCfg.Pattern,
		Recursive: mdCfg.Recursive,
		Parser:    parse,
	}, c.parser,
		markdown.WithServiceLogger(markdownLogger),
		markdown.WithServiceSite(c.site),
	)
	if err != nil {
		return err
	}
	c.markdown = service
	return nil
}

func (c *Container) configureCommands() {
	logger := commands.CommandLogger(c.loggerProvider, "render")
	c.renderFile = rendercmd.NewRenderFileHandler(c.markdown, interfaces.ParseOptions{}, logger, c.onWritten)
	c.renderDirectory = rendercmd.NewRenderDirectoryHandler(c.markdown, interfaces.ParseOptions{}, logger, c.onWritten)
}

// ParseOptions converts Markdown.Parser into parser defaults.
func (c *Container) ParseOptions() interfaces.ParseOptions {
	parser := c.Config.Markdown.Parser
	return interfaces.ParseOptions{
		Extensions: append([]string(nil), parser.Extensions...),
		Sanitize:   parser.Sanitize,
		HardWraps:  parser.HardWraps,
		SafeMode:   parser.SafeMode,
		XHTML:      parser.XHTML,
	}
}

// LoggerProvider returns the configured provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Site returns the site context gallery names resolve against.
func (c *Container) Site() interfaces.SiteContext {
	return c.site
}

// Expander returns the gallery expander.
func (c *Container) Expander() *gallery.Expander {
	return c.expander
}

// Parser returns the goldmark parser carrying the gallery extension.
func (c *Container) Parser() *markdown.GoldmarkParser {
	return c.parser
}

// MarkdownService returns the filesystem backed markdown service.
func (c *Container) MarkdownService() *markdown.Service {
	return c.markdown
}

// RenderFileHandler returns the single document render command.
func (c *Container) RenderFileHandler() *rendercmd.RenderFileHandler {
	return c.renderFile
}

// RenderDirectoryHandler returns the directory render command.
func (c *Container) RenderDirectoryHandler() *rendercmd.RenderDirectoryHandler {
	return c.renderDirectory
}

type noopProvider struct{}

func (noopProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }

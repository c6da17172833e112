package mdgallery

import (
	"context"

	rendercmd "github.com/goliatone/go-mdgallery/internal/commands/render"
	"github.com/goliatone/go-mdgallery/internal/di"
	"github.com/goliatone/go-mdgallery/internal/gallery"
	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

// RenderFileCommand exports the single document render command.
type RenderFileCommand = rendercmd.RenderFileCommand

// RenderDirectoryCommand exports the directory render command.
type RenderDirectoryCommand = rendercmd.RenderDirectoryCommand

// ParseOptions exports the per-call markdown parser overrides.
type ParseOptions = interfaces.ParseOptions

// Marker exports a located gallery marker.
type Marker = gallery.Marker

// Option customises module wiring.
type Option = di.Option

var (
	WithLoggerProvider   = di.WithLoggerProvider
	WithLogWriter        = di.WithLogWriter
	WithSiteContext      = di.WithSiteContext
	WithRouteManager     = di.WithRouteManager
	WithIndexReader      = di.WithIndexReader
	WithWrittenCallback  = di.WithWrittenCallback
	ErrGalleryNotFound   = gallery.ErrGalleryNotFound
	ErrMalformedMarker   = gallery.ErrMalformedMarker
	ErrGalleryIndex      = gallery.ErrGalleryIndexFormat
	ErrSiteRequired      = gallery.ErrSiteRequired
	IsGalleryNotFound    = gallery.IsNotFound
	IsMalformedMarker    = gallery.IsMalformedMarker
	IsGalleryIndexFormat = gallery.IsIndexFormat
)

// Module is the top level façade over the gallery expander and the markdown
// pipeline.
type Module struct {
	container *di.Container
}

// New constructs a module from cfg.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying wiring for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Markdown returns the configured markdown service.
func (m *Module) Markdown() interfaces.MarkdownService {
	return m.container.MarkdownService()
}

// Expander returns the text level gallery expander.
func (m *Module) Expander() interfaces.GalleryExpander {
	return m.container.Expander()
}

// Site returns the site context gallery names resolve against.
func (m *Module) Site() interfaces.SiteContext {
	return m.container.Site()
}

// ExpandText replaces every gallery marker in text using the module's site.
func (m *Module) ExpandText(ctx context.Context, text string) (string, error) {
	return m.container.Expander().ExpandText(ctx, text, m.container.Site())
}

// RenderFile executes a RenderFileCommand.
func (m *Module) RenderFile(ctx context.Context, cmd RenderFileCommand) error {
	return m.container.RenderFileHandler().Execute(ctx, cmd)
}

// RenderDirectory executes a RenderDirectoryCommand.
func (m *Module) RenderDirectory(ctx context.Context, cmd RenderDirectoryCommand) error {
	return m.container.RenderDirectoryHandler().Execute(ctx, cmd)
}

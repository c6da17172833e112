package markdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

// GalleryExtensionName is the registry name of the gallery extension.
const GalleryExtensionName = "gallery"

// GoldmarkParser implements interfaces.MarkdownParser using the goldmark engine.
// It keeps no per-call state, so a single instance can be shared.
type GoldmarkParser struct {
	defaultOptions interfaces.ParseOptions
	gallery        *GalleryExtension
}

// ParserOption customises a GoldmarkParser.
type ParserOption func(*GoldmarkParser)

// WithGalleryExtension sets the extension registered under "gallery".
func WithGalleryExtension(ext *GalleryExtension) ParserOption {
	return func(p *GoldmarkParser) {
		if ext != nil {
			p.gallery = ext
		}
	}
}

// NewGoldmarkParser constructs a parser. With no extensions configured the
// engine uses GFM, linkify, task lists and the gallery extension; raw HTML is
// passed through unless SafeMode or Sanitize is set.
func NewGoldmarkParser(defaults interfaces.ParseOptions, opts ...ParserOption) *GoldmarkParser {
	p := &GoldmarkParser{
		defaultOptions: defaults,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.gallery == nil {
		p.gallery = NewGalleryExtension()
	}
	return p
}

// Parse satisfies interfaces.MarkdownParser by rendering Markdown into HTML
// using the parser's default configuration.
func (p *GoldmarkParser) Parse(markdown []byte) ([]byte, error) {
	return p.ParseWithOptions(markdown, p.defaultOptions)
}

// ParseWithOptions renders Markdown into HTML using the provided options.
func (p *GoldmarkParser) ParseWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	return p.Render(context.Background(), markdown, opts, nil)
}

// Render converts markdown with ctx and site handed to the gallery
// extension. A nil site keeps the extension's own. Under ErrorPolicyFail the
// gallery errors recorded during conversion are returned joined.
func (p *GoldmarkParser) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions, site interfaces.SiteContext) ([]byte, error) {
	engine := p.newEngine(opts)
	pc := NewParserContext(ctx, site)

	var buf bytes.Buffer
	if err := engine.Convert(markdown, &buf, parser.WithContext(pc)); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	if errs := GalleryErrors(pc); len(errs) > 0 && p.gallery.Policy() == ErrorPolicyFail {
		return nil, fmt.Errorf("markdown parse: %w", errors.Join(errs...))
	}

	if opts.Sanitize {
		return sanitize(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

func (p *GoldmarkParser) newEngine(opts interfaces.ParseOptions) goldmark.Markdown {
	exts := p.collectExtensions(opts.Extensions)

	parserOptions := []parser.Option{
		parser.WithAutoHeadingID(),
	}

	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if opts.XHTML {
		rendererOptions = append(rendererOptions, html.WithXHTML())
	}
	if !opts.SafeMode && !opts.Sanitize {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parserOptions...),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}

	return goldmark.New(engineOptions...)
}

var builtinExtensions = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// Extensions lists the names ParseOptions.Extensions accepts.
func (p *GoldmarkParser) Extensions() []string {
	names := make([]string, 0, len(builtinExtensions)+1)
	for name := range builtinExtensions {
		names = append(names, name)
	}
	return append(names, GalleryExtensionName)
}

func (p *GoldmarkParser) lookup(name string) (goldmark.Extender, bool) {
	if name == GalleryExtensionName {
		return p.gallery, true
	}
	ext, ok := builtinExtensions[name]
	return ext, ok
}

func (p *GoldmarkParser) collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
			p.gallery,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := p.lookup(key)
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}

	return extenders
}

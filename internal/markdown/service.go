package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-mdgallery/internal/logging"
	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

var (
	// ErrDocumentRequired is returned when a nil document is rendered or written.
	ErrDocumentRequired = errors.New("markdown service: document is nil")
	// ErrContentDirMissing is returned by Load and LoadDirectory when the
	// configured base path does not exist.
	ErrContentDirMissing = errors.New("markdown service: content directory missing")
)

// Config controls how the Markdown service discovers and parses files.
type Config struct {
	BasePath  string
	Pattern   string
	Recursive bool
	Parser    interfaces.ParseOptions
}

// contextRenderer is implemented by parsers that accept a request context and
// a per-call site, GoldmarkParser among them.
type contextRenderer interface {
	Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions, site interfaces.SiteContext) ([]byte, error)
}

// Service implements interfaces.MarkdownService for filesystem-backed documents.
type Service struct {
	cfg    Config
	parser interfaces.MarkdownParser
	loader *Loader
	site   interfaces.SiteContext
	logger interfaces.Logger
}

var _ interfaces.MarkdownService = (*Service)(nil)

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithServiceLogger attaches the logger used for render diagnostics.
func WithServiceLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServiceSite sets the site handed to context aware parsers on every render.
func WithServiceSite(site interfaces.SiteContext) ServiceOption {
	return func(s *Service) {
		s.site = site
	}
}

// NewService constructs a Markdown service reading from cfg.BasePath. The base
// path is only checked when documents are loaded. When parser is nil, a
// GoldmarkParser with cfg.Parser defaults is created.
func NewService(cfg Config, parser interfaces.MarkdownParser, opts ...ServiceOption) (*Service, error) {
	filesystem := contentFS(cfg.BasePath)

	if parser == nil {
		parser = NewGoldmarkParser(cfg.Parser)
	}

	s := &Service{
		cfg:    cfg,
		parser: parser,
		loader: NewLoader(filesystem, LoaderConfig{
			BasePath:  cfg.BasePath,
			Pattern:   cfg.Pattern,
			Recursive: cfg.Recursive,
		}),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load reads and renders a single Markdown document relative to the base path.
func (s *Service) Load(ctx context.Context, name string, opts interfaces.LoadOptions) (*interfaces.Document, error) {
	if err := s.checkContentDir(); err != nil {
		return nil, err
	}
	result, err := s.loader.LoadFile(ctx, name)
	if err != nil {
		return nil, err
	}
	if _, err := s.RenderDocument(ctx, result.Document, opts.Parser); err != nil {
		return nil, err
	}
	return result.Document, nil
}

// LoadDirectory reads and renders every Markdown document within dir, sorted
// by path. The first failing document aborts the call.
func (s *Service) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	if err := s.checkContentDir(); err != nil {
		return nil, err
	}
	results, err := s.loader.LoadDirectory(ctx, dir, LoadParams{
		Pattern:   opts.Pattern,
		Recursive: opts.Recursive,
	})
	if err != nil {
		return nil, err
	}

	docs := make([]*interfaces.Document, 0, len(results))
	for _, result := range results {
		if _, err := s.RenderDocument(ctx, result.Document, opts.Parser); err != nil {
			return nil, err
		}
		docs = append(docs, result.Document)
	}
	return docs, nil
}

// Render parses Markdown bytes into HTML. Options are merged over the
// configured defaults.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	merged := mergeParseOptions(s.cfg.Parser, opts)
	if renderer, ok := s.parser.(contextRenderer); ok {
		return renderer.Render(ctx, markdown, merged, s.site)
	}
	return s.parser.ParseWithOptions(markdown, merged)
}

// RenderDocument renders the document body and stores the result in BodyHTML.
func (s *Service) RenderDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ParseOptions) ([]byte, error) {
	if doc == nil {
		return nil, ErrDocumentRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}

	logger := logging.WithDocumentContext(s.logger.WithContext(ctx), doc.FilePath, "")
	start := time.Now()
	html, err := s.Render(logging.ContextWithFields(ctx, map[string]any{
		"document_path": doc.FilePath,
	}), doc.Body, opts)
	if err != nil {
		logging.WithFields(logger, map[string]any{"error": err}).Error("markdown.render.failed")
		return nil, fmt.Errorf("markdown render document %s: %w", doc.FilePath, err)
	}
	doc.BodyHTML = html

	logging.WithFields(logger, map[string]any{
		"bytes":       len(html),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("markdown.render.completed")
	return html, nil
}

// WriteDocument writes the document's HTML to outputDir, mirroring its source
// folder. The file is named after the front matter slug, or the source base
// name when no slug is set. Documents not rendered yet are rendered first.
func (s *Service) WriteDocument(ctx context.Context, doc *interfaces.Document, outputDir string) (string, error) {
	if doc == nil {
		return "", ErrDocumentRequired
	}
	if len(doc.BodyHTML) == 0 {
		if _, err := s.RenderDocument(ctx, doc, interfaces.ParseOptions{}); err != nil {
			return "", err
		}
	}

	rel, err := OutputName(doc)
	if err != nil {
		return "", err
	}
	target := filepath.Join(outputDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("markdown write %s: %w", target, err)
	}
	if err := os.WriteFile(target, doc.BodyHTML, 0o644); err != nil {
		return "", fmt.Errorf("markdown write %s: %w", target, err)
	}

	logging.WithDocumentContext(s.logger.WithContext(ctx), doc.FilePath, target).Info("markdown.document.written")
	return target, nil
}

// OutputName returns the slash separated HTML path a document is written to.
func OutputName(doc *interfaces.Document) (string, error) {
	if doc == nil {
		return "", ErrDocumentRequired
	}
	dir := path.Dir(filepath.ToSlash(doc.FilePath))
	name := strings.TrimSuffix(path.Base(filepath.ToSlash(doc.FilePath)), path.Ext(doc.FilePath))

	if value := strings.TrimSpace(doc.FrontMatter.Slug); value != "" {
		normalized, err := slug.Normalize(value)
		if err != nil {
			return "", fmt.Errorf("markdown slug %q: %w", value, err)
		}
		if normalized != "" {
			name = normalized
		}
	}
	if name == "" || name == "." {
		return "", fmt.Errorf("markdown write: cannot derive output name for %q", doc.FilePath)
	}
	return path.Join(dir, name+".html"), nil
}

func mergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	result.Sanitize = result.Sanitize || override.Sanitize
	result.HardWraps = result.HardWraps || override.HardWraps
	result.SafeMode = result.SafeMode || override.SafeMode
	result.XHTML = result.XHTML || override.XHTML
	return result
}

func contentFS(basePath string) fs.FS {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	return os.DirFS(basePath)
}

// checkContentDir reports a missing or non-directory base path. It runs per
// load so that services used only for Render never touch the content root.
func (s *Service) checkContentDir() error {
	base := s.cfg.BasePath
	if strings.TrimSpace(base) == "" {
		base = "."
	}
	info, err := os.Stat(base)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrContentDirMissing, base, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrContentDirMissing, base)
	}
	return nil
}

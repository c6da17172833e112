package gallery

import (
	"context"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-mdgallery/internal/logging"
	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

// EmptyGalleryPolicy selects what Expand does with an index holding no images.
type EmptyGalleryPolicy int

const (
	// EmptyGalleryRender produces a fragment with an empty row.
	EmptyGalleryRender EmptyGalleryPolicy = iota
	// EmptyGalleryError fails with ErrGalleryIndexFormat.
	EmptyGalleryError
)

// ParseEmptyGalleryPolicy maps a configuration value onto a policy. Unknown
// values fall back to EmptyGalleryRender.
func ParseEmptyGalleryPolicy(value string) EmptyGalleryPolicy {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error", "fail":
		return EmptyGalleryError
	default:
		return EmptyGalleryRender
	}
}

// Expander turns gallery markers into fragments. It holds no mutable state
// and is safe for concurrent use.
type Expander struct {
	reader      interfaces.GalleryIndexReader
	logger      interfaces.Logger
	classes     Classes
	emptyPolicy EmptyGalleryPolicy
}

// Option customises an Expander.
type Option func(*Expander)

// WithIndexReader overrides the reader used to load gallery indexes.
func WithIndexReader(reader interfaces.GalleryIndexReader) Option {
	return func(e *Expander) {
		if reader != nil {
			e.reader = reader
		}
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Expander) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClasses overrides the stylesheet tokens stamped onto fragments.
func WithClasses(classes Classes) Option {
	return func(e *Expander) {
		e.classes = classes.WithDefaults()
	}
}

// WithEmptyGalleryPolicy sets how indexes without images are handled.
func WithEmptyGalleryPolicy(policy EmptyGalleryPolicy) Option {
	return func(e *Expander) {
		e.emptyPolicy = policy
	}
}

// NewExpander constructs an Expander reading indexes from the filesystem.
func NewExpander(opts ...Option) *Expander {
	e := &Expander{
		reader:  NewFileIndexReader(),
		logger:  logging.NoOp(),
		classes: DefaultClasses(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand resolves the marker's gallery against site, reads its index and
// builds the fragment. Image URLs are rewritten to root-relative paths under
// the gallery folder.
func (e *Expander) Expand(ctx context.Context, marker Marker, site interfaces.SiteContext) (*Fragment, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := marker.Validate(); err != nil {
		return nil, err
	}
	if site == nil {
		return nil, ErrSiteRequired
	}

	logger := logging.WithFields(e.baseLogger(ctx), map[string]any{
		"operation": "gallery.expand",
		"gallery":   marker.Name,
	})

	start := time.Now()
	resolved, err := site.Path(KindGallery, marker.Name)
	if err != nil {
		logging.WithFields(logger, map[string]any{
			"error": err,
		}).Error("gallery.expand.resolve_failed")
		return nil, notFoundError(marker.Name, "", err)
	}

	folder := path.Dir(resolved)
	indexFile := filepath.Join(site.OutputFolder(), filepath.FromSlash(resolved))

	images, err := e.reader.ReadIndex(ctx, indexFile)
	if err != nil {
		logging.WithFields(logger, map[string]any{
			"index_file": indexFile,
			"error":      err,
		}).Error("gallery.expand.read_failed")
		return nil, err
	}
	if len(images) == 0 && e.emptyPolicy == EmptyGalleryError {
		err := indexFormatError(indexFile, "gallery has no images")
		logging.WithFields(logger, map[string]any{
			"index_file": indexFile,
			"error":      err,
		}).Error("gallery.expand.empty")
		return nil, err
	}

	fragment := &Fragment{
		Gallery: marker.Name,
		Classes: e.classes,
		Cells:   make([]Cell, 0, len(images)),
	}
	for _, image := range images {
		fragment.Cells = append(fragment.Cells, Cell{
			Href:  RootedURL(folder, image.URL),
			Thumb: RootedURL(folder, image.URLThumb),
			Title: image.Title,
		})
	}

	logging.WithFields(logger, map[string]any{
		"index_file":  indexFile,
		"images":      len(fragment.Cells),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("gallery.expand.completed")
	return fragment, nil
}

// ExpandText replaces every marker in text with its serialised fragment. The
// first malformed marker or failed expansion aborts the whole call.
func (e *Expander) ExpandText(ctx context.Context, text string, site interfaces.SiteContext) (string, error) {
	markers := MatchAll(text)
	if len(markers) == 0 {
		return text, nil
	}

	var out strings.Builder
	out.Grow(len(text))
	last := 0
	for _, marker := range markers {
		fragment, err := e.Expand(ctx, marker, site)
		if err != nil {
			return "", err
		}
		out.WriteString(text[last:marker.Start])
		if err := fragment.Render(&out); err != nil {
			return "", err
		}
		last = marker.End
	}
	out.WriteString(text[last:])
	return out.String(), nil
}

// RootedURL joins a gallery folder and an image path into a root-relative URL.
func RootedURL(folder, rel string) string {
	return "/" + strings.TrimPrefix(path.Join(folder, rel), "/")
}

func (e *Expander) baseLogger(ctx context.Context) interfaces.Logger {
	logger := e.logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	return logger
}

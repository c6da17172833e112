package gallery

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/goliatone/go-slug"
	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

// KindGallery is the path kind gallery index pages are resolved under.
const KindGallery = "gallery"

const (
	namePlaceholder  = "{name}"
	defaultIndexFile = "index.html"
)

var (
	// ErrUnknownPathKind is returned when a site has no route for a kind.
	ErrUnknownPathKind = errors.New("gallery: unknown path kind")
	// ErrPathOutsideOutput is returned when a resolved path escapes the output folder.
	ErrPathOutsideOutput = errors.New("gallery: resolved path escapes output folder")
)

// PatternSiteConfig configures PatternSite.
type PatternSiteConfig struct {
	// OutputFolder is the root the site is rendered into.
	OutputFolder string
	// Patterns maps a path kind to a slash separated template containing
	// {name}. The gallery kind defaults to galleries/{name}/index.html.
	Patterns map[string]string
	// Prefix is prepended to every resolved path, e.g. a translation folder.
	Prefix string
	// Slugify normalises names with go-slug before substitution.
	Slugify bool
}

// PatternSite resolves paths by substituting names into per-kind templates.
type PatternSite struct {
	outputFolder string
	patterns     map[string]string
	prefix       string
	slugify      bool
}

// DefaultPatterns returns the path templates used when none are configured.
func DefaultPatterns() map[string]string {
	return map[string]string{
		KindGallery: "galleries/" + namePlaceholder + "/" + defaultIndexFile,
	}
}

// NewPatternSite builds a PatternSite from cfg.
func NewPatternSite(cfg PatternSiteConfig) *PatternSite {
	patterns := DefaultPatterns()
	for kind, pattern := range cfg.Patterns {
		kind = strings.ToLower(strings.TrimSpace(kind))
		if kind == "" || strings.TrimSpace(pattern) == "" {
			continue
		}
		patterns[kind] = strings.TrimSpace(pattern)
	}
	output := strings.TrimSpace(cfg.OutputFolder)
	if output == "" {
		output = "output"
	}
	return &PatternSite{
		outputFolder: output,
		patterns:     patterns,
		prefix:       strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
		slugify:      cfg.Slugify,
	}
}

var _ interfaces.SiteContext = (*PatternSite)(nil)

// Path implements interfaces.SiteContext.
func (s *PatternSite) Path(kind, name string) (string, error) {
	pattern, ok := s.patterns[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPathKind, kind)
	}

	name = strings.Trim(strings.TrimSpace(name), "/")
	if s.slugify {
		normalized, err := slug.Normalize(name)
		if err != nil {
			return "", fmt.Errorf("gallery: slugify %q: %w", name, err)
		}
		name = normalized
	}

	resolved := strings.ReplaceAll(pattern, namePlaceholder, name)
	if s.prefix != "" {
		resolved = s.prefix + "/" + resolved
	}
	return cleanRelative(resolved)
}

// OutputFolder implements interfaces.SiteContext.
func (s *PatternSite) OutputFolder() string {
	return s.outputFolder
}

// URLKitSiteConfig configures URLKitSite.
type URLKitSiteConfig struct {
	Manager      *urlkit.RouteManager
	Group        string
	OutputFolder string
	// NameParam is the route parameter receiving the gallery name.
	NameParam string
	// IndexFile is appended when a built route ends in a folder.
	IndexFile string
}

// URLKitSite resolves paths through go-urlkit routes named after the path
// kind. Scheme, host and the leading slash of the built URL are dropped so the
// result is relative to the output folder.
type URLKitSite struct {
	manager      *urlkit.RouteManager
	groupPath    string
	outputFolder string
	nameParam    string
	indexFile    string

	mu     sync.RWMutex
	groups map[string]*urlkit.Group
}

// NewURLKitSite builds a URLKitSite from cfg.
func NewURLKitSite(cfg URLKitSiteConfig) *URLKitSite {
	if strings.TrimSpace(cfg.NameParam) == "" {
		cfg.NameParam = "name"
	}
	if strings.TrimSpace(cfg.IndexFile) == "" {
		cfg.IndexFile = defaultIndexFile
	}
	if strings.TrimSpace(cfg.OutputFolder) == "" {
		cfg.OutputFolder = "output"
	}
	return &URLKitSite{
		manager:      cfg.Manager,
		groupPath:    strings.TrimSpace(cfg.Group),
		outputFolder: strings.TrimSpace(cfg.OutputFolder),
		nameParam:    strings.TrimSpace(cfg.NameParam),
		indexFile:    strings.TrimSpace(cfg.IndexFile),
		groups:       make(map[string]*urlkit.Group),
	}
}

var _ interfaces.SiteContext = (*URLKitSite)(nil)

// Path implements interfaces.SiteContext.
func (s *URLKitSite) Path(kind, name string) (string, error) {
	group, err := s.group()
	if err != nil {
		return "", err
	}

	route := strings.ToLower(strings.TrimSpace(kind))
	builder, err := safeBuilder(group, route)
	if err != nil {
		return "", err
	}

	built, err := builder.WithParam(s.nameParam, strings.TrimSpace(name)).Build()
	if err != nil {
		return "", fmt.Errorf("gallery: build route %q: %w", route, err)
	}

	resolved := built
	if parsed, err := url.Parse(built); err == nil {
		resolved = parsed.Path
	}
	if resolved == "" || strings.HasSuffix(resolved, "/") {
		resolved = strings.TrimSuffix(resolved, "/") + "/" + s.indexFile
	}
	return cleanRelative(resolved)
}

// OutputFolder implements interfaces.SiteContext.
func (s *URLKitSite) OutputFolder() string {
	return s.outputFolder
}

func (s *URLKitSite) group() (*urlkit.Group, error) {
	if s.manager == nil {
		return nil, fmt.Errorf("gallery: route manager not configured")
	}
	if s.groupPath == "" {
		return nil, fmt.Errorf("gallery: route group not configured")
	}

	s.mu.RLock()
	group, ok := s.groups[s.groupPath]
	s.mu.RUnlock()
	if ok {
		return group, nil
	}

	parts := strings.Split(s.groupPath, ".")
	group, err := lookupGroup(func() *urlkit.Group { return s.manager.Group(parts[0]) }, parts[0])
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		parent := group
		group, err = lookupGroup(func() *urlkit.Group { return parent.Group(part) }, part)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.groups[s.groupPath] = group
	s.mu.Unlock()
	return group, nil
}

// go-urlkit panics on unknown groups and routes.
func lookupGroup(find func() *urlkit.Group, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("gallery: route group %q not found", name)
		}
	}()
	group = find()
	if group == nil {
		return nil, fmt.Errorf("gallery: route group %q not found", name)
	}
	return group, nil
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			builder = nil
			err = fmt.Errorf("%w: %q", ErrUnknownPathKind, route)
		}
	}()
	builder = group.Builder(route)
	if builder == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPathKind, route)
	}
	return builder, nil
}

func cleanRelative(p string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(p))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("%w: %q", ErrPathOutsideOutput, p)
	}
	if strings.Contains(p, "..") {
		for _, segment := range strings.Split(p, "/") {
			if segment == ".." {
				return "", fmt.Errorf("%w: %q", ErrPathOutsideOutput, p)
			}
		}
	}
	return cleaned, nil
}

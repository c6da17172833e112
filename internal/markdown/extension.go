package markdown

import (
	"bytes"
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-mdgallery/internal/gallery"
	"github.com/goliatone/go-mdgallery/internal/logging"
	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

const (
	priorityGalleryParser      = 150 // before links, which also trigger on '['
	priorityGalleryTransformer = 1000
	priorityGalleryRenderer    = 1000
)

// ErrorPolicy decides what happens to a document when a marker cannot be
// expanded.
type ErrorPolicy int

const (
	// ErrorPolicyKeep renders the raw marker text and records the error.
	ErrorPolicyKeep ErrorPolicy = iota
	// ErrorPolicyFail makes the conversion return the recorded errors.
	ErrorPolicyFail
)

// ParseErrorPolicy maps a configuration value onto an ErrorPolicy. Unknown
// values fall back to ErrorPolicyKeep.
func ParseErrorPolicy(value string) ErrorPolicy {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "fail", "error", "abort":
		return ErrorPolicyFail
	default:
		return ErrorPolicyKeep
	}
}

var (
	siteContextKey   = parser.NewContextKey()
	renderContextKey = parser.NewContextKey()
	galleryErrorsKey = parser.NewContextKey()
)

// NewParserContext returns a goldmark parser context carrying ctx and an
// optional per-conversion site. Pass it to Convert with parser.WithContext.
func NewParserContext(ctx context.Context, site interfaces.SiteContext) parser.Context {
	pc := parser.NewContext()
	if ctx != nil {
		pc.Set(renderContextKey, ctx)
	}
	return WithSiteContext(pc, site)
}

// WithSiteContext overrides the extension's site for conversions using pc.
func WithSiteContext(pc parser.Context, site interfaces.SiteContext) parser.Context {
	if pc != nil && site != nil {
		pc.Set(siteContextKey, site)
	}
	return pc
}

// GalleryErrors returns the expansion errors recorded while converting with pc.
func GalleryErrors(pc parser.Context) []error {
	if pc == nil {
		return nil
	}
	errs, _ := pc.Get(galleryErrorsKey).([]error)
	return errs
}

func recordGalleryError(pc parser.Context, err error) {
	pc.Set(galleryErrorsKey, append(GalleryErrors(pc), err))
}

func renderContext(pc parser.Context) context.Context {
	if ctx, ok := pc.Get(renderContextKey).(context.Context); ok && ctx != nil {
		return ctx
	}
	return context.Background()
}

// GalleryExtension expands `[:gallery: <name>]` markers while converting
// Markdown with goldmark.
type GalleryExtension struct {
	expander *gallery.Expander
	site     interfaces.SiteContext
	logger   interfaces.Logger
	policy   ErrorPolicy
}

// ExtensionOption customises a GalleryExtension.
type ExtensionOption func(*GalleryExtension)

// WithSite sets the site used when the parser context carries none.
func WithSite(site interfaces.SiteContext) ExtensionOption {
	return func(e *GalleryExtension) {
		e.site = site
	}
}

// WithExpander replaces the default expander.
func WithExpander(expander *gallery.Expander) ExtensionOption {
	return func(e *GalleryExtension) {
		if expander != nil {
			e.expander = expander
		}
	}
}

// WithExtensionLogger attaches the logger used to report failed expansions.
func WithExtensionLogger(logger interfaces.Logger) ExtensionOption {
	return func(e *GalleryExtension) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithErrorPolicy selects how failed expansions affect the conversion.
func WithErrorPolicy(policy ErrorPolicy) ExtensionOption {
	return func(e *GalleryExtension) {
		e.policy = policy
	}
}

// NewGalleryExtension builds the extension.
func NewGalleryExtension(opts ...ExtensionOption) *GalleryExtension {
	e := &GalleryExtension{
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.expander == nil {
		e.expander = gallery.NewExpander(gallery.WithLogger(e.logger))
	}
	return e
}

// Policy reports the configured error policy.
func (e *GalleryExtension) Policy() ErrorPolicy {
	return e.policy
}

// Extend implements goldmark.Extender.
func (e *GalleryExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(util.Prioritized(&galleryParser{}, priorityGalleryParser)),
		parser.WithASTTransformers(util.Prioritized(&galleryTransformer{ext: e}, priorityGalleryTransformer)),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(util.Prioritized(&galleryRenderer{}, priorityGalleryRenderer)),
	)
}

var _ goldmark.Extender = (*GalleryExtension)(nil)

type galleryParser struct{}

var _ parser.InlineParser = (*galleryParser)(nil)

func (p *galleryParser) Trigger() []byte {
	return []byte{'['}
}

// maxMarkerLines bounds how far a wrapped marker is followed: the literal, the
// name and the closing bracket may each sit on their own line.
const maxMarkerLines = 3

// kindLinkLabelState is the kind goldmark's link parser gives the placeholder
// of an open `[` label.
const kindLinkLabelState = "LinkLabelState"

func (p *galleryParser) Parse(parent ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, []byte(gallery.MarkerLiteral)) {
		return nil
	}
	// Inside a link label the brackets belong to the link; anchors cannot
	// nest, so the marker stays text.
	if insideLinkLabel(parent) {
		return nil
	}
	if marker, ok := gallery.ScanPrefix(line); ok {
		block.Advance(marker.End)
		return NewGallery(marker.Name, []byte(marker.Raw))
	}
	return p.parseWrapped(block)
}

// parseWrapped matches a marker broken by soft line breaks. The reader is
// left untouched when no marker closes within maxMarkerLines.
func (p *galleryParser) parseWrapped(block text.Reader) ast.Node {
	savedLine, savedSegment := block.Position()

	var (
		buf    []byte
		widths []int
	)
	for range maxMarkerLines {
		line, _ := block.PeekLine()
		if line == nil {
			break
		}
		buf = append(buf, line...)
		widths = append(widths, len(line))

		if marker, ok := gallery.ScanPrefix(buf); ok {
			block.SetPosition(savedLine, savedSegment)
			remaining := marker.End
			for _, width := range widths {
				if remaining < width {
					block.Advance(remaining)
					break
				}
				remaining -= width
				block.AdvanceLine()
			}
			return NewGallery(marker.Name, []byte(marker.Raw))
		}
		if bytes.IndexByte(line, ']') >= 0 {
			break
		}
		block.AdvanceLine()
	}

	block.SetPosition(savedLine, savedSegment)
	return nil
}

func insideLinkLabel(parent ast.Node) bool {
	if parent == nil {
		return false
	}
	for n := parent.LastChild(); n != nil; n = n.PreviousSibling() {
		if n.Kind().String() == kindLinkLabelState {
			return true
		}
	}
	return false
}

type galleryTransformer struct {
	ext *GalleryExtension
}

var _ parser.ASTTransformer = (*galleryTransformer)(nil)

func (t *galleryTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	var markers []*Gallery
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if marker, ok := n.(*Gallery); ok {
				markers = append(markers, marker)
			}
		}
		return ast.WalkContinue, nil
	})
	if len(markers) == 0 {
		return
	}

	ctx := renderContext(pc)
	site := t.ext.site
	if override, ok := pc.Get(siteContextKey).(interfaces.SiteContext); ok && override != nil {
		site = override
	}

	for _, marker := range markers {
		fragment, err := t.ext.expander.Expand(ctx, gallery.Marker{
			Name: marker.Name,
			Raw:  string(marker.Raw),
		}, site)
		if err != nil {
			marker.Err = err
			recordGalleryError(pc, err)
			logging.WithFields(t.ext.logger, map[string]any{
				"gallery": marker.Name,
				"marker":  string(marker.Raw),
				"error":   err,
			}).Warn("markdown.gallery.expand_failed")
			continue
		}
		replaceMarker(marker, buildContainer(fragment), reader.Source())
	}
}

// replaceMarker swaps marker for container. A paragraph holding nothing but
// the marker is replaced as a whole so the container is not nested in <p>.
func replaceMarker(marker *Gallery, container *GalleryContainer, source []byte) {
	parent := marker.Parent()
	if parent == nil {
		return
	}
	if paragraph, ok := parent.(*ast.Paragraph); ok && soleContent(paragraph, marker, source) {
		if grand := paragraph.Parent(); grand != nil {
			container.Block = true
			grand.ReplaceChild(grand, paragraph, container)
			return
		}
	}
	parent.ReplaceChild(parent, marker, container)
}

func soleContent(paragraph *ast.Paragraph, marker *Gallery, source []byte) bool {
	for child := paragraph.FirstChild(); child != nil; child = child.NextSibling() {
		if child == marker {
			continue
		}
		txt, ok := child.(*ast.Text)
		if !ok || len(bytes.TrimSpace(txt.Segment.Value(source))) > 0 {
			return false
		}
	}
	return true
}

func buildContainer(fragment *gallery.Fragment) *GalleryContainer {
	classes := fragment.Classes.WithDefaults()

	container := NewGalleryContainer(fragment.Gallery)
	container.SetAttributeString("id", []byte(classes.ContainerID))

	row := NewGalleryRow()
	row.SetAttributeString("class", []byte(classes.RowClass))
	container.AppendChild(container, row)

	for _, cell := range fragment.Cells {
		link := ast.NewLink()
		link.Destination = []byte(cell.Href)
		link.SetAttributeString("class", []byte(classes.LinkClass))

		thumb := ast.NewLink()
		thumb.Destination = []byte(cell.Thumb)
		image := ast.NewImage(thumb)
		if cell.Title != "" {
			image.AppendChild(image, ast.NewString([]byte(cell.Title)))
		}
		link.AppendChild(link, image)

		wrapper := NewGalleryCell()
		wrapper.SetAttributeString("class", []byte(classes.CellClass))
		wrapper.AppendChild(wrapper, link)
		row.AppendChild(row, wrapper)
	}
	return container
}

type galleryRenderer struct{}

var _ renderer.NodeRenderer = (*galleryRenderer)(nil)

func (r *galleryRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindGallery, r.renderMarker)
	reg.Register(KindGalleryContainer, r.renderContainer)
	reg.Register(KindGalleryRow, r.renderDiv)
	reg.Register(KindGalleryCell, r.renderDiv)
}

func (r *galleryRenderer) renderMarker(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.Write(util.EscapeHTML(node.(*Gallery).Raw))
	}
	return ast.WalkSkipChildren, nil
}

func (r *galleryRenderer) renderContainer(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	status, err := r.renderDiv(w, source, node, entering)
	if !entering && node.(*GalleryContainer).Block {
		_ = w.WriteByte('\n')
	}
	return status, err
}

func (r *galleryRenderer) renderDiv(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</div>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("<div")
	if node.Attributes() != nil {
		html.RenderAttributes(w, node, nil)
	}
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}

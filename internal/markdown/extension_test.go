package markdown

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-mdgallery/internal/gallery"
	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

const dogCell = `<div class="col-xs-6 col-md-3"><a href="/galleries/dog_pics/1.jpg" class="thumbnail image-reference"><img src="/galleries/dog_pics/t1.jpg" alt=""></a></div>`

func testSite() interfaces.SiteContext {
	return gallery.NewPatternSite(gallery.PatternSiteConfig{
		OutputFolder: filepath.Join("testdata", "output"),
	})
}

func newGalleryParser(opts ...ExtensionOption) *GoldmarkParser {
	opts = append([]ExtensionOption{WithSite(testSite())}, opts...)
	return NewGoldmarkParser(interfaces.ParseOptions{}, WithGalleryExtension(NewGalleryExtension(opts...)))
}

func TestGalleryExtension_InlineMarker(t *testing.T) {
	html, err := newGalleryParser().Parse([]byte("See [:gallery: dog_pics]"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.HasPrefix(got, `<p>See <div id="gallery-container"><div class="row">`+dogCell) {
		t.Fatalf("unexpected gallery markup: %q", got)
	}
	if !strings.Contains(got, `<img src="/galleries/dog_pics/t2.jpg" alt="Rex">`) {
		t.Fatalf("expected second cell with alt text, got %q", got)
	}
	if strings.Count(got, `class="col-xs-6 col-md-3"`) != 2 {
		t.Fatalf("expected two cells, got %q", got)
	}
	if strings.Contains(got, "[:gallery:") {
		t.Fatalf("expected marker to be replaced, got %q", got)
	}
}

func TestGalleryExtension_StandaloneMarkerReplacesParagraph(t *testing.T) {
	html, err := newGalleryParser().Parse([]byte("Intro\n\n[:gallery: dog_pics]\n\nOutro\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if strings.Contains(got, `<p><div`) {
		t.Fatalf("expected gallery outside of a paragraph, got %q", got)
	}
	if !strings.Contains(got, "<p>Intro</p>\n<div id=\"gallery-container\">") {
		t.Fatalf("expected container right after the intro, got %q", got)
	}
	if !strings.Contains(got, "</div></div>\n<p>Outro</p>") {
		t.Fatalf("expected outro after the container, got %q", got)
	}
}

func TestGalleryExtension_KeepPolicyLeavesMarker(t *testing.T) {
	p := newGalleryParser()
	pc := NewParserContext(context.Background(), nil)

	engine := goldmark.New(goldmark.WithExtensions(p.gallery))
	var buf bytes.Buffer
	if err := engine.Convert([]byte("Broken [:gallery: missing] and [:gallery: ]"), &buf, parser.WithContext(pc)); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "Broken [:gallery: missing] and [:gallery: ]") {
		t.Fatalf("expected raw markers in output, got %q", got)
	}

	errs := GalleryErrors(pc)
	if len(errs) != 2 {
		t.Fatalf("expected 2 recorded errors, got %v", errs)
	}
	if !gallery.IsNotFound(errs[0]) {
		t.Fatalf("expected not found error, got %v", errs[0])
	}
	if !gallery.IsMalformedMarker(errs[1]) {
		t.Fatalf("expected malformed marker error, got %v", errs[1])
	}
}

func TestGalleryExtension_FailPolicyReturnsErrors(t *testing.T) {
	p := newGalleryParser(WithErrorPolicy(ErrorPolicyFail))

	_, err := p.Parse([]byte("[:gallery: missing]"))
	if err == nil {
		t.Fatalf("expected error under fail policy")
	}
	if !errors.Is(err, gallery.ErrGalleryNotFound) {
		t.Fatalf("expected ErrGalleryNotFound, got %v", err)
	}
}

func TestGalleryExtension_SiteFromParserContext(t *testing.T) {
	p := NewGoldmarkParser(interfaces.ParseOptions{}, WithGalleryExtension(
		NewGalleryExtension(WithErrorPolicy(ErrorPolicyFail)),
	))

	if _, err := p.Parse([]byte("[:gallery: dog_pics]")); !errors.Is(err, gallery.ErrSiteRequired) {
		t.Fatalf("expected ErrSiteRequired without a site, got %v", err)
	}

	html, err := p.Render(context.Background(), []byte("[:gallery: dog_pics]"), interfaces.ParseOptions{}, testSite())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(html), dogCell) {
		t.Fatalf("expected gallery markup, got %q", html)
	}
}

func TestGalleryExtension_CustomClasses(t *testing.T) {
	expander := gallery.NewExpander(gallery.WithClasses(gallery.Classes{
		ContainerID: "photos",
		CellClass:   "col-6",
	}))
	html, err := newGalleryParser(WithExpander(expander)).Parse([]byte("[:gallery: dog_pics]"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, `<div id="photos"><div class="row"><div class="col-6">`) {
		t.Fatalf("expected custom classes, got %q", got)
	}
}

func TestGalleryExtension_XHTMLAndSanitize(t *testing.T) {
	p := newGalleryParser()

	html, err := p.ParseWithOptions([]byte("[:gallery: dog_pics]"), interfaces.ParseOptions{XHTML: true})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}
	if !strings.Contains(string(html), `alt="" />`) {
		t.Fatalf("expected XHTML image tags, got %q", html)
	}

	html, err = p.ParseWithOptions([]byte("[:gallery: dog_pics]\n\n<script>alert(1)</script>"), interfaces.ParseOptions{Sanitize: true})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}
	got := string(html)
	if strings.Contains(got, "<script>") {
		t.Fatalf("expected script to be removed, got %q", got)
	}
	for _, want := range []string{`id="gallery-container"`, `class="row"`, `class="thumbnail image-reference"`, `src="/galleries/dog_pics/t1.jpg"`} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %s to survive sanitizing, got %q", want, got)
		}
	}
}

func TestGalleryParser_ProducesMarkerNodes(t *testing.T) {
	source := []byte("a [:gallery: one] b [:gallery:] c")
	md := goldmark.New(goldmark.WithExtensions(NewGalleryExtension()))
	doc := md.Parser().Parse(text.NewReader(source))

	var names []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if marker, ok := n.(*Gallery); ok && entering {
			names = append(names, marker.Name)
		}
		return ast.WalkContinue, nil
	})
	if len(names) != 2 || names[0] != "one" || names[1] != "" {
		t.Fatalf("unexpected markers %v", names)
	}
}

func TestParseErrorPolicy(t *testing.T) {
	if ParseErrorPolicy("FAIL") != ErrorPolicyFail {
		t.Fatalf("expected fail policy")
	}
	if ParseErrorPolicy("") != ErrorPolicyKeep {
		t.Fatalf("expected keep policy by default")
	}
}

func TestGalleryExtension_MarkerWrappedAcrossLines(t *testing.T) {
	for _, source := range []string{
		"See [:gallery:\ndog_pics]",
		"See [:gallery: dog_pics\n]",
		"See [:gallery:\ndog_pics\n] after",
	} {
		html, err := newGalleryParser().Parse([]byte(source))
		if err != nil {
			t.Fatalf("Parse(%q): %v", source, err)
		}
		got := string(html)
		if !strings.Contains(got, `<div id="gallery-container"><div class="row">`+dogCell) {
			t.Fatalf("expected wrapped marker in %q expanded, got %q", source, got)
		}
		if strings.Contains(got, "[:gallery:") {
			t.Fatalf("expected no raw marker left for %q, got %q", source, got)
		}
	}
}

func TestGalleryExtension_UnclosedMarkerStaysText(t *testing.T) {
	html, err := newGalleryParser().Parse([]byte("See [:gallery:\ndog_pics and more\ntext"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := string(html)
	if strings.Contains(got, "gallery-container") {
		t.Fatalf("unclosed marker should not expand, got %q", got)
	}
	if !strings.Contains(got, "[:gallery:") || !strings.Contains(got, "text") {
		t.Fatalf("expected source text preserved, got %q", got)
	}
}

func TestGalleryExtension_MarkerInsideLinkLabelKeepsLink(t *testing.T) {
	html, err := newGalleryParser().Parse([]byte("[look [:gallery: dog_pics]](http://x)"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := string(html)
	if !strings.Contains(got, `<a href="http://x">`) {
		t.Fatalf("expected link preserved, got %q", got)
	}
	if !strings.Contains(got, "[:gallery: dog_pics]") {
		t.Fatalf("expected marker kept as link text, got %q", got)
	}
	if strings.Contains(got, "gallery-container") {
		t.Fatalf("gallery must not be nested in a link, got %q", got)
	}
}

package markdown

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

func TestParseFrontMatter(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")

	fm, body, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	if fm.Title != "Sample Document" {
		t.Fatalf("FrontMatter Title mismatch, got %q", fm.Title)
	}
	if fm.Slug != "sample-document" {
		t.Fatalf("FrontMatter Slug mismatch, got %q", fm.Slug)
	}
	if len(fm.Tags) != 2 || fm.Tags[0] != "dogs" {
		t.Fatalf("FrontMatter Tags mismatch: %#v", fm.Tags)
	}
	if fm.Date.IsZero() {
		t.Fatalf("expected FrontMatter Date to be parsed")
	}
	if fm.Custom["custom_flag"] != true {
		t.Fatalf("FrontMatter Custom flag missing: %#v", fm.Custom)
	}
	if fm.Raw["summary"] != "Sample summary goes here" {
		t.Fatalf("FrontMatter Raw summary missing: %#v", fm.Raw)
	}
	if !strings.Contains(string(body), "# Sample Document") || !strings.Contains(string(body), "[:gallery: dog_pics]") {
		t.Fatalf("Markdown body not returned correctly: %q", string(body))
	}
}

func TestParseFrontMatterWithoutMetadata(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte("just text"))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "" || len(fm.Custom) != 0 {
		t.Fatalf("expected empty front matter, got %#v", fm)
	}
	if string(body) != "just text" {
		t.Fatalf("expected body to be returned untouched, got %q", body)
	}
}

func TestBuildDocument(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")
	modified := time.Now().UTC()

	doc, err := BuildDocument("testdata/basic.md", data, modified)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}

	if doc.FilePath != "testdata/basic.md" {
		t.Fatalf("expected FilePath to be set, got %q", doc.FilePath)
	}
	if doc.LastModified != modified {
		t.Fatalf("expected LastModified to equal the provided timestamp")
	}
	if len(doc.Body) == 0 || len(doc.BodyHTML) != 0 {
		t.Fatalf("expected Body set and BodyHTML empty")
	}
}

func TestGoldmarkParser_Parse(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.Parse([]byte("# Heading\n\nHello **world**"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Heading</h1>") {
		t.Fatalf("expected rendered HTML to include <h1>Heading</h1>, got %q", got)
	}
	if !strings.Contains(got, "<strong>world</strong>") {
		t.Fatalf("expected rendered HTML to include <strong>, got %q", got)
	}
}

func TestGoldmarkParser_ParseWithOptions(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.ParseWithOptions([]byte("line one\nline two"), interfaces.ParseOptions{
		HardWraps: true,
	})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}

	if !strings.Contains(string(html), "line one<br>") {
		t.Fatalf("expected hard wraps in HTML output, got %q", string(html))
	}
}

func TestGoldmarkParser_SafeModeEscapesRawHTML(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.ParseWithOptions([]byte("<span>raw</span>"), interfaces.ParseOptions{SafeMode: true})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}
	if strings.Contains(string(html), "<span>") {
		t.Fatalf("expected raw HTML to be omitted in safe mode, got %q", html)
	}
}

func TestGoldmarkParser_UnknownExtensionsIgnored(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.ParseWithOptions([]byte("| a |\n|---|\n| b |\n\n[:gallery: dog_pics]"), interfaces.ParseOptions{
		Extensions: []string{"Table", "nope", "table"},
	})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}
	got := string(html)
	if !strings.Contains(got, "<table>") {
		t.Fatalf("expected table extension to be applied, got %q", got)
	}
	if !strings.Contains(got, "[:gallery: dog_pics]") {
		t.Fatalf("expected marker to stay literal without the gallery extension, got %q", got)
	}
}

func TestGoldmarkParser_ExtensionsListsGallery(t *testing.T) {
	names := NewGoldmarkParser(interfaces.ParseOptions{}).Extensions()
	for _, name := range names {
		if name == GalleryExtensionName {
			return
		}
	}
	t.Fatalf("expected %q in %v", GalleryExtensionName, names)
}

func readFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}

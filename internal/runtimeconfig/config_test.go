package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-mdgallery/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"content dir", func(c *runtimeconfig.Config) { c.Markdown.ContentDir = " " }, runtimeconfig.ErrContentDirRequired},
		{"output dir", func(c *runtimeconfig.Config) { c.Markdown.OutputDir = "" }, runtimeconfig.ErrOutputDirRequired},
		{"output folder", func(c *runtimeconfig.Config) { c.Site.OutputFolder = "" }, runtimeconfig.ErrOutputFolderRequired},
		{"site provider", func(c *runtimeconfig.Config) { c.Site.Provider = "hugo" }, runtimeconfig.ErrSiteProviderUnknown},
		{"pattern placeholder", func(c *runtimeconfig.Config) { c.Site.Patterns = map[string]string{"gallery": "galleries/index.html"} }, runtimeconfig.ErrPatternMissingName},
		{"route group", func(c *runtimeconfig.Config) { c.Site.Provider = "urlkit" }, runtimeconfig.ErrRouteGroupRequired},
		{"routes", func(c *runtimeconfig.Config) {
			c.Site.Provider = "urlkit"
			c.Site.RouteGroup = "site"
		}, runtimeconfig.ErrRoutesRequired},
		{"empty policy", func(c *runtimeconfig.Config) { c.Gallery.EmptyPolicy = "skip" }, runtimeconfig.ErrEmptyPolicyInvalid},
		{"error policy", func(c *runtimeconfig.Config) { c.Gallery.ErrorPolicy = "ignore" }, runtimeconfig.ErrErrorPolicyInvalid},
		{"logging provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"logging level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"logging format", func(c *runtimeconfig.Config) {
			c.Logging.Provider = "gologger"
			c.Logging.Format = "xml"
		}, runtimeconfig.ErrLoggingFormatInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := runtimeconfig.Parse([]byte(`
markdown:
  content_dir: content
  parser:
    extensions: [gfm, gallery]
    sanitize: true
gallery:
  cell_class: col-6
  error_policy: fail
site:
  provider: urlkit
  output_folder: public
  route_group: site
  routes:
    - name: site
      base_url: https://example.com
      paths:
        gallery: /galleries/:name/index.html
logging:
  provider: gologger
  format: json
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Markdown.ContentDir != "content" || cfg.Markdown.OutputDir != "output" {
		t.Fatalf("unexpected markdown config: %#v", cfg.Markdown)
	}
	if !cfg.Markdown.Recursive {
		t.Fatalf("expected default recursive flag to survive")
	}
	if len(cfg.Markdown.Parser.Extensions) != 2 || !cfg.Markdown.Parser.Sanitize {
		t.Fatalf("unexpected parser config: %#v", cfg.Markdown.Parser)
	}
	if cfg.Gallery.CellClass != "col-6" || cfg.Gallery.RowClass != "row" {
		t.Fatalf("unexpected gallery config: %#v", cfg.Gallery)
	}

	routes := cfg.Site.URLKitConfig()
	if routes == nil || len(routes.Groups) != 1 {
		t.Fatalf("expected one route group, got %#v", routes)
	}
	if routes.Groups[0].Paths["gallery"] != "/galleries/:name/index.html" {
		t.Fatalf("unexpected route paths: %#v", routes.Groups[0].Paths)
	}
}

func TestParseRejectsInvalidConfig(t *testing.T) {
	_, err := runtimeconfig.Parse([]byte("site:\n  provider: hugo\n"))
	if !errors.Is(err, runtimeconfig.ErrSiteProviderUnknown) {
		t.Fatalf("expected ErrSiteProviderUnknown, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := runtimeconfig.Load("")
	if err != nil {
		t.Fatalf("Load without a path: %v", err)
	}
	if cfg.Site.OutputFolder != "output" {
		t.Fatalf("expected defaults without a path, got %#v", cfg.Site)
	}

	if _, err := runtimeconfig.Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, runtimeconfig.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound for a named missing file, got %v", err)
	}

	path := filepath.Join(dir, "mdgallery.yaml")
	if err := os.WriteFile(path, []byte("site:\n  prefix: es\n  slugify: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Site.Prefix != "es" || !cfg.Site.Slugify {
		t.Fatalf("unexpected site config: %#v", cfg.Site)
	}

	if err := os.WriteFile(path, []byte("site: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := runtimeconfig.Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

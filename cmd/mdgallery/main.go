package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/goliatone/go-mdgallery"
	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

var moduleBuilder = mdgallery.New

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stdin); err != nil {
		log.Fatalf("mdgallery: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, stdin io.Reader) error {
	fs := flag.NewFlagSet("mdgallery", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML configuration file (defaults apply when empty)")
	contentDir := fs.String("content-dir", "", "Markdown content root (overrides markdown.content_dir)")
	outputDir := fs.String("output-dir", "", "Directory receiving rendered HTML (overrides markdown.output_dir)")
	siteOutput := fs.String("site-output", "", "Folder holding rendered gallery indexes (overrides site.output_folder)")
	logLevel := fs.String("log-level", "", "Log level (overrides logging.level)")
	filePath := fs.String("file", "", "Render a single document, relative to the content root")
	directory := fs.String("directory", ".", "Directory to render, relative to the content root")
	pattern := fs.String("pattern", "", "Glob pattern applied when discovering markdown files")
	skipDrafts := fs.Bool("skip-drafts", false, "Do not write documents marked draft")
	dryRun := fs.Bool("dry-run", false, "Render without writing output files")
	preview := fs.Bool("preview", false, "Print the rendered HTML of --file instead of writing it")
	expand := fs.String("expand", "", "Expand gallery markers in an HTML file (use - for stdin) and print the result")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := mdgallery.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *contentDir != "" {
		cfg.Markdown.ContentDir = *contentDir
	}
	if *outputDir != "" {
		cfg.Markdown.OutputDir = *outputDir
	}
	if *siteOutput != "" {
		cfg.Site.OutputFolder = *siteOutput
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	module, err := moduleBuilder(cfg, mdgallery.WithWrittenCallback(func(doc *interfaces.Document, target string) {
		switch {
		case target != "":
			fmt.Fprintf(stdout, "%s -> %s\n", doc.FilePath, target)
		case *dryRun:
			fmt.Fprintf(stdout, "%s (dry run)\n", doc.FilePath)
		default:
			fmt.Fprintf(stdout, "%s (skipped)\n", doc.FilePath)
		}
	}))
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	switch {
	case *expand != "":
		return expandFile(ctx, module, *expand, stdout, stdin)
	case *preview:
		if *filePath == "" {
			return fmt.Errorf("--preview requires --file")
		}
		doc, err := module.Markdown().Load(ctx, *filePath, interfaces.LoadOptions{})
		if err != nil {
			return fmt.Errorf("load %s: %w", *filePath, err)
		}
		_, err = stdout.Write(doc.BodyHTML)
		return err
	case *filePath != "":
		return module.RenderFile(ctx, mdgallery.RenderFileCommand{
			Path:      *filePath,
			OutputDir: cfg.Markdown.OutputDir,
			DryRun:    *dryRun,
		})
	default:
		cmd := mdgallery.RenderDirectoryCommand{
			Directory:  *directory,
			OutputDir:  cfg.Markdown.OutputDir,
			Pattern:    strings.TrimSpace(*pattern),
			SkipDrafts: *skipDrafts || cfg.Markdown.SkipDrafts,
			DryRun:     *dryRun,
		}
		return module.RenderDirectory(ctx, cmd)
	}
}

func expandFile(ctx context.Context, module *mdgallery.Module, name string, stdout io.Writer, stdin io.Reader) error {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	out, err := module.ExpandText(ctx, string(data))
	if err != nil {
		return err
	}
	_, err = io.WriteString(stdout, out)
	return err
}

package rendercmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-mdgallery/internal/commands"
	"github.com/goliatone/go-mdgallery/internal/logging"
	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

const (
	renderFileOperation      = "render.file"
	renderDirectoryOperation = "render.directory"
)

var (
	_ command.Commander[RenderFileCommand]      = (*RenderFileHandler)(nil)
	_ command.Commander[RenderDirectoryCommand] = (*RenderDirectoryHandler)(nil)
)

// Written reports a rendered document and where it was written. Target is
// empty for dry runs and skipped drafts.
type Written func(doc *interfaces.Document, target string)

// RenderFileHandler renders a single document through the Markdown service.
type RenderFileHandler struct {
	inner *commands.Handler[RenderFileCommand]
}

// NewRenderFileHandler creates a handler bound to service. parse is applied
// to every render; onWritten may be nil.
func NewRenderFileHandler(service interfaces.MarkdownService, parse interfaces.ParseOptions, logger interfaces.Logger, onWritten Written, opts ...commands.HandlerOption[RenderFileCommand]) *RenderFileHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg RenderFileCommand) error {
		doc, err := service.Load(ctx, msg.Path, interfaces.LoadOptions{Parser: parse})
		if err != nil {
			return err
		}
		target, err := write(ctx, service, doc, msg.OutputDir, msg.DryRun)
		if err != nil {
			return err
		}
		report(onWritten, doc, target)

		logging.WithDocumentContext(baseLogger, doc.FilePath, target).Info("render.command.file.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderFileCommand]{
		commands.WithLogger[RenderFileCommand](baseLogger),
		commands.WithOperation[RenderFileCommand](renderFileOperation),
		commands.WithMessageFields(func(msg RenderFileCommand) map[string]any {
			fields := map[string]any{"path": msg.Path}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderFileCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RenderFileHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RenderFileCommand].
func (h *RenderFileHandler) Execute(ctx context.Context, msg RenderFileCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RenderDirectoryHandler renders every document under a directory.
type RenderDirectoryHandler struct {
	inner *commands.Handler[RenderDirectoryCommand]
}

// NewRenderDirectoryHandler creates a handler bound to service. Documents
// are written in path order; the first failure stops the run.
func NewRenderDirectoryHandler(service interfaces.MarkdownService, parse interfaces.ParseOptions, logger interfaces.Logger, onWritten Written, opts ...commands.HandlerOption[RenderDirectoryCommand]) *RenderDirectoryHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg RenderDirectoryCommand) error {
		docs, err := service.LoadDirectory(ctx, msg.Directory, interfaces.LoadOptions{
			Recursive: msg.Recursive,
			Pattern:   msg.Pattern,
			Parser:    parse,
		})
		if err != nil {
			return err
		}

		written, skipped := 0, 0
		for _, doc := range docs {
			if msg.SkipDrafts && doc.FrontMatter.Draft {
				skipped++
				report(onWritten, doc, "")
				continue
			}
			target, err := write(ctx, service, doc, msg.OutputDir, msg.DryRun)
			if err != nil {
				return err
			}
			if target != "" {
				written++
			}
			report(onWritten, doc, target)
		}

		logging.WithFields(baseLogger, map[string]any{
			"directory":     msg.Directory,
			"documents":     len(docs),
			"written_count": written,
			"skipped_count": skipped,
			"dry_run":       msg.DryRun,
		}).Info("render.command.directory.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderDirectoryCommand]{
		commands.WithLogger[RenderDirectoryCommand](baseLogger),
		commands.WithOperation[RenderDirectoryCommand](renderDirectoryOperation),
		commands.WithMessageFields(func(msg RenderDirectoryCommand) map[string]any {
			fields := map[string]any{"directory": msg.Directory}
			if msg.Pattern != "" {
				fields["pattern"] = msg.Pattern
			}
			if msg.Recursive != nil {
				fields["recursive"] = *msg.Recursive
			}
			if msg.SkipDrafts {
				fields["skip_drafts"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderDirectoryCommand](baseLogger)),
		commands.WithTimeout[RenderDirectoryCommand](commands.DirectoryCommandTimeout),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RenderDirectoryHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RenderDirectoryCommand].
func (h *RenderDirectoryHandler) Execute(ctx context.Context, msg RenderDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

func write(ctx context.Context, service interfaces.MarkdownService, doc *interfaces.Document, outputDir string, dryRun bool) (string, error) {
	if dryRun {
		return "", nil
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	return service.WriteDocument(ctx, doc, outputDir)
}

func report(fn Written, doc *interfaces.Document, target string) {
	if fn != nil {
		fn(doc, target)
	}
}

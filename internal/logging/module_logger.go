package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

const (
	rootModule     = "mdgallery"
	galleryModule  = "mdgallery.gallery"
	markdownModule = "mdgallery.markdown"
	commandsModule = "mdgallery.commands"
)

const (
	fieldDocumentPath = "document_path"
	fieldOutputPath   = "output_path"
)

// ModuleLogger returns a module-scoped logger, falling back to NoOp when no
// provider is supplied. The module name is attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// GalleryLogger returns the logger used by the gallery expander.
func GalleryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, galleryModule)
}

// MarkdownLogger returns the logger used by markdown rendering.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// CommandsLogger returns the logger used by command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithDocumentContext adds the document source and output paths. Empty values
// are skipped.
func WithDocumentContext(logger interfaces.Logger, documentPath, outputPath string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(documentPath); trimmed != "" {
		fields[fieldDocumentPath] = trimmed
	}
	if trimmed := strings.TrimSpace(outputPath); trimmed != "" {
		fields[fieldOutputPath] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}

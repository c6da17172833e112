package rendercmd

import (
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	renderFileMessageType      = "mdgallery.render.file"
	renderDirectoryMessageType = "mdgallery.render.directory"
)

// RenderFileCommand renders one Markdown document, expanding its gallery
// markers, and writes the HTML under OutputDir.
type RenderFileCommand struct {
	// Path is relative to the service's content directory.
	Path string `json:"path"`
	// OutputDir receives the rendered HTML.
	OutputDir string `json:"output_dir"`
	// DryRun renders without writing.
	DryRun bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (RenderFileCommand) Type() string { return renderFileMessageType }

// Validate ensures the document path and output directory are usable.
func (cmd RenderFileCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(relativePath("mdgallery.render.file.path_invalid"))),
		validation.Field(&cmd.OutputDir, validation.When(!cmd.DryRun, validation.Required.Error("output directory is required"))),
	)
}

// RenderDirectoryCommand renders every Markdown document under Directory.
type RenderDirectoryCommand struct {
	Directory string `json:"directory"`
	OutputDir string `json:"output_dir"`
	Pattern   string `json:"pattern,omitempty"`
	Recursive *bool  `json:"recursive,omitempty"`
	// SkipDrafts leaves documents with `draft: true` unwritten.
	SkipDrafts bool `json:"skip_drafts,omitempty"`
	DryRun     bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (RenderDirectoryCommand) Type() string { return renderDirectoryMessageType }

// Validate ensures the directory and output directory are usable.
func (cmd RenderDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(relativePath("mdgallery.render.directory.path_invalid"))),
		validation.Field(&cmd.OutputDir, validation.When(!cmd.DryRun, validation.Required.Error("output directory is required"))),
		validation.Field(&cmd.Pattern, validation.By(func(value any) error {
			pattern, _ := value.(string)
			if pattern == "" {
				return nil
			}
			if _, err := filepath.Match(strings.ReplaceAll(pattern, "**/", ""), "x"); err != nil {
				return validation.NewError("mdgallery.render.directory.pattern_invalid", "pattern is not a valid glob")
			}
			return nil
		})),
	)
}

// relativePath rejects blank values and paths climbing out of the content
// directory.
func relativePath(code string) validation.RuleFunc {
	return func(value any) error {
		raw, _ := value.(string)
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return validation.NewError(code, "path is required")
		}
		if filepath.IsAbs(trimmed) {
			return nil
		}
		clean := filepath.ToSlash(filepath.Clean(trimmed))
		if clean == ".." || strings.HasPrefix(clean, "../") {
			return validation.NewError(code, "path must stay inside the content directory")
		}
		return nil
	}
}

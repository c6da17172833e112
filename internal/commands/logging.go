package commands

import (
	"strings"

	"github.com/goliatone/go-mdgallery/internal/logging"
	"github.com/goliatone/go-mdgallery/pkg/interfaces"
)

// CommandLogger returns the commands logger tagged with the handler module
// so every execution carries the same structured fields.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	return logging.WithFields(logging.CommandsLogger(provider), map[string]any{
		"component":      "command",
		"command_module": name,
	})
}

package commands

import (
	"strings"

	"github.com/goliatone/go-lute/internal/logging"
	"github.com/goliatone/go-lute/pkg/interfaces"
)

// Logger returns the command logger for one command group, e.g. "render".
func Logger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.TrimSpace(group)
	if group == "" {
		group = "core"
	}
	return logging.WithFields(logging.CommandsLogger(provider), map[string]any{
		"component":     "command",
		"command_group": group,
	})
}

package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-lute/pkg/interfaces"
)

const (
	rootModule      = "lute"
	engineModule    = "lute.engine"
	documentsModule = "lute.documents"
	archiveModule   = "lute.archive"
	commandsModule  = "lute.commands"
	httpModule      = "lute.http"
)

const (
	fieldDocumentPath   = "document_path"
	fieldDocumentFormat = "format"
	fieldDocumentAction = "action"
)

// ModuleLogger resolves the logger for module from provider and tags it with
// a "module" field. A nil provider, or one that returns nil, yields NoOp.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = rootModule
	}

	var logger interfaces.Logger = noopLogger{}
	if provider != nil {
		if resolved := provider.GetLogger(module); resolved != nil {
			logger = resolved
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// EngineLogger is used by the render facade.
func EngineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, engineModule)
}

// DocumentsLogger is used by the document loader and service.
func DocumentsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, documentsModule)
}

// ArchiveLogger is used by the render archive repositories.
func ArchiveLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, archiveModule)
}

// CommandsLogger is used by command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// HTTPLogger is used by the HTTP surface.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// WithDocumentContext tags logger with the document being processed. Blank
// values are left out.
func WithDocumentContext(logger interfaces.Logger, path, format, action string) interfaces.Logger {
	fields := make(map[string]any, 3)
	for key, value := range map[string]string{
		fieldDocumentPath:   path,
		fieldDocumentFormat: format,
		fieldDocumentAction: action,
	} {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			fields[key] = trimmed
		}
	}
	return WithFields(logger, fields)
}

// NoOp discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger   { return n }
func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }

package rendercmd

import (
	"context"
	"errors"
	"fmt"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-lute/internal/commands"
	"github.com/goliatone/go-lute/internal/logging"
	"github.com/goliatone/go-lute/pkg/interfaces"
)

const (
	documentOperation  = "render.document"
	directoryOperation = "render.directory"
)

var (
	// ErrDocumentsDisabled is returned while the documents feature is off.
	ErrDocumentsDisabled = errors.New("render command: documents feature disabled")
	// ErrDocumentFailures is returned by RenderDirectoryCommand with
	// FailOnError when at least one document failed.
	ErrDocumentFailures = errors.New("render command: documents failed to render")
)

var (
	_ command.Commander[RenderDocumentCommand]  = (*RenderDocumentHandler)(nil)
	_ command.Commander[RenderDirectoryCommand] = (*RenderDirectoryHandler)(nil)
)

// DocumentObserver receives each rendered document.
type DocumentObserver func(ctx context.Context, doc *interfaces.Document)

// DirectoryObserver receives the outcome of a directory run.
type DirectoryObserver func(ctx context.Context, docs []*interfaces.Document, summary interfaces.RenderSummary)

// RenderDocumentHandler executes RenderDocumentCommand.
type RenderDocumentHandler struct {
	inner *commands.Handler[RenderDocumentCommand]
}

// NewRenderDocumentHandler binds the handler to service. observe may be nil.
func NewRenderDocumentHandler(service interfaces.DocumentService, logger interfaces.Logger, gates FeatureGates, observe DocumentObserver, opts ...commands.HandlerOption[RenderDocumentCommand]) *RenderDocumentHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RenderDocumentCommand) error {
		if !gates.documentsEnabled() {
			return ErrDocumentsDisabled
		}
		doc, err := service.RenderDocument(ctx, msg.Path, interfaces.RenderOptions{Format: msg.Format, Force: msg.Force})
		if err != nil {
			return err
		}
		logging.WithDocumentContext(logger, doc.Path, doc.Format, documentOperation).
			Info("render.command.document.completed", "reused", doc.Reused, "stopped", doc.Stopped, "bytes", len(doc.Output))
		if observe != nil {
			observe(ctx, doc)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderDocumentCommand]{
		commands.WithLogger[RenderDocumentCommand](logger),
		commands.WithOperation[RenderDocumentCommand](documentOperation),
		commands.WithMessageFields(func(msg RenderDocumentCommand) map[string]any {
			fields := map[string]any{"path": msg.Path}
			if msg.Format != "" {
				fields["format"] = msg.Format
			}
			if msg.Force {
				fields["force"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderDocumentCommand](nil)),
	}
	return &RenderDocumentHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[RenderDocumentCommand].
func (h *RenderDocumentHandler) Execute(ctx context.Context, msg RenderDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RenderDirectoryHandler executes RenderDirectoryCommand.
type RenderDirectoryHandler struct {
	inner *commands.Handler[RenderDirectoryCommand]
}

// NewRenderDirectoryHandler binds the handler to service. observe may be nil.
func NewRenderDirectoryHandler(service interfaces.DocumentService, logger interfaces.Logger, gates FeatureGates, observe DirectoryObserver, opts ...commands.HandlerOption[RenderDirectoryCommand]) *RenderDirectoryHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RenderDirectoryCommand) error {
		if !gates.documentsEnabled() {
			return ErrDocumentsDisabled
		}
		docs, summary, err := service.RenderDirectory(ctx, msg.Directory, interfaces.RenderOptions{Format: msg.Format, Force: msg.Force})
		if err != nil {
			return err
		}
		logging.WithFields(logger, map[string]any{
			"directory":      msg.Directory,
			"rendered_count": summary.Rendered,
			"reused_count":   summary.Reused,
			"stopped_count":  summary.Stopped,
			"failed_count":   summary.Failed,
		}).Info("render.command.directory.completed")
		if observe != nil {
			observe(ctx, docs, summary)
		}
		if msg.FailOnError && summary.Failed > 0 {
			return fmt.Errorf("%w: %d of %d: %w", ErrDocumentFailures, summary.Failed, len(docs), errors.Join(summary.Errors...))
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderDirectoryCommand]{
		commands.WithLogger[RenderDirectoryCommand](logger),
		commands.WithOperation[RenderDirectoryCommand](directoryOperation),
		commands.WithMessageFields(func(msg RenderDirectoryCommand) map[string]any {
			fields := map[string]any{"directory": msg.Directory}
			if msg.Format != "" {
				fields["format"] = msg.Format
			}
			if msg.Force {
				fields["force"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderDirectoryCommand](nil)),
	}
	return &RenderDirectoryHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[RenderDirectoryCommand].
func (h *RenderDirectoryHandler) Execute(ctx context.Context, msg RenderDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

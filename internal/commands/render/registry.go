package rendercmd

import (
	"errors"

	"github.com/goliatone/go-lute/internal/commands"
	"github.com/goliatone/go-lute/pkg/interfaces"
)

// CommandRegistry is satisfied by go-command registries.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet holds the handlers built by Register.
type HandlerSet struct {
	Document  *RenderDocumentHandler
	Directory *RenderDirectoryHandler
}

// Option customises Register.
type Option func(*options)

type options struct {
	gates             FeatureGates
	documentObserver  DocumentObserver
	directoryObserver DirectoryObserver
	documentOpts      []commands.HandlerOption[RenderDocumentCommand]
	directoryOpts     []commands.HandlerOption[RenderDirectoryCommand]
}

// WithFeatureGates sets the runtime gates.
func WithFeatureGates(gates FeatureGates) Option {
	return func(o *options) { o.gates = gates }
}

// WithDocumentObserver is called after every successful document command.
func WithDocumentObserver(fn DocumentObserver) Option {
	return func(o *options) { o.documentObserver = fn }
}

// WithDirectoryObserver is called after every directory command.
func WithDirectoryObserver(fn DirectoryObserver) Option {
	return func(o *options) { o.directoryObserver = fn }
}

// WithDocumentHandlerOptions forwards options to the document handler.
func WithDocumentHandlerOptions(opts ...commands.HandlerOption[RenderDocumentCommand]) Option {
	return func(o *options) { o.documentOpts = append(o.documentOpts, opts...) }
}

// WithDirectoryHandlerOptions forwards options to the directory handler.
func WithDirectoryHandlerOptions(opts ...commands.HandlerOption[RenderDirectoryCommand]) Option {
	return func(o *options) { o.directoryOpts = append(o.directoryOpts, opts...) }
}

// Register builds the render handlers and registers them with reg when it is
// not nil.
func Register(reg CommandRegistry, service interfaces.DocumentService, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("render command registration: service is nil")
	}
	var cfg options
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.Logger(provider, "render")
	set := &HandlerSet{
		Document:  NewRenderDocumentHandler(service, logger, cfg.gates, cfg.documentObserver, cfg.documentOpts...),
		Directory: NewRenderDirectoryHandler(service, logger, cfg.gates, cfg.directoryObserver, cfg.directoryOpts...),
	}
	if reg != nil {
		if err := reg.RegisterCommand(set.Document); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(set.Directory); err != nil {
			return nil, err
		}
	}
	return set, nil
}

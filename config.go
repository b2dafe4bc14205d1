package lute

import (
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-lute/internal/logging/console"
	"github.com/goliatone/go-lute/internal/logging/gologger"
	"github.com/goliatone/go-lute/internal/runtimeconfig"
	"github.com/goliatone/go-lute/pkg/interfaces"
)

var (
	ErrDefaultFormatRequired       = runtimeconfig.ErrDefaultFormatRequired
	ErrDocumentsContentDirRequired = runtimeconfig.ErrDocumentsContentDirRequired
	ErrDocumentsPatternRequired    = runtimeconfig.ErrDocumentsPatternRequired
	ErrArchiveDialectUnknown       = runtimeconfig.ErrArchiveDialectUnknown
	ErrArchiveDSNRequired          = runtimeconfig.ErrArchiveDSNRequired
	ErrArchiveCacheTTLInvalid      = runtimeconfig.ErrArchiveCacheTTLInvalid
	ErrLoggingProviderRequired     = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown      = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid         = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid        = runtimeconfig.ErrLoggingFormatInvalid
	ErrHTTPAddressRequired         = runtimeconfig.ErrHTTPAddressRequired
)

type (
	Config          = runtimeconfig.Config
	ParseConfig     = runtimeconfig.ParseConfig
	RenderConfig    = runtimeconfig.RenderConfig
	DocumentsConfig = runtimeconfig.DocumentsConfig
	ArchiveConfig   = runtimeconfig.ArchiveConfig
	HTTPConfig      = runtimeconfig.HTTPConfig
	Features        = runtimeconfig.Features
	LoggingConfig   = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// NewLoggerProvider builds the provider named by cfg.Provider. The console
// provider writes to stderr.
func NewLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		opts := console.Options{Writer: os.Stderr}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		return console.NewProvider(opts), nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Provider)
	}
}

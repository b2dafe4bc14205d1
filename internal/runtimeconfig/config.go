package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrDefaultFormatRequired = errors.New("lute config: default format is required")
var ErrDocumentsContentDirRequired = errors.New("lute config: documents content directory is required when documents are enabled")
var ErrDocumentsPatternRequired = errors.New("lute config: documents pattern is required when documents are enabled")
var ErrArchiveDialectUnknown = errors.New("lute config: archive dialect is invalid")
var ErrArchiveDSNRequired = errors.New("lute config: archive dsn is required when the archive is enabled")
var ErrArchiveCacheTTLInvalid = errors.New("lute config: archive cache ttl must be zero or positive")
var ErrLoggingProviderRequired = errors.New("lute config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("lute config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("lute config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("lute config: logging format is invalid")
var ErrHTTPAddressRequired = errors.New("lute config: http address is required when the http surface is enabled")

// Config aggregates engine options and the settings of the optional services
// built around it.
type Config struct {
	DefaultFormat string
	Parse         ParseConfig
	Render        RenderConfig
	Documents     DocumentsConfig
	Archive       ArchiveConfig
	HTTP          HTTPConfig
	Features      Features
	Logging       LoggingConfig
}

// ParseConfig toggles syntax extensions.
type ParseConfig struct {
	Strikethrough bool
	TaskListItems bool
	Tables        bool
	Autolinks     bool
	HeadingIDs    bool
}

// RenderConfig tunes the default renderers.
type RenderConfig struct {
	SafeMode  bool
	HardWraps bool
}

// DocumentsConfig captures filesystem behaviour for document rendering.
type DocumentsConfig struct {
	Enabled    bool
	ContentDir string
	Pattern    string
	Recursive  bool
}

// ArchiveConfig configures persistence of render results.
type ArchiveConfig struct {
	Enabled  bool
	Dialect  string
	DSN      string
	CacheTTL time.Duration
}

// HTTPConfig configures the HTTP surface.
type HTTPConfig struct {
	Enabled bool
	Address string
}

// Features toggles ambient functionality.
type Features struct {
	Logger  bool
	Metrics bool
	Tracing bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns defaults suitable for rendering CommonMark with the
// GFM extensions to HTML.
func DefaultConfig() Config {
	return Config{
		DefaultFormat: "Md2HTML",
		Parse: ParseConfig{
			Strikethrough: true,
			TaskListItems: true,
			Tables:        true,
			Autolinks:     true,
		},
		Render: RenderConfig{},
		Documents: DocumentsConfig{
			ContentDir: "content",
			Pattern:    "*.md",
			Recursive:  true,
		},
		Archive: ArchiveConfig{
			Dialect:  "sqlite",
			DSN:      "file::memory:?cache=shared",
			CacheTTL: time.Minute,
		},
		HTTP: HTTPConfig{
			Address: ":8080",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.DefaultFormat) == "" {
		return ErrDefaultFormatRequired
	}
	if cfg.Documents.Enabled {
		if strings.TrimSpace(cfg.Documents.ContentDir) == "" {
			return ErrDocumentsContentDirRequired
		}
		if strings.TrimSpace(cfg.Documents.Pattern) == "" {
			return ErrDocumentsPatternRequired
		}
	}
	if cfg.Archive.Enabled {
		dialect := NormalizeDialect(cfg.Archive.Dialect)
		if !isSupportedDialect(dialect) {
			return fmt.Errorf("%w: %s", ErrArchiveDialectUnknown, cfg.Archive.Dialect)
		}
		if strings.TrimSpace(cfg.Archive.DSN) == "" {
			return ErrArchiveDSNRequired
		}
	}
	if cfg.Archive.CacheTTL < 0 {
		return ErrArchiveCacheTTLInvalid
	}
	if cfg.HTTP.Enabled && strings.TrimSpace(cfg.HTTP.Address) == "" {
		return ErrHTTPAddressRequired
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// NormalizeDialect maps dialect aliases onto "sqlite" or "postgres".
func NormalizeDialect(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "sqlite", "sqlite3":
		return "sqlite"
	case "postgres", "postgresql", "pg":
		return "postgres"
	default:
		return strings.ToLower(strings.TrimSpace(dialect))
	}
}

func isSupportedDialect(dialect string) bool {
	return dialect == "sqlite" || dialect == "postgres"
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}

package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-lute/internal/runtimeconfig"
)

func TestConfigValidate_DefaultsAreValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresDefaultFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.DefaultFormat = " "

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrDefaultFormatRequired) {
		t.Fatalf("expected ErrDefaultFormatRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresContentDirWhenDocumentsEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Documents.Enabled = true
	cfg.Documents.ContentDir = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrDocumentsContentDirRequired) {
		t.Fatalf("expected ErrDocumentsContentDirRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownArchiveDialect(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Archive.Enabled = true
	cfg.Archive.Dialect = "mysql"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrArchiveDialectUnknown) {
		t.Fatalf("expected ErrArchiveDialectUnknown, got %v", err)
	}
}

func TestConfigValidate_AcceptsDialectAliases(t *testing.T) {
	for _, dialect := range []string{"sqlite3", "PG", "postgresql"} {
		cfg := runtimeconfig.DefaultConfig()
		cfg.Archive.Enabled = true
		cfg.Archive.Dialect = dialect
		if err := cfg.Validate(); err != nil {
			t.Fatalf("dialect %q rejected: %v", dialect, err)
		}
	}
	if got := runtimeconfig.NormalizeDialect(" PostgreSQL "); got != "postgres" {
		t.Fatalf("unexpected normalized dialect %q", got)
	}
}

func TestConfigValidate_RejectsNegativeCacheTTL(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Archive.CacheTTL = -1

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrArchiveCacheTTLInvalid) {
		t.Fatalf("expected ErrArchiveCacheTTLInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresLoggingProviderWhenFeatureEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingLevel(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Level = "loud"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresHTTPAddress(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.HTTP.Enabled = true
	cfg.HTTP.Address = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrHTTPAddressRequired) {
		t.Fatalf("expected ErrHTTPAddressRequired, got %v", err)
	}
}

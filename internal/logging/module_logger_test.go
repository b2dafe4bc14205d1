package logging

import (
	"context"
	"maps"
	"testing"

	"github.com/goliatone/go-lute/pkg/interfaces"
)

type fieldRecorder struct {
	applied []map[string]any
}

func (r *fieldRecorder) Trace(string, ...any)                          {}
func (r *fieldRecorder) Debug(string, ...any)                          {}
func (r *fieldRecorder) Info(string, ...any)                           {}
func (r *fieldRecorder) Warn(string, ...any)                           {}
func (r *fieldRecorder) Error(string, ...any)                          {}
func (r *fieldRecorder) Fatal(string, ...any)                          {}
func (r *fieldRecorder) WithContext(context.Context) interfaces.Logger { return r }

func (r *fieldRecorder) WithFields(fields map[string]any) interfaces.Logger {
	r.applied = append(r.applied, maps.Clone(fields))
	return r
}

type namedProvider struct {
	names  []string
	logger interfaces.Logger
}

func (p *namedProvider) GetLogger(name string) interfaces.Logger {
	p.names = append(p.names, name)
	return p.logger
}

func TestModuleLogger_NilProviderIsNoOp(t *testing.T) {
	logger := ModuleLogger(nil, engineModule)
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger, got %T", logger)
	}
	logger.WithContext(context.Background()).Info("ignored")
}

func TestModuleLogger_NilLoggerFromProviderIsNoOp(t *testing.T) {
	logger := ModuleLogger(&namedProvider{}, archiveModule)
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger, got %T", logger)
	}
}

func TestModuleLogger_TagsModule(t *testing.T) {
	rec := &fieldRecorder{}
	provider := &namedProvider{logger: rec}

	DocumentsLogger(provider)

	if len(provider.names) != 1 || provider.names[0] != documentsModule {
		t.Fatalf("requested %v, want %s", provider.names, documentsModule)
	}
	if len(rec.applied) != 1 || rec.applied[0]["module"] != documentsModule {
		t.Fatalf("module field not applied: %#v", rec.applied)
	}
}

func TestModuleLogger_BlankModuleUsesRoot(t *testing.T) {
	provider := &namedProvider{logger: &fieldRecorder{}}
	ModuleLogger(provider, "  ")
	if provider.names[0] != rootModule {
		t.Fatalf("requested %q, want %q", provider.names[0], rootModule)
	}
}

func TestModuleHelpersRequestTheirNamespaces(t *testing.T) {
	helpers := map[string]func(interfaces.LoggerProvider) interfaces.Logger{
		engineModule:   EngineLogger,
		archiveModule:  ArchiveLogger,
		commandsModule: CommandsLogger,
		httpModule:     HTTPLogger,
	}
	for module, helper := range helpers {
		provider := &namedProvider{logger: &fieldRecorder{}}
		helper(provider)
		if len(provider.names) != 1 || provider.names[0] != module {
			t.Fatalf("helper for %s requested %v", module, provider.names)
		}
	}
}

func TestWithDocumentContext_SkipsBlankValues(t *testing.T) {
	rec := &fieldRecorder{}
	WithDocumentContext(rec, " guide/intro.md ", "", "render")

	if len(rec.applied) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.applied))
	}
	got := rec.applied[0]
	if got[fieldDocumentPath] != "guide/intro.md" || got[fieldDocumentAction] != "render" {
		t.Fatalf("unexpected fields %#v", got)
	}
	if _, ok := got[fieldDocumentFormat]; ok {
		t.Fatalf("blank format should be skipped: %#v", got)
	}
}

func TestContextFields_MergeAndCopy(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"a": 1})
	ctx = ContextWithFields(ctx, map[string]any{"b": 2})

	fields := ContextFields(ctx)
	if fields["a"] != 1 || fields["b"] != 2 {
		t.Fatalf("unexpected fields %#v", fields)
	}
	fields["a"] = 99
	if ContextFields(ctx)["a"] != 1 {
		t.Fatal("ContextFields must return a copy")
	}
	if ContextFields(context.Background()) != nil {
		t.Fatal("expected nil for a bare context")
	}
}

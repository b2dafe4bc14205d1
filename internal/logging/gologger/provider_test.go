package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-lute/internal/logging"
)

func TestNewProvider_BuildsModuleLoggers(t *testing.T) {
	p, err := NewProvider(Config{Level: "warning", Format: "console", Focus: []string{" lute.engine ", ""}})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	logger := p.GetLogger("lute.engine")
	if logger == nil {
		t.Fatal("expected logger")
	}
	logging.WithFields(logger, map[string]any{"module": "lute.engine"}).Debug("suppressed")
}

func TestNewProvider_RejectsUnknownFormat(t *testing.T) {
	if _, err := NewProvider(Config{Format: "xml"}); err == nil {
		t.Fatal("expected an error for format xml")
	}
}

func TestNilProviderFallsBackToNoOp(t *testing.T) {
	var p *Provider
	p.GetLogger("lute").Info("nothing happens")
}

func TestAdapter_ForwardsCallsAndClonesFields(t *testing.T) {
	stub := &stubLogger{}
	logger := adapt(stub)

	logger.Trace("t")
	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")
	logger.Fatal("f")

	fields := map[string]any{"format": "Md2HTML"}
	fl := logger.(*adapter)
	fl.WithFields(fields)
	fields["format"] = "Md2Text"

	if len(stub.fields) != 1 || stub.fields[0]["format"] != "Md2HTML" {
		t.Fatalf("fields were not cloned: %#v", stub.fields)
	}

	ctx := context.WithValue(context.Background(), ctxKey{}, 1)
	logger.WithContext(ctx)
	if len(stub.contexts) != 1 || stub.contexts[0] != ctx {
		t.Fatalf("context not forwarded: %#v", stub.contexts)
	}

	want := "tdiwef"
	if got := string(stub.calls); got != want {
		t.Fatalf("calls = %q, want %q", got, want)
	}
}

func TestAdapter_WithContextAttachesContextFields(t *testing.T) {
	stub := &stubLogger{}
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"request_id": "r-1"})

	adapt(stub).WithContext(ctx).Info("served")

	if len(stub.fields) != 1 || stub.fields[0]["request_id"] != "r-1" {
		t.Fatalf("context fields not attached: %#v", stub.fields)
	}
	if string(stub.calls) != "i" {
		t.Fatalf("calls = %q", stub.calls)
	}
}

type ctxKey struct{}

type stubLogger struct {
	calls    []byte
	fields   []map[string]any
	contexts []context.Context
}

var (
	_ glog.Logger       = (*stubLogger)(nil)
	_ glog.FieldsLogger = (*stubLogger)(nil)
)

func (s *stubLogger) Trace(string, ...any) { s.calls = append(s.calls, 't') }
func (s *stubLogger) Debug(string, ...any) { s.calls = append(s.calls, 'd') }
func (s *stubLogger) Info(string, ...any)  { s.calls = append(s.calls, 'i') }
func (s *stubLogger) Warn(string, ...any)  { s.calls = append(s.calls, 'w') }
func (s *stubLogger) Error(string, ...any) { s.calls = append(s.calls, 'e') }
func (s *stubLogger) Fatal(string, ...any) { s.calls = append(s.calls, 'f') }

func (s *stubLogger) WithContext(ctx context.Context) glog.Logger {
	s.contexts = append(s.contexts, ctx)
	return s
}

func (s *stubLogger) WithFields(fields map[string]any) glog.Logger {
	s.fields = append(s.fields, fields)
	return s
}

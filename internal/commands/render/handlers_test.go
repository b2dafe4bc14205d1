package rendercmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-lute/pkg/interfaces"
)

type stubService struct {
	docs        map[string]*interfaces.Document
	summary     interfaces.RenderSummary
	lastOptions interfaces.RenderOptions
	calls       int
}

func (s *stubService) Render(context.Context, []byte, string) (string, error) {
	return "", nil
}

func (s *stubService) Load(_ context.Context, path string) (*interfaces.Document, error) {
	if doc, ok := s.docs[path]; ok {
		return doc, nil
	}
	return nil, errors.New("not found")
}

func (s *stubService) RenderDocument(ctx context.Context, path string, opts interfaces.RenderOptions) (*interfaces.Document, error) {
	s.calls++
	s.lastOptions = opts
	return s.Load(ctx, path)
}

func (s *stubService) RenderDirectory(_ context.Context, _ string, opts interfaces.RenderOptions) ([]*interfaces.Document, interfaces.RenderSummary, error) {
	s.calls++
	s.lastOptions = opts
	docs := make([]*interfaces.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	return docs, s.summary, nil
}

func newStub() *stubService {
	return &stubService{docs: map[string]*interfaces.Document{
		"intro.md": {Path: "intro.md", Format: "Md2HTML", Output: "<p>hi</p>\n"},
	}}
}

func TestRenderDocumentHandler(t *testing.T) {
	svc := newStub()
	var observed *interfaces.Document
	h := NewRenderDocumentHandler(svc, nil, FeatureGates{}, func(_ context.Context, doc *interfaces.Document) {
		observed = doc
	})

	err := h.Execute(context.Background(), RenderDocumentCommand{Path: "intro.md", Format: "Md2HTML", Force: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if observed == nil || observed.Output != "<p>hi</p>\n" {
		t.Fatalf("observer not called with document: %+v", observed)
	}
	if !svc.lastOptions.Force || svc.lastOptions.Format != "Md2HTML" {
		t.Fatalf("options not forwarded: %+v", svc.lastOptions)
	}
}

func TestRenderDocumentHandlerFeatureDisabled(t *testing.T) {
	svc := newStub()
	h := NewRenderDocumentHandler(svc, nil, FeatureGates{DocumentsEnabled: func() bool { return false }}, nil)

	err := h.Execute(context.Background(), RenderDocumentCommand{Path: "intro.md"})
	if !errors.Is(err, ErrDocumentsDisabled) {
		t.Fatalf("expected ErrDocumentsDisabled, got %v", err)
	}
	if svc.calls != 0 {
		t.Fatalf("service called while disabled")
	}
}

func TestRenderDocumentHandlerValidation(t *testing.T) {
	svc := newStub()
	h := NewRenderDocumentHandler(svc, nil, FeatureGates{}, nil)

	err := h.Execute(context.Background(), RenderDocumentCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestRenderDirectoryHandlerFailOnError(t *testing.T) {
	svc := newStub()
	svc.summary = interfaces.RenderSummary{Rendered: 1, Failed: 1, Errors: []error{errors.New("broken.md")}}
	var summary interfaces.RenderSummary
	h := NewRenderDirectoryHandler(svc, nil, FeatureGates{}, func(_ context.Context, _ []*interfaces.Document, s interfaces.RenderSummary) {
		summary = s
	})

	if err := h.Execute(context.Background(), RenderDirectoryCommand{Directory: "guide"}); err != nil {
		t.Fatalf("failures should not fail the command by default: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("observer did not receive summary: %+v", summary)
	}

	err := h.Execute(context.Background(), RenderDirectoryCommand{Directory: "guide", FailOnError: true})
	if !errors.Is(err, ErrDocumentFailures) {
		t.Fatalf("expected ErrDocumentFailures, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func TestRegister(t *testing.T) {
	if _, err := Register(nil, nil, nil); err == nil {
		t.Fatal("expected error for nil service")
	}

	reg := &recordingRegistry{}
	set, err := Register(reg, newStub(), nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if set.Document == nil || set.Directory == nil {
		t.Fatalf("incomplete handler set %+v", set)
	}
	if len(reg.handlers) != 2 {
		t.Fatalf("expected 2 registered handlers, got %d", len(reg.handlers))
	}
}

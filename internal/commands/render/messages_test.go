package rendercmd

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func TestRenderDocumentCommandValidate(t *testing.T) {
	cases := []struct {
		name    string
		cmd     RenderDocumentCommand
		wantErr bool
	}{
		{"valid", RenderDocumentCommand{Path: "guide/intro.md"}, false},
		{"with format", RenderDocumentCommand{Path: "a.md", Format: "Md2Text"}, false},
		{"missing path", RenderDocumentCommand{}, true},
		{"blank path", RenderDocumentCommand{Path: "   "}, true},
		{"bad format", RenderDocumentCommand{Path: "a.md", Format: "Md2 HTML"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cmd.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRenderDirectoryCommandValidate(t *testing.T) {
	err := RenderDirectoryCommand{Directory: " "}.Validate()
	errs, ok := err.(validation.Errors)
	if !ok {
		t.Fatalf("expected validation.Errors, got %T (%v)", err, err)
	}
	if _, ok := errs["directory"]; !ok {
		t.Fatalf("expected directory error, got %v", errs)
	}
	if err := (RenderDirectoryCommand{Directory: "guide"}).Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestMessageTypes(t *testing.T) {
	if (RenderDocumentCommand{}).Type() != "lute.render.document" {
		t.Fatal("unexpected document message type")
	}
	if (RenderDirectoryCommand{}).Type() != "lute.render.directory" {
		t.Fatal("unexpected directory message type")
	}
}

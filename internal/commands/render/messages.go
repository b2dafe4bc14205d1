package rendercmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	renderDocumentMessageType  = "lute.render.document"
	renderDirectoryMessageType = "lute.render.directory"
)

// RenderDocumentCommand renders one document of the content tree.
type RenderDocumentCommand struct {
	// Path is relative to the content root.
	Path string `json:"path"`
	// Format overrides the front matter and engine default when set.
	Format string `json:"format,omitempty"`
	// Force bypasses archived output.
	Force bool `json:"force,omitempty"`
}

// Type implements command.Message.
func (RenderDocumentCommand) Type() string { return renderDocumentMessageType }

// Validate implements command.Message.
func (cmd RenderDocumentCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(notBlank("lute.render.document.path_required", "path is required"))),
		validation.Field(&cmd.Format, validation.By(formatName)),
	)
}

// RenderDirectoryCommand renders every document below Directory.
type RenderDirectoryCommand struct {
	Directory string `json:"directory"`
	Format    string `json:"format,omitempty"`
	Force     bool   `json:"force,omitempty"`
	// FailOnError turns per-document failures into a command error.
	FailOnError bool `json:"fail_on_error,omitempty"`
}

// Type implements command.Message.
func (RenderDirectoryCommand) Type() string { return renderDirectoryMessageType }

// Validate implements command.Message.
func (cmd RenderDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(notBlank("lute.render.directory.directory_required", "directory is required"))),
		validation.Field(&cmd.Format, validation.By(formatName)),
	)
}

func notBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		if s, _ := value.(string); strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}

// formatName accepts empty or a name without whitespace.
func formatName(value any) error {
	s, _ := value.(string)
	if s != "" && strings.ContainsAny(s, " \t\r\n") {
		return validation.NewError("lute.render.format_invalid", "format must not contain whitespace")
	}
	return nil
}

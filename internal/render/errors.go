package render

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-lute/internal/ast"
)

// RendererError reports a renderer callback that panicked. The walk that hit
// it is aborted.
type RendererError struct {
	Format   string
	Kind     ast.NodeType
	Entering bool
	Cause    error
}

func (e *RendererError) Error() string {
	phase := "exiting"
	if e.Entering {
		phase = "entering"
	}
	return fmt.Sprintf("render: %s renderer for %s (%s) failed: %v", e.Format, e.Kind, phase, e.Cause)
}

func (e *RendererError) Unwrap() error {
	return e.Cause
}

// AsRendererError unwraps err into a *RendererError.
func AsRendererError(err error) (*RendererError, bool) {
	var target *RendererError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

func panicCause(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("%v", rec)
}

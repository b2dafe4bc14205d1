package main

import (
	"fmt"

	"github.com/spf13/cobra"

	lute "github.com/goliatone/go-lute"
)

const demoInput = "**Markdown**"

// demoStop stops the walk at the first text node and appends a suffix.
func demoStop() string {
	engine := lute.New()
	engine.SetRenderers(lute.Md2HTML, map[string]lute.RendererFunc{
		"renderText": func(n *lute.Node, _ bool) (string, lute.WalkStatus) {
			return n.Literal() + " via Lute", lute.WalkStop
		},
		"renderStrong":    silent,
		"renderParagraph": silent,
	})
	return engine.Render(lute.Md2HTML, demoInput)
}

// demoDefaults silences container kinds and keeps the default text handler.
func demoDefaults() string {
	engine := lute.New()
	engine.SetRenderers(lute.Md2HTML, map[string]lute.RendererFunc{
		"renderStrong":    silent,
		"renderParagraph": silent,
	})
	return engine.Render(lute.Md2HTML, demoInput)
}

func silent(*lute.Node, bool) (string, lute.WalkStatus) {
	return "", lute.WalkContinue
}

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the walk directive demonstrations",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "input:    %s\n", demoInput)
			fmt.Fprintf(out, "stop:     %s\n", demoStop())
			fmt.Fprintf(out, "defaults: %s\n", demoDefaults())
		},
	}
}

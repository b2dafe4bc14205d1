package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	lute "github.com/goliatone/go-lute"
	"github.com/goliatone/go-lute/internal/overrides"
)

func renderCmd(flags *globalFlags) *cobra.Command {
	var (
		format        string
		overridesFile string
		stats         bool
	)

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a Markdown file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := lute.NewFromConfig(flags.config())
			if err != nil {
				return err
			}
			if overridesFile != "" {
				doc, err := overrides.ReadFile(os.DirFS(filepath.Dir(overridesFile)), filepath.Base(overridesFile))
				if err != nil {
					return err
				}
				overrides.Apply(engine, doc)
			}

			name, input, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			start := time.Now()
			res := engine.Do(format, input)
			elapsed := time.Since(start)

			fmt.Fprint(cmd.OutOrStdout(), res.Output)
			if stats {
				errOut := cmd.ErrOrStderr()
				fmt.Fprintf(errOut, "source:   %s (%s)\n", name, humanize.Bytes(uint64(len(input))))
				fmt.Fprintf(errOut, "output:   %s\n", humanize.Bytes(uint64(len(res.Output))))
				fmt.Fprintf(errOut, "outcome:  %s in %s\n", res.Outcome(), elapsed.Round(time.Microsecond))
				if kinds := engine.Overridden(format); len(kinds) > 0 {
					printKinds(errOut, kinds)
				}
			}
			if res.Err != nil {
				return fmt.Errorf("render %s: %w", name, res.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", lute.Md2HTML, "output format")
	cmd.Flags().StringVarP(&overridesFile, "overrides", "o", "", "JSON file with renderer overrides")
	cmd.Flags().BoolVar(&stats, "stats", false, "print sizes and timing to stderr")
	return cmd
}

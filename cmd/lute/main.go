package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	lute "github.com/goliatone/go-lute"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every sub-command.
type globalFlags struct {
	logProvider string
	logLevel    string
	headingIDs  bool
	safe        bool
	hardWraps   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lute: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "lute",
		Short: "Render Markdown with pluggable per-node renderers",
		Long: `lute parses CommonMark (with strikethrough and task list items) and
renders it through a registry of per-format, per-node callbacks. Built-in
formats are Md2HTML, Md2Text and Md2JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.logProvider, "log-provider", "console", "logger provider (console, gologger)")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "minimum log level")
	pf.BoolVar(&flags.headingIDs, "heading-ids", false, "add slug ids to headings")
	pf.BoolVar(&flags.safe, "safe", false, "drop raw HTML and unsafe link destinations")
	pf.BoolVar(&flags.hardWraps, "hard-wraps", false, "render soft breaks as hard breaks")

	root.AddCommand(
		renderCmd(flags),
		astCmd(flags),
		docsCmd(flags),
		demoCmd(),
		serveCmd(flags),
		versionCmd(),
	)
	return root
}

// config turns the global flags into an engine configuration.
func (f *globalFlags) config() lute.Config {
	cfg := lute.DefaultConfig()
	cfg.Parse.HeadingIDs = f.headingIDs
	cfg.Render.SafeMode = f.safe
	cfg.Render.HardWraps = f.hardWraps
	cfg.Features.Logger = true
	cfg.Logging.Provider = f.logProvider
	cfg.Logging.Level = f.logLevel
	return cfg
}

// readInput reads the named file, or stdin for "" and "-".
func readInput(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return "stdin", string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", err
	}
	return args[0], string(data), nil
}

func printKinds(w io.Writer, kinds []lute.NodeType) {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}
	fmt.Fprintf(w, "overridden: %s\n", strings.Join(names, ", "))
}

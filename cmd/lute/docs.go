package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	lute "github.com/goliatone/go-lute"
	"github.com/goliatone/go-lute/internal/archive"
	rendercmd "github.com/goliatone/go-lute/internal/commands/render"
	"github.com/goliatone/go-lute/internal/documents"
	"github.com/goliatone/go-lute/internal/runtimeconfig"
	"github.com/goliatone/go-lute/pkg/interfaces"
)

type docsOptions struct {
	contentDir  string
	pattern     string
	recursive   bool
	format      string
	force       bool
	outDir      string
	failOnError bool
	archive     runtimeconfig.ArchiveConfig
}

func docsCmd(flags *globalFlags) *cobra.Command {
	defaults := runtimeconfig.DefaultConfig()
	opts := docsOptions{archive: defaults.Archive}

	cmd := &cobra.Command{
		Use:   "docs [dir]",
		Short: "Render every document below a directory of the content tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runDocs(cmd.Context(), cmd.OutOrStdout(), flags, opts, dir)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.contentDir, "content-dir", defaults.Documents.ContentDir, "root of the content tree")
	f.StringVar(&opts.pattern, "pattern", defaults.Documents.Pattern, "file name pattern")
	f.BoolVar(&opts.recursive, "recursive", defaults.Documents.Recursive, "descend into sub-directories")
	f.StringVarP(&opts.format, "format", "f", "", "output format (default: front matter, then Md2HTML)")
	f.BoolVar(&opts.force, "force", false, "ignore archived output")
	f.StringVar(&opts.outDir, "out", "", "write rendered files below this directory")
	f.BoolVar(&opts.failOnError, "fail-on-error", false, "exit non-zero when a document fails")
	f.BoolVar(&opts.archive.Enabled, "archive", false, "archive render results")
	f.StringVar(&opts.archive.Dialect, "archive-dialect", defaults.Archive.Dialect, "archive dialect (sqlite, postgres)")
	f.StringVar(&opts.archive.DSN, "archive-dsn", "file:lute-archive.db", "archive data source name")
	f.DurationVar(&opts.archive.CacheTTL, "archive-cache-ttl", defaults.Archive.CacheTTL, "archive read cache ttl, 0 disables")
	return cmd
}

func runDocs(ctx context.Context, out io.Writer, flags *globalFlags, opts docsOptions, dir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := flags.config()
	cfg.Documents = runtimeconfig.DocumentsConfig{
		Enabled:    true,
		ContentDir: opts.contentDir,
		Pattern:    opts.pattern,
		Recursive:  opts.recursive,
	}
	cfg.Archive = opts.archive
	if err := cfg.Validate(); err != nil {
		return err
	}

	provider, err := lute.NewLoggerProvider(cfg.Logging)
	if err != nil {
		return err
	}
	engine, err := lute.NewFromConfig(cfg, lute.WithLoggerProvider(provider))
	if err != nil {
		return err
	}

	svcOpts := []documents.Option{documents.WithLoggerProvider(provider)}
	if cfg.Archive.Enabled {
		repo, closeDB, err := archive.Open(ctx, cfg.Archive, provider)
		if err != nil {
			return err
		}
		defer closeDB()
		svcOpts = append(svcOpts, documents.WithArchive(repo))
	}
	svc, err := documents.NewService(documents.Config{
		ContentDir: cfg.Documents.ContentDir,
		Pattern:    cfg.Documents.Pattern,
		Recursive:  cfg.Documents.Recursive,
	}, engine, svcOpts...)
	if err != nil {
		return err
	}

	var writeErr error
	handlers, err := rendercmd.Register(nil, svc, provider,
		rendercmd.WithDirectoryObserver(func(_ context.Context, docs []*interfaces.Document, summary interfaces.RenderSummary) {
			for _, doc := range docs {
				if opts.outDir == "" || doc.Output == "" {
					continue
				}
				if err := writeOutput(opts.outDir, doc); err != nil && writeErr == nil {
					writeErr = err
				}
			}
			printSummary(out, docs, summary)
		}),
	)
	if err != nil {
		return err
	}

	err = handlers.Directory.Execute(ctx, rendercmd.RenderDirectoryCommand{
		Directory:   dir,
		Format:      opts.format,
		Force:       opts.force,
		FailOnError: opts.failOnError,
	})
	if err != nil {
		return err
	}
	return writeErr
}

func writeOutput(outDir string, doc *interfaces.Document) error {
	target := filepath.Join(outDir, filepath.FromSlash(strings.TrimSuffix(doc.Path, filepath.Ext(doc.Path))+outputExt(doc.Format)))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, []byte(doc.Output), 0o644)
}

func outputExt(format string) string {
	switch format {
	case lute.Md2HTML:
		return ".html"
	case lute.Md2JSON:
		return ".json"
	default:
		return ".txt"
	}
}

func printSummary(w io.Writer, docs []*interfaces.Document, summary interfaces.RenderSummary) {
	var total uint64
	for _, doc := range docs {
		state := "rendered"
		switch {
		case doc.Reused:
			state = "reused"
		case doc.Stopped:
			state = "stopped"
		}
		total += uint64(len(doc.Output))
		fmt.Fprintf(w, "%-9s %-8s %8s  %s\n", state, doc.Format, humanize.Bytes(uint64(len(doc.Output))), doc.Path)
	}
	for _, err := range summary.Errors {
		fmt.Fprintf(w, "failed    %s\n", err)
	}
	fmt.Fprintf(w, "%s documents, %d rendered, %d reused, %d stopped, %d failed, %s written\n",
		humanize.Comma(int64(len(docs))), summary.Rendered, summary.Reused, summary.Stopped, summary.Failed, humanize.Bytes(total))
}

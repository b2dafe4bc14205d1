package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	lute "github.com/goliatone/go-lute"
)

// astDump is an acyclic copy of a node for printing.
type astDump struct {
	Type     string
	Literal  string
	Attrs    map[string]string
	Children []astDump
}

func dumpNode(n *lute.Node) astDump {
	d := astDump{Type: n.Type.String(), Literal: n.Literal()}
	attrs := map[string]string{}
	if n.HeadingLevel > 0 {
		attrs["level"] = strconv.Itoa(n.HeadingLevel)
	}
	if n.Destination != "" {
		attrs["destination"] = n.Destination
	}
	if n.Title != "" {
		attrs["title"] = n.Title
	}
	if n.Code != nil && n.Code.Info != "" {
		attrs["info"] = n.Code.Info
	}
	if n.Type == lute.NodeTaskListItemMarker {
		attrs["checked"] = strconv.FormatBool(n.Checked)
	}
	for k, v := range n.Attributes {
		attrs[k] = v
	}
	if len(attrs) > 0 {
		d.Attrs = attrs
	}
	for c := n.FirstChild; c != nil; c = c.Next {
		d.Children = append(d.Children, dumpNode(c))
	}
	return d
}

func writeOutline(w io.Writer, d astDump, depth int) {
	line := strings.Repeat("  ", depth) + d.Type
	if d.Literal != "" {
		line += " " + strconv.Quote(d.Literal)
	}
	fmt.Fprintln(w, line)
	for _, c := range d.Children {
		writeOutline(w, c, depth+1)
	}
}

func astCmd(flags *globalFlags) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "ast [file|-]",
		Short: "Print the syntax tree of a Markdown file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := lute.NewFromConfig(flags.config())
			if err != nil {
				return err
			}
			_, input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			dump := dumpNode(engine.Parse(input))
			if pretty {
				_, err := pp.Fprintln(cmd.OutOrStdout(), dump)
				return err
			}
			writeOutline(cmd.OutOrStdout(), dump, 0)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretty, "pp", false, "pretty-print the tree with types and colours")
	return cmd
}

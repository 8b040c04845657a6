package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mchmarny/blogadmin/pkg/nav"
)

func newTreeCmd(o *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the navigation tree",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			tree, err := a.source().Tree(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), tree)
			}
			return printTree(cmd.OutOrStdout(), tree)
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tree as JSON")

	return cmd
}

func newExpandCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <path>",
		Short: "Print the groups expanded for a path",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			tree, err := a.source().Tree(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), nav.Ancestors(args[0], tree).Sorted())
		}),
	}
}

func newBreadcrumbCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "breadcrumb <path>",
		Short: "Print the breadcrumb trail of a path",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			tree, err := a.source().Tree(cmd.Context())
			if err != nil {
				return err
			}

			labels := make([]string, 0)
			for _, n := range nav.Breadcrumb(args[0], tree) {
				labels = append(labels, n.Label)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(labels, " › "))
			return err
		}),
	}
}

// printTree writes one line per node with box-drawing guides.
func printTree(w io.Writer, tree []nav.Node) error {
	all := nav.NewSet()
	nav.Walk(tree, func(n nav.Node, _ int) bool {
		if n.IsGroup() {
			all.Add(n.Href)
		}
		return true
	})

	for _, r := range nav.Flatten(tree, all) {
		var b strings.Builder
		for i := 1; i < len(r.Branches); i++ {
			if r.Branches[i] {
				b.WriteString("│   ")
			} else {
				b.WriteString("    ")
			}
		}
		if r.Depth > 0 {
			if r.Last {
				b.WriteString("└── ")
			} else {
				b.WriteString("├── ")
			}
		}
		b.WriteString(r.Node.Label)
		if r.Node.Href != "" {
			fmt.Fprintf(&b, " (%s)", r.Node.Href)
		}
		if r.Node.Active != nil && !*r.Node.Active {
			b.WriteString(" [inactive]")
		}

		if _, err := fmt.Fprintln(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

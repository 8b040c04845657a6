package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mchmarny/blogadmin/pkg/nav"
	"github.com/mchmarny/blogadmin/pkg/navigation"
)

func newNavCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nav",
		Short: "Edit the navigation menus on the server",
	}

	cmd.AddCommand(
		newNavPathCmd(o),
		newNavCreateCmd(o),
		newNavUpdateCmd(o),
		newNavDeleteCmd(o),
		newNavReorderCmd(o),
		newNavToggleCmd(o),
		newNavParentCmd(o),
		newNavEvictCmd(o),
	)

	return cmd
}

// service returns the API-backed navigation service, ignoring tree_file.
func (a *app) service() *navigation.Service {
	return navigation.NewService(a.client)
}

// requestFlags binds the fields of a create or update request.
type requestFlags struct {
	req      navigation.Request
	parent   string
	inactive bool
}

func (f *requestFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.req.Label, "label", "", "Display label")
	cmd.Flags().StringVar(&f.req.Href, "href", "", "Target href")
	cmd.Flags().StringVar(&f.parent, "parent", "", "Parent menu id")
	cmd.Flags().IntVar(&f.req.SortOrder, "order", 0, "Position among siblings")
	cmd.Flags().StringVar(&f.req.Icon, "icon", "", "Icon name")
	cmd.Flags().StringVar(&f.req.Description, "description", "", "Description")
	cmd.Flags().BoolVar(&f.inactive, "inactive", false, "Create or mark the menu as inactive")
}

func (f *requestFlags) request(cmd *cobra.Command) navigation.Request {
	req := f.req
	req.ParentID = nav.ID(f.parent)
	if cmd.Flags().Changed("inactive") {
		active := !f.inactive
		req.Active = &active
	}
	return req
}

func newNavPathCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "path <href>",
		Short: "Print the menu chain the server resolves for href",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			chain, err := a.service().Path(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), chain)
		}),
	}
}

func newNavCreateCmd(o *options) *cobra.Command {
	var f requestFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a menu",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			n, err := a.service().Create(cmd.Context(), f.request(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), n)
		}),
	}
	f.bind(cmd)

	return cmd
}

func newNavUpdateCmd(o *options) *cobra.Command {
	var f requestFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the fields of a menu",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			n, err := a.service().Update(cmd.Context(), nav.ID(args[0]), f.request(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), n)
		}),
	}
	f.bind(cmd)

	return cmd
}

func newNavDeleteCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a menu",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			return a.service().Delete(cmd.Context(), nav.ID(args[0]))
		}),
	}
}

func newNavReorderCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <id:order[:parent]>...",
		Short: "Move menus to new positions",
		Long: `Move menus to new positions. Each argument is id:order, optionally
followed by :parent to move the menu under another parent. An empty parent
(id:order:) moves the menu to the root.`,
		Args: cobra.MinimumNArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			orders, err := parseOrders(args)
			if err != nil {
				return err
			}
			return a.service().Reorder(cmd.Context(), orders)
		}),
	}
}

func parseOrders(args []string) ([]navigation.Order, error) {
	orders := make([]navigation.Order, 0, len(args))
	for _, arg := range args {
		parts := strings.Split(arg, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
			return nil, fmt.Errorf("invalid order %q, want id:order[:parent]", arg)
		}
		pos, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid order %q: %w", arg, err)
		}
		o := navigation.Order{ID: nav.ID(parts[0]), SortOrder: pos}
		if len(parts) == 3 {
			o.ParentID = nav.ID(parts[2])
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func newNavToggleCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip the active flag of a menu",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			return a.service().ToggleStatus(cmd.Context(), nav.ID(args[0]))
		}),
	}
}

func newNavParentCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parent <id> [parent]",
		Short: "Move a menu under a parent, or to the root when none is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			var parent nav.ID
			if len(args) == 2 {
				parent = nav.ID(args[1])
			}
			return a.service().SetParent(cmd.Context(), nav.ID(args[0]), parent)
		}),
	}
}

func newNavEvictCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "evict",
		Short: "Drop the server-side navigation cache",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			msg, err := a.service().EvictCache(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), msg)
			return err
		}),
	}
}

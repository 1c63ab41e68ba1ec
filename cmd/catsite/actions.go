package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/catsite/internal/config"
	"github.com/vango-dev/catsite/internal/errors"
	"github.com/vango-dev/catsite/pkg/actions"
)

func actionsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Inspect the button action table",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every label and role action",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(*configPath)
			if err != nil {
				return err
			}
			printTable(cmd.OutOrStdout(), table)
			return nil
		},
	}

	var role string
	lookup := &cobra.Command{
		Use:   "lookup <label>",
		Short: "Show the action a button label triggers",
		Long: `Show the action a button label triggers.

Examples:
  catsite actions lookup "Free Demo"
  catsite actions lookup --role=footer-link "CAT Preparation"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(*configPath)
			if err != nil {
				return err
			}
			var (
				a  actions.Action
				ok bool
			)
			if role != "" {
				a, ok = table.ForRole(role, args[0])
			} else {
				a, ok = table.Lookup(args[0])
			}
			if !ok {
				return errors.New("E141").WithDetail(fmt.Sprintf("no action for %q", args[0]))
			}
			fmt.Fprintln(cmd.OutOrStdout(), describe(a))
			return nil
		},
	}
	lookup.Flags().StringVarP(&role, "role", "r", "", "Element role the label belongs to")

	cmd.AddCommand(list, lookup)
	return cmd
}

func loadTable(path string) (*actions.Table, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return actionTable(cfg)
}

func printTable(w io.Writer, t *actions.Table) {
	for _, name := range t.LabelNames() {
		fmt.Fprintf(w, "%-40s %s\n", name, describe(t.Labels[name]))
	}
	for _, name := range t.RoleNames() {
		r := t.Roles[name]
		fmt.Fprintf(w, "\n[%s]\n", name)
		labels := make([]string, 0, len(r.Labels))
		for label := range r.Labels {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			fmt.Fprintf(w, "  %-38s %s\n", label, describe(r.Labels[label]))
		}
		if r.Default != nil {
			fmt.Fprintf(w, "  %-38s %s\n", "(default)", describe(*r.Default))
		}
	}
}

// describe renders an action on one line.
func describe(a actions.Action) string {
	if a.Kind() == actions.KindScroll {
		return "scroll → " + a.Scroll
	}
	var b strings.Builder
	severity := a.Severity
	if severity == "" {
		severity = "info"
	}
	fmt.Fprintf(&b, "notify[%s] %q", severity, a.Notify)
	if a.Display != "" {
		fmt.Fprintf(&b, " for %s", a.Display)
	}
	return b.String()
}

package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cthbleachbit/ciel-rs/pkg/instance"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every instance in the workspace and its observable status",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer closeEnv(ctx, e)

		statuses, err := e.ctrl.List(ctx, e.ws)
		if err != nil {
			return err
		}
		return printStatusTable(statuses)
	},
}

func printStatusTable(statuses []instance.Status) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tNS NAME\tMOUNTED\tSTARTED\tRUNNING\tBOOTED")
	for _, s := range statuses {
		fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%t\t%s\n", s.Name, s.NSName, s.Mounted, s.Started, s.Running, s.Booted)
	}
	return w.Flush()
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cthbleachbit/ciel-rs/pkg/instance"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect INSTANCE",
	Short: "Show one instance's observable status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer closeEnv(ctx, e)

		status, err := e.ctrl.Inspect(ctx, e.ws, args[0])
		if err != nil {
			return err
		}

		if inspectJSON {
			data, err := json.MarshalIndent(status, "", "  ")
			if err != nil {
				return fmt.Errorf("ciel: marshal status: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}
		return printStatusTable([]instance.Status{status})
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print status as JSON")
}

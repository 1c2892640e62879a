package cli

import (
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop INSTANCE",
	Short: "Terminate a started instance, graceful then forceful",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer closeEnv(ctx, e)

		return withLock(e, func() error {
			return e.ctrl.Stop(ctx, e.ws, args[0])
		})
	},
}

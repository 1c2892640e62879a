package cli

import (
	"github.com/spf13/cobra"
)

var destroyCmd = &cobra.Command{
	Use:   "destroy INSTANCE",
	Short: "Stop, unmount, and remove an instance's writable layers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer closeEnv(ctx, e)

		return withLock(e, func() error {
			return e.ctrl.Destroy(ctx, e.ws, args[0])
		})
	},
}

package cli

import (
	"github.com/spf13/cobra"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback INSTANCE",
	Short: "Discard an instance's writable diff, restoring the shared buildkit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer closeEnv(ctx, e)

		return withLock(e, func() error {
			return e.ctrl.Rollback(ctx, e.ws, args[0])
		})
	},
}

package cli

import (
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create INSTANCE",
	Short: "Materialize an instance's writable layers over the shared buildkit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer closeEnv(ctx, e)

		return withLock(e, func() error {
			return e.ctrl.Create(ctx, e.ws, args[0])
		})
	},
}

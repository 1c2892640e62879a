package cli

import (
	"github.com/spf13/cobra"
)

var mountCmd = &cobra.Command{
	Use:   "mount INSTANCE",
	Short: "Compose an instance's overlay at its merged mount point",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer closeEnv(ctx, e)

		return withLock(e, func() error {
			return e.ctrl.Mount(ctx, e.ws, args[0])
		})
	},
}

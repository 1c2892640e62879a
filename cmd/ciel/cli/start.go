package cli

import (
	"github.com/spf13/cobra"

	"github.com/cthbleachbit/ciel-rs/pkg/instance"
)

var (
	startExtraOpts []string
	startBindMount []string
)

var startCmd = &cobra.Command{
	Use:   "start INSTANCE",
	Short: "Spawn an instance and wait until it is ready to run commands",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer closeEnv(ctx, e)

		mounts, err := parseBindMounts(startBindMount)
		if err != nil {
			return err
		}

		return withLock(e, func() error {
			return e.ctrl.Start(ctx, e.ws, args[0], startExtraOpts, mounts)
		})
	},
}

func init() {
	startCmd.Flags().StringArrayVar(&startExtraOpts, "extra-opt", nil,
		"additional systemd-nspawn option, repeatable")
	startCmd.Flags().StringArrayVar(&startBindMount, "bind", nil,
		"host:container[:ro] bind mount to set up once ready, repeatable")
}

// parseBindMounts parses host:container[:ro] specs into BindMountSpecs.
func parseBindMounts(specs []string) ([]instance.BindMountSpec, error) {
	out := make([]instance.BindMountSpec, 0, len(specs))
	for _, s := range specs {
		spec, err := parseBindMount(s)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

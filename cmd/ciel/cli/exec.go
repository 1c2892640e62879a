package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:                "exec INSTANCE -- CMD [ARG...]",
	Short:              "Run a command inside a started instance",
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, argv := args[0], args[1:]
		if len(argv) > 0 && argv[0] == "--" {
			argv = argv[1:]
		}

		ctx := cmd.Context()
		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer closeEnv(ctx, e)

		code, err := e.ctrl.Exec(ctx, e.ws, name, argv)
		if err != nil {
			return err
		}
		if code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

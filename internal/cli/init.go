package cli

import (
	"github.com/spf13/cobra"

	"deblend/pkg/config"
)

func newInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [file]",
		Short: "Write the default scene configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateDefaultConfigFile(args[0]); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("Wrote default configuration", "path", args[0])
			return nil
		},
	}
}

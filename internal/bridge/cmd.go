package bridge

import (
	"fmt"
	"log/slog"

	"github.com/compose-network/bridge-deployer/configs"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "bridge",
	Short: "Commands for deploying the Tezos side of the wrap bridge",
	Long:  "Compiles the LIGO contracts when compile.enabled is set, then deploys and wires the bridge contracts",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("starting bridge command. Validating config", slog.Any("config", configs.Values.Deploy))

		if err := configs.Values.Deploy.Validate(); err != nil {
			return err
		}

		if compileFirst(configs.Values.Compile) {
			if err := configs.Values.Compile.Validate(); err != nil {
				return err
			}
			if err := runCompile(cmd.Context(), configs.Values.Compile); err != nil {
				return fmt.Errorf("error occurred compiling contracts: %w", err)
			}
		} else {
			slog.Info("compilation disabled, deploying the Michelson files from the contracts directory")
		}

		slog.Info("config validation successful. Starting bridge deployment...")

		if err := runDeploy(cmd.Context(), configs.Values.Deploy, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("error occurred deploying bridge: %w", err)
		}

		slog.Info("bridge deployed successfully")

		return nil
	},
}

// compileFirst reports whether the bridge command compiles before deploying.
// Sources alone do not enable it since the embedded defaults always list them.
func compileFirst(cfg configs.Compile) bool {
	return cfg.Enabled
}

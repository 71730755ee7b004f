package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"

	nm "subnetsync/node"
)

// AddNodeFlags exposes node configuration as command line flags.
func AddNodeFlags(cmd *cobra.Command) {
	cmd.Flags().String("moniker", config.Moniker, "node name")
	cmd.Flags().String("validator_id", config.ValidatorID, "unique validator identifier within the subnet")
	cmd.Flags().String("rpc.laddr", config.RPC.ListenAddress, "RPC listen address. Port required")
	cmd.Flags().String("cycle.mode", string(config.Cycle.Mode), "consensus mode: continuous, synchronized or flexible")
	cmd.Flags().Int64("cycle.epoch_anchor", config.Cycle.EpochAnchor, "shared epoch anchor, unix seconds")
	cmd.Flags().StringSlice("cycle.expected_validators", config.Cycle.ExpectedValidators, "validator ids expected to participate in quorums")
}

// NewRunNodeCmd returns the command that allows the CLI to start a node.
// It can be used with a custom Provider.
func NewRunNodeCmd(nodeProvider nm.Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "start",
		Aliases: []string{"node", "run"},
		Short:   "Run the validator node",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := nodeProvider(config, logger)
			if err != nil {
				return fmt.Errorf("failed to create node: %w", err)
			}

			if err := n.Start(); err != nil {
				return fmt.Errorf("failed to start node: %w", err)
			}
			logger.Info("Started node", "validator", config.ValidatorID, "mode", config.Cycle.Mode)

			// Stop upon receiving SIGTERM or CTRL-C.
			tmos.TrapSignal(logger, func() {
				if n.IsRunning() {
					if err := n.Stop(); err != nil {
						logger.Error("unable to stop the node", "error", err)
					}
				}
			})

			// Run forever.
			select {}
		},
	}

	AddNodeFlags(cmd)
	return cmd
}

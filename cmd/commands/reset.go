package commands

import (
	"os"

	"github.com/spf13/cobra"

	"subnetsync/state"
)

// UnsafeResetStateCmd removes the coordination store and resets the node
// state file.
// 重置后节点会从cycle 0重新参与，对正在运行的子网慎用
var UnsafeResetStateCmd = &cobra.Command{
	Use:     "unsafe-reset-state",
	Aliases: []string{"unsafe_reset_state"},
	Short:   "(unsafe) Remove the coordination store and reset the node state",
	PreRun:  deprecateSnakeCase,
	RunE:    unsafeResetState,
}

func unsafeResetState(cmd *cobra.Command, args []string) error {
	coordDir := config.CoordinationDir()
	if err := os.RemoveAll(coordDir); err != nil {
		return err
	}
	logger.Info("Removed coordination store", "dir", coordDir)

	stateStore := state.NewFileStore(config.NodeStateFile(), logger)
	if err := stateStore.Reset(); err != nil {
		return err
	}
	logger.Info("Reset node state", "path", config.NodeStateFile())
	return nil
}

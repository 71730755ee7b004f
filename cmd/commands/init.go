package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"
	tmrand "github.com/tendermint/tendermint/libs/rand"

	cfg "subnetsync/config"
	"subnetsync/state"
)

// InitFilesCmd initialises a fresh subnetsync validator home directory.
var InitFilesCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a validator home directory",
	RunE:  initFiles,
}

func initFiles(cmd *cobra.Command, args []string) error {
	return initFilesWithConfig(config)
}

func initFilesWithConfig(config *cfg.Config) error {
	// validator id
	if config.ValidatorID == "" {
		config.ValidatorID = fmt.Sprintf("validator-%v", tmrand.Str(6))
		logger.Info("Generated validator id", "validator_id", config.ValidatorID)
	} else {
		logger.Info("Found validator id", "validator_id", config.ValidatorID)
	}

	// node state file
	stateFile := config.NodeStateFile()
	if tmos.FileExists(stateFile) {
		logger.Info("Found node state", "path", stateFile)
	} else {
		stateStore := state.NewFileStore(stateFile, logger)
		if err := stateStore.Reset(); err != nil {
			return err
		}
		logger.Info("Generated node state", "path", stateFile)
	}

	// config file
	configFile := config.ConfigFile()
	if tmos.FileExists(configFile) {
		logger.Info("Found config file", "path", configFile)
	} else {
		cfg.WriteConfigFile(configFile, config)
		logger.Info("Generated config file", "path", configFile)
	}

	return nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tendermint/tendermint/libs/cli"

	cmd "subnetsync/cmd/commands"
	nm "subnetsync/node"
)

func main() {
	rootCmd := cmd.RootCmd

	rootCmd.AddCommand(
		cli.NewCompletionCmd(rootCmd, true),
	)

	// Deployments wishing to plug a real task backend, chain client or
	// metagraph view can copy this file and pass their own provider built
	// from node.NewNode with Options.
	nodeFunc := nm.DefaultNewNode

	rootCmd.AddCommand(
		cmd.InitFilesCmd,
		cmd.GenValidatorIDCmd,
		cmd.UnsafeResetStateCmd,
		cmd.NewRunNodeCmd(nodeFunc),
	)

	baseCmd := cli.PrepareBaseCmd(rootCmd, "SUBNETSYNC", os.ExpandEnv(filepath.Join("$HOME", ".subnetsync")))

	if err := baseCmd.Execute(); err != nil {
		fmt.Println(err)
		panic(err)
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	tmrand "github.com/tendermint/tendermint/libs/rand"
)

// GenValidatorIDCmd prints a fresh random validator id.
// id只是协调用的标识，不携带密钥材料
var GenValidatorIDCmd = &cobra.Command{
	Use:     "gen-validator-id",
	Aliases: []string{"gen_validator_id"},
	Short:   "Generate a new random validator id",
	PreRun:  deprecateSnakeCase,
	Run:     genValidatorID,
}

func genValidatorID(cmd *cobra.Command, args []string) {
	fmt.Printf("validator-%v\n", tmrand.Str(6))
}

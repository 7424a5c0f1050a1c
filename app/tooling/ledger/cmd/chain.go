package cmd

import (
	"fmt"
	"net/http"

	"github.com/ardanlabs/blockledger/foundation/blockchain/ledger"
	"github.com/ardanlabs/blockledger/foundation/console"
	"github.com/spf13/cobra"
)

type chain struct {
	Length    int            `json:"length"`
	Valid     bool           `json:"valid"`
	Algorithm string         `json:"algorithm"`
	Blocks    []ledger.Block `json:"blocks"`
}

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print every block in the chain.",
	RunE:  chainRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
}

func chainRun(cmd *cobra.Command, args []string) error {
	resp, err := http.Get(fmt.Sprintf("%s/v1/chain", url))
	if err != nil {
		return err
	}

	var c chain
	if err := decode(resp, &c); err != nil {
		return err
	}

	table, err := console.Chain(c.Blocks, c.Valid)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Algorithm: %s  Length: %d\n%s\n", c.Algorithm, c.Length, table)

	return nil
}

package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ardanlabs/blockledger/foundation/console"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type validation struct {
	Valid      bool `json:"valid"`
	Violations []struct {
		Index int    `json:"index"`
		Error string `json:"error"`
	} `json:"violations"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Audit the chain and list every block that fails.",
	RunE:  validateRun,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateRun(cmd *cobra.Command, args []string) error {
	resp, err := http.Get(fmt.Sprintf("%s/v1/chain/validate", url))
	if err != nil {
		return err
	}

	var v validation
	if err := decode(resp, &v); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), console.Validity(v.Valid))
	if v.Valid {
		return nil
	}

	for _, vio := range v.Violations {
		fmt.Fprintln(cmd.OutOrStdout(), pterm.Red(fmt.Sprintf("  blk[%d]: %s", vio.Index, vio.Error)))
	}

	return errors.New("chain is not valid")
}

// Package cmd contains the ledger cli commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/ardanlabs/blockledger/business/web/errs"
	"github.com/spf13/cobra"
)

var url string

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the ledger service.")
}

var rootCmd = &cobra.Command{
	Use:           "ledger",
	Short:         "Inspect and feed a ledger service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command named on the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

// decode reads the JSON response into val, turning error responses from
// the service into errors.
func decode(resp *http.Response, val any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var er errs.Response
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, er.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(val); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

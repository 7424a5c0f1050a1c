package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <payload>...",
	Short: "Queue payloads with the ledger service.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func sendRun(cmd *cobra.Command, args []string) error {
	for _, payload := range args {
		data, err := json.Marshal(struct {
			Payload string `json:"payload"`
		}{
			Payload: payload,
		})
		if err != nil {
			return err
		}

		resp, err := http.Post(fmt.Sprintf("%s/v1/payloads", url), "application/json", bytes.NewReader(data))
		if err != nil {
			return err
		}

		var q struct {
			Source string `json:"source"`
			Offset int64  `json:"offset"`
		}
		if err := decode(resp, &q); err != nil {
			return fmt.Errorf("sending %q: %w", payload, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "queued: source[%s] offset[%d]\n", q.Source, q.Offset)
	}

	return nil
}

package cmd

import (
	"fmt"

	"github.com/ardanlabs/blockledger/foundation/blockchain/digest"
	"github.com/spf13/cobra"
)

var (
	algorithm string
	index     uint64
	timestamp uint64
	prevHash  string
	payload   string
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Compute the hash of a block from its fields.",
	RunE:  digestRun,
}

func init() {
	rootCmd.AddCommand(digestCmd)
	digestCmd.Flags().StringVarP(&algorithm, "algorithm", "a", "sha512", "Hash algorithm: sha512, sha3-512 or keccak256.")
	digestCmd.Flags().Uint64VarP(&index, "index", "i", 0, "Block index.")
	digestCmd.Flags().Uint64VarP(&timestamp, "timestamp", "t", 0, "Block timestamp in milliseconds since the epoch.")
	digestCmd.Flags().StringVar(&prevHash, "prev", "", "Hash of the previous block. Defaults to the zero hash.")
	digestCmd.Flags().StringVarP(&payload, "payload", "p", "", "Block payload.")
}

func digestRun(cmd *cobra.Command, args []string) error {
	alg, err := digest.Parse(algorithm)
	if err != nil {
		return err
	}

	prev := prevHash
	if prev == "" {
		prev = alg.ZeroHash()
	}

	fmt.Fprintln(cmd.OutOrStdout(), digest.Hash(alg, index, timestamp, prev, payload))

	return nil
}

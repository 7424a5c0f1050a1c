package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/blockledger/foundation/stream/kafka"
	"github.com/spf13/cobra"
)

var (
	brokers []string
	topic   string
	timeout time.Duration
)

var produceCmd = &cobra.Command{
	Use:   "produce <payload>...",
	Short: "Publish payloads to the Kafka topic the ledger consumes.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  produceRun,
}

func init() {
	rootCmd.AddCommand(produceCmd)
	produceCmd.Flags().StringSliceVarP(&brokers, "brokers", "b", []string{"localhost:9092"}, "Kafka brokers.")
	produceCmd.Flags().StringVarP(&topic, "topic", "t", "my-topic", "Kafka topic.")
	produceCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Time allowed to publish.")
}

func produceRun(cmd *cobra.Command, args []string) error {
	p, err := kafka.NewProducer(brokers, topic)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	values := make([][]byte, len(args))
	for i, a := range args {
		values[i] = []byte(a)
	}

	if err := p.Publish(ctx, values...); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "published %d payloads to %s\n", len(values), topic)

	return nil
}

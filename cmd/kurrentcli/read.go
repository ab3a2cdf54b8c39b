package main

import (
	"context"
	"fmt"

	kurrentdb "github.com/mcastellin/kurrentdb-client-go"
	"github.com/spf13/cobra"
)

var (
	readStream string
	readCount  uint64
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "read events from a stream, forward from the start",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := kurrentdb.ParseConnectionString(connectionString)
		if err != nil {
			return fmt.Errorf("parsing connection string: %w", err)
		}

		client, err := kurrentdb.NewClient(settings)
		if err != nil {
			return fmt.Errorf("building client: %w", err)
		}
		defer client.Close()

		events, err := client.ReadStream(context.Background(), readStream, kurrentdb.ReadOptions{
			Direction: kurrentdb.ReadForward,
			Count:     readCount,
		})
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}

		for _, e := range events {
			fmt.Printf("%d\t%s\t%s\n", e.EventNumber, e.EventID, e.EventType)
		}
		return nil
	},
}

func init() {
	readCmd.Flags().StringVar(&readStream, "stream", "", "stream name")
	readCmd.Flags().Uint64Var(&readCount, "count", 100, "maximum events to read")
	_ = readCmd.MarkFlagRequired("stream")
}

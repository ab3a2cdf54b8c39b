package main

import (
	"context"
	"fmt"
	"os"

	kurrentdb "github.com/mcastellin/kurrentdb-client-go"
	"github.com/spf13/cobra"
)

var (
	appendStream    string
	appendEventType string
	appendData      string
)

var appendCmd = &cobra.Command{
	Use:   "append",
	Short: "append a single event to a stream",
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

		result, err := client.AppendToStream(context.Background(), appendStream, kurrentdb.AnyRevision(), []kurrentdb.EventData{
			{EventType: appendEventType, ContentType: "application/json", Data: []byte(appendData)},
		})
		if err != nil {
			return fmt.Errorf("append failed: %w", err)
		}

		fmt.Fprintf(os.Stdout, "appended, next expected revision %d\n", result.NextExpectedRevision)
		return nil
	},
}

func init() {
	appendCmd.Flags().StringVar(&appendStream, "stream", "", "stream name")
	appendCmd.Flags().StringVar(&appendEventType, "type", "", "event type")
	appendCmd.Flags().StringVar(&appendData, "data", "{}", "event payload, raw JSON")
	_ = appendCmd.MarkFlagRequired("stream")
	_ = appendCmd.MarkFlagRequired("type")
}

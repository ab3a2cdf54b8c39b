// Command kurrentcli is a small administrative client over the
// kurrentdb package, in the spirit of the teacher's
// remote-procedure-call/cmd command-line shape: one cobra root command
// with a flat set of subcommands, no plugin discovery machinery.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var connectionString string

var rootCmd = &cobra.Command{
	Use:   "kurrentcli",
	Short: "A command-line client for a KurrentDB/EventStoreDB cluster",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&connectionString, "connection-string", os.Getenv("KURRENTDB_CONNECTION_STRING"),
		"esdb[+discover]://[user:pass@]host[:port][,host...][?key=value&...]")
	rootCmd.AddCommand(appendCmd, readCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

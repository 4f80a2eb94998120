package main

import (
	"fmt"
	"os"

	"github.com/aretw0/ntmtrace/internal/cli"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the available machines",
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp(cmd)
		defer app.Close()

		if err := cli.ListMachines(app, os.Stdout); err != nil {
			fmt.Printf("Error listing machines: %v\n", err)
			app.Close()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

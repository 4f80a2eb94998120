package main

import (
	"fmt"
	"os"

	"github.com/aretw0/ntmtrace/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [machine]",
	Short: "Check machine definitions for consistency",
	Long: `Parses the machine (or every machine) and reports undeclared states,
symbols outside the tape alphabet and malformed rules.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp(cmd)
		defer app.Close()

		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		if err := cli.Validate(app, name, os.Stdout); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			app.Close()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

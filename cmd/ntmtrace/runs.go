package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/ntmtrace/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage stored run reports",
	Long:  `List, inspect, and remove run reports kept by the configured store (file or redis).`,
}

var runsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored runs",
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp(cmd)
		defer app.Close()

		ids, err := app.Tracer.Runs().List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing runs: %v\n", err)
			app.Close()
			os.Exit(1)
		}

		if len(ids) == 0 {
			fmt.Println("No stored runs found.")
			return
		}

		fmt.Println("Stored Runs:")
		for _, id := range ids {
			rep, err := app.Tracer.Runs().Get(cmd.Context(), id)
			if err != nil {
				fmt.Printf("- %s (unreadable: %v)\n", id, err)
				continue
			}
			fmt.Printf("- %s  %s '%s' %s at depth %d\n", id, rep.Machine, rep.Input, rep.Result.Verdict, rep.Result.Depth)
		}
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a stored run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp(cmd)
		defer app.Close()

		rep, err := app.Tracer.Runs().Get(cmd.Context(), args[0])
		if err != nil {
			fmt.Printf("Error loading run '%s': %v\n", args[0], err)
			app.Close()
			os.Exit(1)
		}

		if markdown, _ := cmd.Flags().GetBool("markdown"); markdown {
			out, err := tui.NewRenderer()(tui.MarkdownReport(rep))
			if err == nil {
				fmt.Print(out)
				return
			}
		}

		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling run: %v\n", err)
			app.Close()
			os.Exit(1)
		}
		fmt.Println(string(data))
	},
}

var runsRmCmd = &cobra.Command{
	Use:   "rm <run-id>...",
	Short: "Remove one or more runs",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp(cmd)
		defer app.Close()
		hasError := false

		for _, id := range args {
			if err := app.Tracer.Runs().Delete(cmd.Context(), id); err != nil {
				fmt.Printf("Error removing '%s': %v\n", id, err)
				hasError = true
			} else {
				fmt.Printf("Removed run '%s'\n", id)
			}
		}

		if hasError {
			app.Close()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsLsCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsRmCmd)

	runsShowCmd.Flags().Bool("markdown", false, "Render the run as a Markdown report")
}

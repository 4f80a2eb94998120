package main

import (
	"fmt"
	"os"

	"github.com/aretw0/ntmtrace/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <machine> <input>...",
	Short: "Trace a machine on one or more input words",
	Long: `Traces the machine breadth first on every input word. Each trace is
printed to stdout and written to <output_dir>/<machine>_<input>.txt.
Use "" for the empty word.`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp(cmd)
		defer app.Close()

		opts := cli.RunOptions{
			Machine: args[0],
			Inputs:  args[1:],
		}
		if cmd.Flags().Changed("max-depth") {
			depth, _ := cmd.Flags().GetInt("max-depth")
			opts.MaxDepth = &depth
		}
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.NoFile, _ = cmd.Flags().GetBool("no-file")
		opts.OutDir, _ = cmd.Flags().GetString("out")
		opts.Markdown, _ = cmd.Flags().GetBool("markdown")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if err := cli.RunTrace(ctx, app, opts, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			app.Close()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntP("max-depth", "d", 100, "Maximum number of levels to expand (overrides config)")
	runCmd.Flags().Bool("json", false, "Write trace records as NDJSON")
	runCmd.Flags().Bool("no-file", false, "Do not write the per-run output file")
	runCmd.Flags().StringP("out", "o", "", "Directory for output files (overrides config)")
	runCmd.Flags().Bool("markdown", false, "Also render a Markdown report of the run")
}

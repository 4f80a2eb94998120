package main

import (
	"fmt"
	"os"

	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <machine>",
	Short: "Export the machine's state graph",
	Long: `Outputs a Mermaid diagram (graph LR) of the machine's states and rules.
With --input, the accepting path of that word is highlighted.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp(cmd)
		defer app.Close()

		var rep *domain.Report
		if cmd.Flags().Changed("input") {
			input, _ := cmd.Flags().GetString("input")
			var err error
			rep, err = app.Tracer.Trace(cmd.Context(), args[0], input, app.Config.MaxDepth)
			if err != nil {
				fmt.Printf("Error tracing '%s': %v\n", input, err)
				app.Close()
				os.Exit(1)
			}
		}

		output, err := app.Tracer.Graph(args[0], rep)
		if err != nil {
			fmt.Printf("Error rendering graph: %v\n", err)
			app.Close()
			os.Exit(1)
		}
		fmt.Print(output)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("input", "", "Highlight the accepting path of this input word")
}

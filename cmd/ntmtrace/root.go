package main

import (
	"fmt"
	"os"

	"github.com/aretw0/ntmtrace/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ntmtrace",
	Short: "ntmtrace traces nondeterministic Turing machines",
	Long: `ntmtrace explores every computation branch of a nondeterministic Turing
machine breadth first and reports whether an input word is accepted,
rejected, or undecided within a step budget.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("dir", ".", "Directory containing the machine definitions")
	flags.Bool("loam", false, "Read machines as Loam documents (Markdown frontmatter)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.Bool("log-json", false, "Write logs as JSON lines")
	flags.String("log-file", "", "Also write debug logs to this file")
	flags.String("store", "", "Report store: memory, file or redis (overrides config)")
	flags.Bool("strict", false, "Reject input symbols outside the input alphabet")
}

// newApp builds the application from the persistent flags, exiting on failure.
func newApp(cmd *cobra.Command) *cli.App {
	flags := cmd.Flags()
	opts := cli.Options{}
	opts.Dir, _ = flags.GetString("dir")
	opts.Loam, _ = flags.GetBool("loam")
	opts.LogLevel, _ = flags.GetString("log-level")
	opts.LogJSON, _ = flags.GetBool("log-json")
	opts.LogFile, _ = flags.GetString("log-file")
	opts.Store, _ = flags.GetString("store")
	opts.Strict, _ = flags.GetBool("strict")
	if flags.Lookup("redis") != nil {
		opts.RedisAddr, _ = flags.GetString("redis")
	}

	app, err := cli.NewApp(opts)
	if err != nil {
		fmt.Printf("Error initializing ntmtrace: %v\n", err)
		os.Exit(1)
	}
	return app
}

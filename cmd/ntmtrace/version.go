package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/ntmtrace"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ntmtrace",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ntmtrace version %s\n", strings.TrimSpace(ntmtrace.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

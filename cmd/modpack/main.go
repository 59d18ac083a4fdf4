package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "modpack",
	Short: "Single-module JavaScript and TypeScript transpiler",
	Long: `Modpack transforms one module at a time: it rewrites import specifiers
through an import map, lowers JSX, and in development mode instruments
components for fast refresh and emits a source map.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

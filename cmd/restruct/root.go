package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "restruct",
	Short: "Move methods between types while preserving behavior.",
	Long: `Restruct relocates methods across the types of a project, rewriting
references and leaving delegating stubs so every caller keeps working.`,
}

var (
	flagRoot     string
	flagResolver string
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "Project root directory")
	rootCmd.PersistentFlags().StringVar(&flagResolver, "resolver", "", "Identifier resolver: heuristic or table")
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridable at link time.
var Version = "dev"

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the restruct version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("restruct %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

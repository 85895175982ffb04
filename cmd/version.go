package cmd

import (
	"fmt"

	"github.com/alexiusacademia/gohyst/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gohyst",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gohyst v%s\n", version.Version)
		fmt.Println("Hysteretic Material Simulator")
		fmt.Println("Modified Ibarra-Medina-Krawinkler model with pinching")
		fmt.Printf("Build: %s (commit %s)\n", version.BuildTime, version.GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

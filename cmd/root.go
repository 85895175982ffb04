package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alexiusacademia/gohyst/internal/config"
	"github.com/alexiusacademia/gohyst/internal/version"
	"github.com/spf13/cobra"
)

var (
	envFile  string
	logLevel string
	cfg      config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gohyst",
	Short: "Hysteretic material response tool",
	Long: `gohyst - Go Hysteretic Material Simulator

A CLI tool for the cyclic response of structural components modelled
with the modified Ibarra-Medina-Krawinkler (IMK) material with pinching.

This tool helps structural engineers:
  - Define the backbone and the cyclic deterioration of a component
  - Drive the material through quasi-static loading protocols
  - Inspect hysteresis loops, dissipated energy and failure
  - Export histories to spreadsheets, PDF reports and plots
  - Save and restore material checkpoints
  - Serve materials to other programs over HTTP`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load(envFile)
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		slog.SetDefault(cfg.NewLogger(os.Stderr))
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		fmt.Println("  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Println("  ║                                                           ║")
		fmt.Printf("  ║   gohyst v%-48s║\n", version.Version)
		fmt.Println("  ║   Go Hysteretic Material Simulator                        ║")
		fmt.Printf("  ║   %s ©  %-41s║\n", version.Author, version.Year)
		fmt.Println("  ║                                                           ║")
		fmt.Println("  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Println("  A CLI tool for the cyclic response of structural components")
		fmt.Println("  using the IMK hysteretic material with pinching.")
		fmt.Println()
		fmt.Println("  Features:")
		fmt.Println("    • Tri-linear backbone with cyclic deterioration")
		fmt.Println("    • Pinched reloading and residual strength")
		fmt.Println("    • Cyclic protocols from JSON, YAML or XLSX files")
		fmt.Println("    • Hysteresis plots, XLSX and PDF reports")
		fmt.Println("    • Checkpoint store and HTTP API")
		fmt.Println()
		fmt.Println("  Use 'gohyst --help' to see available commands.")
		fmt.Println()
		fmt.Println("  ─────────────────────────────────────────────────────────────")
		fmt.Printf("  Copyright © %s %s. All rights reserved.\n", version.Year, version.Author)
		fmt.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Environment file with GOHYST_* settings")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

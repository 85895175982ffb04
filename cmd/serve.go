package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexiusacademia/gohyst/internal/server"
	"github.com/alexiusacademia/gohyst/internal/store"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveNoStore bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve materials over an HTTP JSON API",
	Long: `Start an HTTP server that creates and drives materials on request.

Routes (all under /api):
  POST   /materials                  create a material
  GET    /materials/{id}             current trial response
  DELETE /materials/{id}             remove a material
  POST   /materials/{id}/trial       set a trial deformation {"strain": u}
  POST   /materials/{id}/commit      commit the trial state
  POST   /materials/{id}/revert      revert to the last commit
  POST   /materials/{id}/reset       revert to the virgin state
  GET    /materials/{id}/vector      flat state vector
  POST   /materials/{id}/checkpoint  save to the checkpoint store
  POST   /run                        run a material through a protocol

Settings come from GOHYST_ADDR, GOHYST_RATE, GOHYST_BURST and
GOHYST_STORE_DIR.

Examples:
  gohyst serve
  gohyst serve --addr :9090 --no-store`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides GOHYST_ADDR)")
	serveCmd.Flags().BoolVar(&serveNoStore, "no-store", false, "Disable the checkpoint store")
}

func runServe(cmd *cobra.Command, args []string) {
	addr := cfg.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	opts := server.Options{Rate: cfg.Rate, Burst: cfg.Burst}
	if !serveNoStore {
		st, err := store.Open(cfg.StoreDir)
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			return
		}
		defer st.Close()
		opts.Store = st
		slog.Info("[SERVER] checkpoint store", "dir", cfg.StoreDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(opts).ListenAndServe(ctx, addr); err != nil {
		slog.Error("[SERVER] stopped with error", "error", err)
		fmt.Printf("Error: %v\n", err)
	}
}

package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/alexiusacademia/gohyst/internal/imk"
	"github.com/alexiusacademia/gohyst/internal/store"
	"github.com/spf13/cobra"
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Manage saved material checkpoints",
	Long: `List, inspect and delete material checkpoints saved with
'gohyst run --save' or through the HTTP API.

The store location is taken from GOHYST_STORE_DIR.

Subcommands:
  list    - List stored runs
  show    - Show the materials saved under a run
  vector  - Print the flat state vector of one material
  delete  - Delete a run and its checkpoints`,
}

var checkpointListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs",
	Args:  cobra.NoArgs,
	Run:   runCheckpointList,
}

var checkpointShowCmd = &cobra.Command{
	Use:   "show RUN",
	Short: "Show the materials saved under a run",
	Args:  cobra.ExactArgs(1),
	Run:   runCheckpointShow,
}

var checkpointVectorCmd = &cobra.Command{
	Use:   "vector RUN TAG",
	Short: "Print the flat state vector of one material",
	Args:  cobra.ExactArgs(2),
	Run:   runCheckpointVector,
}

var checkpointDeleteCmd = &cobra.Command{
	Use:   "delete RUN",
	Short: "Delete a run and its checkpoints",
	Args:  cobra.ExactArgs(1),
	Run:   runCheckpointDelete,
}

func init() {
	rootCmd.AddCommand(checkpointCmd)
	checkpointCmd.AddCommand(checkpointListCmd)
	checkpointCmd.AddCommand(checkpointShowCmd)
	checkpointCmd.AddCommand(checkpointVectorCmd)
	checkpointCmd.AddCommand(checkpointDeleteCmd)
}

func openStore() (*store.Store, bool) {
	st, err := store.Open(cfg.StoreDir)
	if err != nil {
		fmt.Printf("Error opening store: %v\n", err)
		return nil, false
	}
	return st, true
}

func runCheckpointList(cmd *cobra.Command, args []string) {
	st, ok := openStore()
	if !ok {
		return
	}
	defer st.Close()

	runs, err := st.Runs()
	if err != nil {
		fmt.Printf("Error listing runs: %v\n", err)
		return
	}
	if len(runs) == 0 {
		fmt.Println("No stored runs.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  ID\tName\tSteps\tFailed\tCreated\n")
	fmt.Fprintf(w, "  ──\t────\t─────\t──────\t───────\n")
	for _, r := range runs {
		fmt.Fprintf(w, "  %s\t%s\t%d\t%v\t%s\n", r.ID, r.Name, r.Steps, r.Failed, r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()
}

func runCheckpointShow(cmd *cobra.Command, args []string) {
	st, ok := openStore()
	if !ok {
		return
	}
	defer st.Close()

	info, err := st.Run(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	snaps, err := st.Checkpoints(info.ID)
	if err != nil {
		fmt.Printf("Error reading checkpoints: %v\n", err)
		return
	}

	fmt.Println()
	fmt.Printf("  Run: %s (%s)\n", info.ID, info.Name)
	fmt.Printf("  Created: %s\n", info.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Tag\tDeformation\tForce\tTangent\tEnergy\tBranch\tFailed\n")
	fmt.Fprintf(w, "  ───\t───────────\t─────\t───────\t──────\t──────\t──────\n")
	for _, s := range snaps {
		c := s.Committed
		fmt.Fprintf(w, "  %d\t%.5g\t%.5g\t%.5g\t%.5g\t%s\t%v\n", s.Tag, c.U, c.F, c.Kreport, c.EngAcml, c.Branch, c.Failed)
	}
	w.Flush()
	fmt.Println()
}

func runCheckpointVector(cmd *cobra.Command, args []string) {
	tag, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Printf("Error: invalid tag %q\n", args[1])
		return
	}
	st, ok := openStore()
	if !ok {
		return
	}
	defer st.Close()

	snap, err := st.Load(args[0], tag)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	m, err := imk.Restore(snap)
	if err != nil {
		fmt.Printf("Error restoring material: %v\n", err)
		return
	}
	for i, v := range m.SendSelf() {
		fmt.Printf("%d\t%.17g\n", i, v)
	}
}

func runCheckpointDelete(cmd *cobra.Command, args []string) {
	st, ok := openStore()
	if !ok {
		return
	}
	defer st.Close()

	if err := st.DeleteRun(args[0]); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Run %s deleted.\n", args[0])
}

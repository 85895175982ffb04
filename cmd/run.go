package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/alexiusacademia/gohyst/internal/diagram"
	"github.com/alexiusacademia/gohyst/internal/imk"
	"github.com/alexiusacademia/gohyst/internal/protocol"
	"github.com/alexiusacademia/gohyst/internal/report"
	"github.com/alexiusacademia/gohyst/internal/store"
	"github.com/spf13/cobra"
)

var (
	runMaterialFiles []string
	runProtocolFile  string
	runStep          float64
	runIterations    int
	runStopOnFailure bool
	runShowDiagram   bool
	runShowHistory   bool
	runExportFile    string
	runXLSXFile      string
	runPDFFile       string
	runSave          bool
)

// default protocol amplitudes when no protocol file is given
var defaultAmplitudes = []float64{0.01, 0.02, 0.04, 0.08, 0.12}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive materials through a loading protocol",
	Long: `Run a quasi-static analysis of one or more materials under a
deformation protocol, committing every step.

Materials and protocols are read from JSON or YAML files (protocols may
also be XLSX). Without --material the built-in example material is used;
without --protocol a standard symmetric protocol is used. Several
materials run concurrently and are compared side by side.

Examples:
  gohyst run
  gohyst run -m beam.yaml -p cyclic.yaml --diagram
  gohyst run -m beam.yaml -p cyclic.xlsx -o loop.png --xlsx history.xlsx --pdf report.pdf
  gohyst run -m a.yaml -m b.yaml -p cyclic.yaml
  gohyst run -m beam.yaml --save`,
	Run: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVarP(&runMaterialFiles, "material", "m", nil, "Path to material JSON/YAML file (repeatable)")
	runCmd.Flags().StringVarP(&runProtocolFile, "protocol", "p", "", "Path to protocol JSON/YAML/XLSX file")
	runCmd.Flags().Float64VarP(&runStep, "step", "s", 0, "Override the protocol step size")
	runCmd.Flags().IntVar(&runIterations, "iterations", 0, "Intermediate trial strains per step")
	runCmd.Flags().BoolVar(&runStopOnFailure, "stop-on-failure", false, "Stop at the first failed step")

	// Output options
	runCmd.Flags().BoolVar(&runShowDiagram, "diagram", false, "Show ASCII hysteresis diagram")
	runCmd.Flags().BoolVar(&runShowHistory, "history", false, "Show ASCII force history")
	runCmd.Flags().StringVarP(&runExportFile, "output", "o", "", "Export hysteresis plot to file (png, svg, pdf)")
	runCmd.Flags().StringVar(&runXLSXFile, "xlsx", "", "Export response history to an XLSX workbook")
	runCmd.Flags().StringVar(&runPDFFile, "pdf", "", "Export a PDF summary report")
	runCmd.Flags().BoolVar(&runSave, "save", false, "Save the final material states to the checkpoint store")
}

func runRun(cmd *cobra.Command, args []string) {
	// Load materials
	var files []*protocol.MaterialFile
	if len(runMaterialFiles) == 0 {
		files = append(files, &protocol.MaterialFile{Tag: 1, Name: "example", Params: imk.ExampleParams()})
	}
	for _, path := range runMaterialFiles {
		mf, err := protocol.LoadMaterial(path)
		if err != nil {
			fmt.Printf("Error loading material %s: %v\n", path, err)
			return
		}
		if mf.Name == "" {
			mf.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		files = append(files, mf)
	}
	if runSave {
		tags := make(map[int]string)
		for _, mf := range files {
			if other, ok := tags[mf.Tag]; ok {
				fmt.Printf("Error: materials %s and %s share tag %d; checkpoints are stored by tag\n", other, mf.Name, mf.Tag)
				return
			}
			tags[mf.Tag] = mf.Name
		}
	}

	// Load protocol
	var p *protocol.Protocol
	if runProtocolFile != "" {
		var err error
		p, err = protocol.Load(runProtocolFile)
		if err != nil {
			fmt.Printf("Error loading protocol: %v\n", err)
			return
		}
	} else {
		p = protocol.Standard("standard", defaultAmplitudes, 2, protocol.DefaultStepSize)
	}
	if runStep > 0 {
		p.StepSize = runStep
	}
	if err := p.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if runIterations < 0 || runIterations > protocol.MaxIterations {
		fmt.Printf("Error: iterations must lie in [0, %d]\n", protocol.MaxIterations)
		return
	}
	history := p.History()

	// Run analyses
	opts := protocol.Options{Iterations: runIterations, StopOnFailure: runStopOnFailure}
	materials := make([]*imk.Material, len(files))
	jobs := make([]protocol.Job, len(files))
	for i, mf := range files {
		m, err := imk.New(mf.Tag, mf.Params)
		if err != nil {
			fmt.Printf("Error creating material %s: %v\n", mf.Name, err)
			return
		}
		materials[i] = m
		jobs[i] = protocol.Job{Name: mf.Name, Material: m, History: history, Options: opts}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	results, err := protocol.RunBatch(ctx, jobs)
	if err != nil {
		fmt.Printf("Error running analysis: %v\n", err)
		return
	}

	// Print results
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("     IMK PINCHING HYSTERESIS ANALYSIS")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Printf("  Protocol: %s\n", p.Name)
	fmt.Printf("  Peaks: %d, steps: %d, step size: %g\n", len(p.Peaks()), len(history), p.StepSize)
	fmt.Println()

	for i, res := range results {
		rep := report.Report{
			Title:    fmt.Sprintf("%s - %s", files[i].Name, p.Name),
			Material: files[i].Name,
			Tag:      files[i].Tag,
			Protocol: p.Name,
			Params:   files[i].Params,
			Result:   res,
		}
		var lines []string
		for _, kv := range report.Summary(rep) {
			lines = append(lines, fmt.Sprintf("%-18s %s", kv[0]+":", kv[1]))
		}
		fmt.Print(diagram.DrawSummaryBox(strings.ToUpper(files[i].Name), lines))
		fmt.Println()

		data := loopData(rep)
		if runShowDiagram {
			fmt.Println(diagram.DrawASCIILoop(data, 70, 24))
		}
		if runShowHistory {
			fmt.Println(diagram.DrawForceHistory(data, 70, 12))
		}
		if runExportFile != "" {
			if err := diagram.ExportHysteresis(data, outputName(runExportFile, files[i].Name, len(results))); err != nil {
				fmt.Printf("Error exporting diagram: %v\n", err)
			} else {
				fmt.Printf("Diagram exported to: %s\n", outputName(runExportFile, files[i].Name, len(results)))
			}
		}
		if runXLSXFile != "" {
			if err := writeReport(outputName(runXLSXFile, files[i].Name, len(results)), rep, report.WriteXLSX); err != nil {
				fmt.Printf("Error exporting workbook: %v\n", err)
			}
		}
		if runPDFFile != "" {
			if err := writeReport(outputName(runPDFFile, files[i].Name, len(results)), rep, report.WritePDF); err != nil {
				fmt.Printf("Error exporting report: %v\n", err)
			}
		}
	}

	if len(results) > 1 {
		fmt.Println("COMPARISON:")
		fmt.Println("───────────────────────────────────────────────────────────────")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Material\tMax force\tMin force\tEnergy\tFailed at\n")
		fmt.Fprintf(w, "  ────────\t─────────\t─────────\t──────\t─────────\n")
		for i, res := range results {
			failed := "-"
			if res.Failed {
				failed = fmt.Sprintf("step %d", res.FailedAt)
			}
			fmt.Fprintf(w, "  %s\t%.4g\t%.4g\t%.4g\t%s\n", files[i].Name, res.MaxForce, res.MinForce, res.Energy, failed)
		}
		w.Flush()
		fmt.Println()
	}

	if runSave {
		if err := saveRun(p, materials, results); err != nil {
			fmt.Printf("Error saving checkpoint: %v\n", err)
		}
	}
}

func loopData(rep report.Report) diagram.LoopData {
	res := rep.Result
	data := diagram.LoopData{Title: rep.Title, FailedAt: res.FailedAt}
	umax := 0.0
	for _, r := range res.Records {
		data.Strain = append(data.Strain, r.Strain)
		data.Stress = append(data.Stress, r.Stress)
		umax = math.Max(umax, math.Abs(r.Strain))
	}
	if umax > 0 {
		data.EnvelopeStrain, data.EnvelopeStress = imk.Envelope(rep.Params, umax, 50)
	}
	return data
}

// outputName inserts the material name before the extension when several
// materials share one output flag
func outputName(path, name string, n int) string {
	if n < 2 {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + name + ext
}

func writeReport(path string, rep report.Report, write func(w io.Writer, r report.Report) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, rep); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Report written to: %s\n", path)
	return nil
}

func saveRun(p *protocol.Protocol, materials []*imk.Material, results []*protocol.Result) error {
	st, err := store.Open(cfg.StoreDir)
	if err != nil {
		return err
	}
	defer st.Close()

	info := store.RunInfo{Name: p.Name, Protocol: p.Name}
	for _, res := range results {
		info.Steps = max(info.Steps, len(res.Records))
		info.Failed = info.Failed || res.Failed
	}
	info, err = st.SaveRun(info)
	if err != nil {
		return err
	}
	for _, m := range materials {
		if err := st.Save(info.ID, m.Snapshot()); err != nil {
			return err
		}
	}
	fmt.Printf("Checkpoint saved: run %s (%d materials)\n", info.ID, len(materials))
	return nil
}

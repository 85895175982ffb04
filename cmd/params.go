package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/alexiusacademia/gohyst/internal/imk"
	"github.com/alexiusacademia/gohyst/internal/protocol"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	paramsMaterialFile string
	paramsWriteFile    string
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Show or create material parameters",
	Long: `Show the parameters and the derived backbone of a material.

Without --material the built-in example material is used. With --write
the material is saved as a JSON or YAML file (by extension) that can be
edited and passed to 'gohyst run'.

Examples:
  gohyst params
  gohyst params --write beam.yaml
  gohyst params --material beam.yaml`,
	Run: runParams,
}

func init() {
	rootCmd.AddCommand(paramsCmd)

	paramsCmd.Flags().StringVarP(&paramsMaterialFile, "material", "m", "", "Path to material JSON/YAML file")
	paramsCmd.Flags().StringVarP(&paramsWriteFile, "write", "w", "", "Write the material to a JSON or YAML file")
}

func runParams(cmd *cobra.Command, args []string) {
	mf := &protocol.MaterialFile{Tag: 1, Name: "example", Params: imk.ExampleParams()}
	if paramsMaterialFile != "" {
		var err error
		mf, err = protocol.LoadMaterial(paramsMaterialFile)
		if err != nil {
			fmt.Printf("Error loading material: %v\n", err)
			return
		}
	}

	if paramsWriteFile != "" {
		if err := writeMaterialFile(paramsWriteFile, mf); err != nil {
			fmt.Printf("Error writing material: %v\n", err)
			return
		}
		fmt.Printf("Material written to: %s\n", paramsWriteFile)
		return
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("     IMK PINCHING MATERIAL PARAMETERS")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
	if mf.Name != "" {
		fmt.Printf("  Material: %s (tag %d)\n", mf.Name, mf.Tag)
		fmt.Println()
	}

	fmt.Println("INPUT PARAMETERS:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	values := mf.Params.Slice()
	for i, name := range imk.ParamNames() {
		fmt.Fprintf(w, "  %s:\t%g\n", name, values[i])
	}
	w.Flush()
	fmt.Println()

	ini := imk.NewInitial(mf.Params)
	pos, neg := mf.Params.Pos, mf.Params.Neg
	fmt.Println("DERIVED BACKBONE:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  \tPositive\tNegative\n")
	fmt.Fprintf(w, "  \t────────\t────────\n")
	fmt.Fprintf(w, "  Yield deformation:\t%.5g\t%.5g\n", ini.PosUy0, -ini.NegUy0)
	fmt.Fprintf(w, "  Yield force:\t%.5g\t%.5g\n", pos.Fy0, -neg.Fy0)
	fmt.Fprintf(w, "  Capping deformation:\t%.5g\t%.5g\n", ini.PosUcap0, -ini.NegUcap0)
	fmt.Fprintf(w, "  Capping force:\t%.5g\t%.5g\n", ini.PosFcap0, -ini.NegFcap0)
	fmt.Fprintf(w, "  Post-yield stiffness:\t%.5g\t%.5g\n", ini.PosKp0, ini.NegKp0)
	fmt.Fprintf(w, "  Post-capping stiffness:\t%.5g\t%.5g\n", -ini.PosKpc0, -ini.NegKpc0)
	fmt.Fprintf(w, "  Residual force:\t%.5g\t%.5g\n", pos.FresFy0*pos.Fy0, -neg.FresFy0*neg.Fy0)
	fmt.Fprintf(w, "  Ultimate deformation:\t%.5g\t%.5g\n", pos.Uu0, -neg.Uu0)
	w.Flush()
	fmt.Println()

	fmt.Println("REFERENCE ENERGIES:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Basic strength:\t%.5g\n", ini.EngRefS)
	fmt.Fprintf(w, "  Post-capping strength:\t%.5g\n", ini.EngRefC)
	fmt.Fprintf(w, "  Accelerated reloading:\t%.5g\n", ini.EngRefA)
	fmt.Fprintf(w, "  Unloading stiffness:\t%.5g\n", ini.EngRefK)
	w.Flush()
	fmt.Println()
}

func writeMaterialFile(path string, mf *protocol.MaterialFile) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(mf)
	default:
		data, err = json.MarshalIndent(mf, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

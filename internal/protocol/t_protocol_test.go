package protocol

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexiusacademia/gohyst/internal/imk"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/xuri/excelize/v2"
)

func simpleMaterial(tst *testing.T, tag int) *imk.Material {
	side := imk.SideParams{Up0: 0.05, Upc0: 0.2, Uu0: 0.5, Fy0: 100, FcapFy0: 1.2, FresFy0: 0.2}
	m, err := imk.New(tag, imk.Params{Ke: 1000, Pos: side, Neg: side})
	if err != nil {
		tst.Fatalf("cannot create material: %v\n", err)
	}
	return m
}

func Test_protocol01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("protocol01. history")

	p := Standard("unit", []float64{1}, 1, 0.5)
	if err := p.Validate(); err != nil {
		tst.Errorf("Validate failed: %v\n", err)
		return
	}
	chk.Array(tst, "peaks", 1e-17, p.Peaks(), []float64{1, -1, 0})
	chk.Array(tst, "history", 1e-17, p.History(), []float64{0.5, 1, 0.5, 0, -0.5, -1, -0.5, 0})

	q := &Protocol{Targets: []float64{0.3, 0.3, 0.25}, StepSize: 0.1}
	h := q.History()
	io.Pforan("h = %v\n", h)
	chk.Array(tst, "targets", 1e-15, h, []float64{0.1, 0.2, 0.3, 0.25})

	bad := []*Protocol{
		{Targets: []float64{1}},
		{StepSize: 0.1},
		{Cycles: []Cycle{{Amplitude: -1, Repeats: 1}}, StepSize: 0.1},
		{Cycles: []Cycle{{Amplitude: 1, Repeats: 0}}, StepSize: 0.1},
	}
	for i, b := range bad {
		var verr *ValidationError
		if err := b.Validate(); !errors.As(err, &verr) {
			tst.Errorf("protocol %d should be rejected: %v\n", i, err)
		}
	}
}

func Test_protocol03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("protocol03. step limit")

	ok := []*Protocol{
		Standard("a", []float64{0.01, 0.025, 0.04}, 3, 0.003),
		{Targets: []float64{0.02, -0.013, -0.013}, Cycles: []Cycle{{Amplitude: 0.05, Repeats: 2}}, StepSize: 0.004},
		{Targets: []float64{0.5}, StepSize: 1e-6},
	}
	for i, p := range ok {
		if err := p.Validate(); err != nil {
			tst.Errorf("protocol %d should be accepted: %v\n", i, err)
			continue
		}
		if n := len(p.History()); float64(n) != p.steps() {
			tst.Errorf("protocol %d: counted %g steps, history has %d\n", i, p.steps(), n)
		}
	}

	huge := []*Protocol{
		{Cycles: []Cycle{{Amplitude: 1e6, Repeats: 1000000}}, StepSize: 1e-9},
		{Targets: []float64{2}, StepSize: 1e-6},
		{Cycles: []Cycle{{Amplitude: 0.01, Repeats: MaxSteps}}, StepSize: 0.1},
	}
	for i, p := range huge {
		var verr *ValidationError
		if err := p.Validate(); !errors.As(err, &verr) {
			tst.Errorf("protocol %d should exceed the step limit: %v\n", i, err)
		}
	}
}

func Test_protocol02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("protocol02. files")

	dir := tst.TempDir()

	jsonPath := filepath.Join(dir, "p.json")
	os.WriteFile(jsonPath, []byte(`{"name":"json","cycles":[{"amplitude":0.02,"repeats":2}],"step_size":0.01}`), 0644)
	p, err := Load(jsonPath)
	if err != nil {
		tst.Errorf("Load json failed: %v\n", err)
		return
	}
	chk.Array(tst, "json peaks", 1e-17, p.Peaks(), []float64{0.02, -0.02, 0.02, -0.02, 0})

	yamlPath := filepath.Join(dir, "p.yaml")
	os.WriteFile(yamlPath, []byte("name: yaml\ntargets: [0.01, -0.03]\n"), 0644)
	p, err = Load(yamlPath)
	if err != nil {
		tst.Errorf("Load yaml failed: %v\n", err)
		return
	}
	chk.Float64(tst, "default step", 1e-17, p.StepSize, DefaultStepSize)
	chk.Array(tst, "yaml peaks", 1e-17, p.Peaks(), []float64{0.01, -0.03})

	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "target")
	f.SetCellValue("Sheet1", "A2", 0.01)
	f.SetCellValue("Sheet1", "A3", -0.02)
	f.SetCellValue("Sheet1", "A4", 0.04)
	xlsxPath := filepath.Join(dir, "steps.xlsx")
	if err := f.SaveAs(xlsxPath); err != nil {
		tst.Errorf("cannot write xlsx: %v\n", err)
		return
	}
	f.Close()
	p, err = Load(xlsxPath)
	if err != nil {
		tst.Errorf("Load xlsx failed: %v\n", err)
		return
	}
	if p.Name != "steps" {
		tst.Errorf("wrong name %q\n", p.Name)
	}
	chk.Array(tst, "xlsx peaks", 1e-17, p.Peaks(), []float64{0.01, -0.02, 0.04})

	if _, err := Load(filepath.Join(dir, "p.txt")); err == nil {
		tst.Errorf("missing file should fail\n")
	}
	txtPath := filepath.Join(dir, "q.txt")
	os.WriteFile(txtPath, []byte("0.1"), 0644)
	if _, err := Load(txtPath); err == nil {
		tst.Errorf("unknown format should fail\n")
	}

	matPath := filepath.Join(dir, "m.yaml")
	os.WriteFile(matPath, []byte(`tag: 3
params:
  ke: 1000
  pos: {up0: 0.05, upc0: 0.2, uu0: 0.5, fy0: 100, fcap_fy0: 1.2, fres_fy0: 0.2}
  neg: {up0: 0.05, upc0: 0.2, uu0: 0.5, fy0: 100, fcap_fy0: 1.2, fres_fy0: 0.2}
  kappa_f: 0.4
`), 0644)
	mf, err := LoadMaterial(matPath)
	if err != nil {
		tst.Errorf("LoadMaterial failed: %v\n", err)
		return
	}
	if mf.Tag != 3 {
		tst.Errorf("wrong tag %d\n", mf.Tag)
	}
	chk.Float64(tst, "ke", 1e-17, mf.Params.Ke, 1000)
	chk.Float64(tst, "neg fy0", 1e-17, mf.Params.Neg.Fy0, 100)
	chk.Float64(tst, "kappa_f", 1e-17, mf.Params.KappaF, 0.4)

	badPath := filepath.Join(dir, "bad.json")
	os.WriteFile(badPath, []byte(`{"tag":1,"params":{"ke":-5}}`), 0644)
	if _, err := LoadMaterial(badPath); !errors.Is(err, imk.ErrInvalidParams) {
		tst.Errorf("invalid material should be rejected: %v\n", err)
	}
}

func Test_run01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("run01")

	history := []float64{0.05, 0.12, 0.13, 0.2, 0.4, 0.45, 0.55, 0.1}
	res, err := Run(context.Background(), simpleMaterial(tst, 1), history, Options{})
	if err != nil {
		tst.Errorf("Run failed: %v\n", err)
		return
	}
	if len(res.Records) != len(history) {
		tst.Errorf("wrong number of records: %d\n", len(res.Records))
		return
	}
	stress := make([]float64, len(history))
	for i, r := range res.Records {
		stress[i] = r.Stress
	}
	chk.Array(tst, "stress", 1e-10, stress, []float64{50, 108, 112, 90, 20, 20, 0, 0})
	chk.Float64(tst, "max", 1e-10, res.MaxForce, 112)
	chk.Float64(tst, "min", 1e-17, res.MinForce, 0)
	if !res.Failed || res.FailedAt != 6 {
		tst.Errorf("failure should be recorded at step 6: %v %d\n", res.Failed, res.FailedAt)
	}

	// intermediate trials do not change the converged response
	iterated, err := Run(context.Background(), simpleMaterial(tst, 1), history, Options{Iterations: 4})
	if err != nil {
		tst.Errorf("Run with iterations failed: %v\n", err)
		return
	}
	for i := range res.Records {
		if iterated.Records[i] != res.Records[i] {
			tst.Errorf("step %d differs: %+v != %+v\n", i, iterated.Records[i], res.Records[i])
		}
	}

	short, _ := Run(context.Background(), simpleMaterial(tst, 1), history, Options{StopOnFailure: true})
	if len(short.Records) != 7 {
		tst.Errorf("run should stop at the failed step: %d records\n", len(short.Records))
	}
}

// trialRecorder keeps every trial deformation passed to the material
type trialRecorder struct {
	*imk.Material
	trials []float64
}

func (r *trialRecorder) SetTrialStrain(u float64) error {
	r.trials = append(r.trials, u)
	return r.Material.SetTrialStrain(u)
}

func Test_run03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("run03. iterations start from the current deformation")

	m := simpleMaterial(tst, 1)
	m.SetTrialStrain(0.13)
	m.CommitState()

	rec := &trialRecorder{Material: m}
	res, err := Run(context.Background(), rec, []float64{0.12}, Options{Iterations: 3})
	if err != nil {
		tst.Errorf("Run failed: %v\n", err)
		return
	}
	chk.Array(tst, "trials", 1e-15, rec.trials, []float64{0.1275, 0.125, 0.1225, 0.12})
	chk.Float64(tst, "F", 1e-10, res.Records[0].Stress, 102)
}

func Test_run02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("run02. cancellation and batch")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, simpleMaterial(tst, 1), []float64{0.01}, Options{}); !errors.Is(err, context.Canceled) {
		tst.Errorf("cancelled run should fail: %v\n", err)
	}

	if _, err := Run(context.Background(), simpleMaterial(tst, 1), []float64{0.01, math.NaN()}, Options{}); !errors.Is(err, imk.ErrInvalidStrain) {
		tst.Errorf("invalid strain should stop the run: %v\n", err)
	}

	h1 := Standard("a", []float64{0.05, 0.15}, 2, 0.01).History()
	h2 := Standard("b", []float64{0.12, 0.3}, 1, 0.02).History()
	var jobs []Job
	for i := 0; i < 8; i++ {
		h := h1
		if i%2 == 1 {
			h = h2
		}
		jobs = append(jobs, Job{Name: "job", Material: simpleMaterial(tst, i), History: h})
	}
	results, err := RunBatch(context.Background(), jobs)
	if err != nil {
		tst.Errorf("RunBatch failed: %v\n", err)
		return
	}
	for i, res := range results {
		h := h1
		if i%2 == 1 {
			h = h2
		}
		ref, _ := Run(context.Background(), simpleMaterial(tst, i), h, Options{})
		chk.Float64(tst, "energy", 1e-15, res.Energy, ref.Energy)
		chk.Float64(tst, "max", 1e-15, res.MaxForce, ref.MaxForce)
		if len(res.Records) != len(ref.Records) || res.Records[len(ref.Records)-1] != ref.Records[len(ref.Records)-1] {
			tst.Errorf("job %d differs from the sequential run\n", i)
		}
	}
}

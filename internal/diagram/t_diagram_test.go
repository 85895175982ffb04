package diagram

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func sampleLoop() LoopData {
	return LoopData{
		Title:          "sample",
		Strain:         []float64{0.05, 0.12, 0.13, 0.12, 0.0, -0.05, -0.12},
		Stress:         []float64{50, 108, 112, 102, 0, -50, -108},
		EnvelopeStrain: []float64{-0.2, -0.1, 0, 0.1, 0.2},
		EnvelopeStress: []float64{-90, -100, 0, 100, 90},
		FailedAt:       -1,
	}
}

func Test_ascii01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ascii01")

	d := sampleLoop()
	loop := DrawASCIILoop(d, 40, 15)
	if !strings.Contains(loop, "SAMPLE") || !strings.Contains(loop, "●") || !strings.Contains(loop, "│") {
		tst.Errorf("loop diagram is incomplete:\n%s\n", loop)
	}
	if strings.Count(loop, "X") != 1 {
		tst.Errorf("only the legend should show the failure marker\n")
	}
	d.FailedAt = 4
	if loop = DrawASCIILoop(d, 40, 15); strings.Count(loop, "X") != 2 {
		tst.Errorf("failure marker missing\n")
	}
	if DrawASCIILoop(LoopData{}, 40, 15) != "  (no data)\n" {
		tst.Errorf("empty data should be reported\n")
	}

	hist := DrawForceHistory(d, 30, 8)
	if !strings.Contains(hist, "force history") {
		tst.Errorf("history caption missing:\n%s\n", hist)
	}

	box := DrawSummaryBox("RESULT", []string{"Energy: 1.0", "Failed: no"})
	if !strings.Contains(box, "║  Energy: 1.0") || strings.Count(box, "\n") != 6 {
		tst.Errorf("wrong summary box:\n%s\n", box)
	}
}

func Test_image01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("image01")

	dir := tst.TempDir()
	for _, name := range []string{"loop.png", "loop.svg", filepath.Join("sub", "loop.pdf")} {
		path := filepath.Join(dir, name)
		if err := ExportHysteresis(sampleLoop(), path); err != nil {
			tst.Errorf("%s: export failed: %v\n", name, err)
			continue
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			tst.Errorf("%s: file not written\n", name)
		}
	}
	if err := ExportHysteresis(sampleLoop(), filepath.Join(dir, "noext")); err != nil {
		tst.Errorf("export without extension failed: %v\n", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "noext.png")); err != nil {
		tst.Errorf("png fallback not written\n")
	}
}

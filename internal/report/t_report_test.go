package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/xuri/excelize/v2"

	"github.com/alexiusacademia/gohyst/internal/imk"
	"github.com/alexiusacademia/gohyst/internal/protocol"
)

func sampleReport(tst *testing.T) Report {
	p := imk.ExampleParams()
	m, err := imk.New(5, p)
	if err != nil {
		tst.Fatalf("New failed: %v\n", err)
	}
	res, err := protocol.Run(context.Background(), m, []float64{0.005, 0.02, 0.0, -0.02}, protocol.Options{})
	if err != nil {
		tst.Fatalf("Run failed: %v\n", err)
	}
	return Report{Material: "steel", Tag: 5, Protocol: "test", Params: p, Result: res}
}

func Test_xlsx01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("xlsx01")

	r := sampleReport(tst)
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, r); err != nil {
		tst.Errorf("WriteXLSX failed: %v\n", err)
		return
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		tst.Errorf("cannot read workbook: %v\n", err)
		return
	}
	defer f.Close()

	rows, err := f.GetRows(sheetHistory)
	if err != nil || len(rows) != 5 {
		tst.Errorf("history sheet should have a header and 4 rows: %d (%v)\n", len(rows), err)
		return
	}
	if rows[0][2] != "force" || rows[1][1] != "0.005" {
		tst.Errorf("wrong history content: %v\n", rows[:2])
	}
	params, err := f.GetRows(sheetParams)
	if err != nil || len(params) != imk.NumParams || params[0][0] != "ke" || params[0][1] != "25000" {
		tst.Errorf("wrong parameter sheet: %v (%v)\n", params, err)
	}
}

func Test_pdf01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("pdf01")

	r := sampleReport(tst)
	var buf bytes.Buffer
	if err := WritePDF(&buf, r); err != nil {
		tst.Errorf("WritePDF failed: %v\n", err)
		return
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		tst.Errorf("output is not a PDF\n")
	}

	sum := Summary(r)
	if sum[2][1] != "4" || sum[6][1] != "no" {
		tst.Errorf("wrong summary: %v\n", sum)
	}
}

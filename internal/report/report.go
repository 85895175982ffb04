// Package report writes run results as spreadsheets and PDF summaries
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/alexiusacademia/gohyst/internal/imk"
	"github.com/alexiusacademia/gohyst/internal/protocol"
)

// Report is the content of one run report
type Report struct {
	Title    string
	Material string
	Tag      int
	Protocol string
	Params   imk.Params
	Result   *protocol.Result
}

const (
	sheetHistory = "History"
	sheetParams  = "Parameters"
)

// WriteXLSX writes the response history and the parameters as a workbook
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetHistory); err != nil {
		return err
	}
	header := []interface{}{"step", "deformation", "force", "tangent", "energy", "branch", "failed"}
	if err := f.SetSheetRow(sheetHistory, "A1", &header); err != nil {
		return err
	}
	for i, rec := range r.Result.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{rec.Step, rec.Strain, rec.Stress, rec.Tangent, rec.Energy, rec.Branch.String(), rec.Failed}
		if err := f.SetSheetRow(sheetHistory, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(sheetParams); err != nil {
		return err
	}
	names, values := imk.ParamNames(), r.Params.Slice()
	for i := range names {
		row := []interface{}{names[i], values[i]}
		if err := f.SetSheetRow(sheetParams, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// Summary returns the key results as label/value pairs
func Summary(r Report) [][2]string {
	res := r.Result
	failed := "no"
	if res.Failed {
		failed = fmt.Sprintf("yes, at step %d", res.FailedAt)
	}
	return [][2]string{
		{"Material", fmt.Sprintf("%s (tag %d)", r.Material, r.Tag)},
		{"Protocol", r.Protocol},
		{"Steps", fmt.Sprintf("%d", len(res.Records))},
		{"Maximum force", fmt.Sprintf("%.4g", res.MaxForce)},
		{"Minimum force", fmt.Sprintf("%.4g", res.MinForce)},
		{"Dissipated energy", fmt.Sprintf("%.4g", res.Energy)},
		{"Failed", failed},
	}
}

// WritePDF writes a one-page summary with the parameters and key results
func WritePDF(w io.Writer, r Report) error {
	title := r.Title
	if title == "" {
		title = "Hysteresis Analysis Report"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Results")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, kv := range Summary(r) {
		pdf.CellFormat(60, 6, kv[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(80, 6, kv[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Parameters")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	names, values := imk.ParamNames(), r.Params.Slice()
	for i := range names {
		pdf.CellFormat(60, 6, names[i], "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%g", values[i]), "1", 1, "R", false, 0, "")
	}
	return pdf.Output(w)
}

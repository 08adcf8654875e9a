package report

import (
	"fmt"
	"io"
	"time"

	"Sixfoot/internal/calc/clearance"

	"github.com/phpdave11/gofpdf"
)

const DefaultTitle = "Minimum 6ft Clearance Report"

type Meta struct {
	Project string `json:"project"`
	Author  string `json:"author"`
	Title   string `json:"title"`
	Notes   string `json:"notes"`
}

// Render writes a one-page A4 report for a completed calculation.
func Render(w io.Writer, meta Meta, in clearance.Input, res clearance.Result, date time.Time) error {
	if meta.Title == "" {
		meta.Title = DefaultTitle
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; free text arrives as UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(meta.Title, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(meta.Title))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr("Project: "+meta.Project))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr("Author: "+meta.Author))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", date.Format("2006-01-02")))
	pdf.Ln(6)
	if in.Location != "" {
		pdf.Cell(0, 6, tr("Location: "+in.Location))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Line type: %s", in.Category.Label()))
	pdf.Ln(10)

	section(pdf, "Measurements")
	rows := [][2]string{
		{"Outer Road versine", mm(in.OuterVersine)},
		{"Outer Road cant", mm(in.OuterCant)},
		{"Inner Road versine", mm(in.InnerVersine)},
		{"Inner Road cant", mm(in.InnerCant)},
	}
	table(pdf, rows)
	pdf.Ln(4)

	section(pdf, "Derivation")
	table(pdf, [][2]string{
		{"Outer Road radius", fmt.Sprintf("%d", res.OuterRadius)},
		{"Inner Road radius", fmt.Sprintf("%d", res.InnerRadius)},
		{"Base clearance", fmt.Sprintf("%d mm", res.BaseClearanceMM)},
		{"Centre throw", fmt.Sprintf("%d mm", res.CentreThrowMM)},
		{"End throw", fmt.Sprintf("%d mm", res.EndThrowMM)},
		{"Cant effect", fmt.Sprintf("%+d mm", res.CantEffectMM)},
	})
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Minimum 6ft Clearance: %d mm", res.FinalClearanceMM))
	pdf.Ln(12)

	if meta.Notes != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(meta.Notes), "", "L", false)
	}

	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
}

func table(pdf *gofpdf.Fpdf, rows [][2]string) {
	for _, row := range rows {
		pdf.CellFormat(70, 7, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, row[1], "1", 1, "R", false, 0, "")
	}
}

func mm(v float64) string {
	return fmt.Sprintf("%g mm", v)
}

package pdf

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"

	"teamtasks/internal/models"
)

// Generator renders documents; an interface so services can be tested
// without gofpdf.
type Generator interface {
	ProjectReport(data ProjectReportData) ([]byte, error)
}

type ProjectReportData struct {
	Project     models.Project
	Tasks       []models.Task
	GeneratedAt time.Time
	GeneratedBy string
}

// ReportGenerator draws with a UTF-8 TTF font when FontPath exists and with
// the built-in Helvetica otherwise. It is safe for concurrent use.
type ReportGenerator struct {
	FontPath string
}

func NewReportGenerator(fontPath string) *ReportGenerator {
	return &ReportGenerator{FontPath: fontPath}
}

// render holds the state of one document.
type render struct {
	doc  *gofpdf.Fpdf
	font string
	tr   func(string) string
}

func (g *ReportGenerator) newRender() *render {
	doc := gofpdf.New("P", "mm", "A4", "")
	if g.FontPath != "" {
		if _, err := os.Stat(g.FontPath); err == nil {
			doc.AddUTF8Font(utf8Font, "", g.FontPath)
			doc.AddUTF8Font(utf8Font, "B", g.FontPath)
			return &render{doc: doc, font: utf8Font, tr: func(s string) string { return s }}
		}
	}
	// core fonts only cover cp1252
	return &render{doc: doc, font: "Helvetica", tr: doc.UnicodeTranslatorFromDescriptor("")}
}

const utf8Font = "DejaVu"

func (g *ReportGenerator) ProjectReport(data ProjectReportData) ([]byte, error) {
	p := data.Project
	r := g.newRender()
	doc := r.doc
	doc.SetTitle(fmt.Sprintf("Project report: %s", p.Name), true)
	doc.SetAuthor("teamtasks", false)
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)

	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont(r.font, "", 9)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	doc.SetFont(r.font, "B", 18)
	doc.CellFormat(0, 10, r.tr(p.Name), "", 1, "C", false, 0, "")
	doc.SetFont(r.font, "", 10)
	doc.CellFormat(0, 6, r.tr(fmt.Sprintf("Generated %s by %s",
		data.GeneratedAt.Format("02.01.2006 15:04"), data.GeneratedBy)), "", 1, "C", false, 0, "")
	r.hr()

	r.sectionTitle("Summary")
	r.kvLine("Status", string(p.Status))
	r.kvLine("Period", period(p.StartDate, p.EndDate))
	r.kvLine("Completion", fmt.Sprintf("%d%% (%d of %d tasks)", p.CompletionRate, p.CompletedTasks, p.TotalTasks))
	if p.Description != "" {
		doc.Ln(1)
		doc.MultiCell(0, 6, r.tr(p.Description), "", "L", false)
	}
	doc.Ln(2)
	r.hr()

	r.sectionTitle("Tasks")
	widths := []float64{74, 26, 24, 23, 23}
	header := []string{"Title", "Status", "Priority", "Start", "End"}
	doc.SetFont(r.font, "B", 10)
	doc.SetFillColor(230, 230, 230)
	for i, h := range header {
		doc.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont(r.font, "", 10)
	for _, t := range data.Tasks {
		if t.IsDeleted {
			continue
		}
		row := []string{
			truncate(r.tr(t.Title), 40),
			string(t.Status),
			string(t.Priority),
			t.StartDate.Format("02.01.2006"),
			t.EndDate.Format("02.01.2006"),
		}
		for i, cell := range row {
			doc.CellFormat(widths[i], 6, cell, "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render project report: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *render) sectionTitle(s string) {
	r.doc.SetFont(r.font, "B", 12)
	r.doc.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	r.doc.SetFont(r.font, "", 11)
}

func (r *render) kvLine(key, val string) {
	r.doc.SetFont(r.font, "B", 11)
	r.doc.CellFormat(35, 6, key+":", "", 0, "L", false, 0, "")
	r.doc.SetFont(r.font, "", 11)
	r.doc.CellFormat(0, 6, r.tr(val), "", 1, "L", false, 0, "")
}

func (r *render) hr() {
	y := r.doc.GetY() + 1.5
	r.doc.SetLineWidth(0.2)
	r.doc.Line(20, y, 190, y)
	r.doc.SetY(y + 2)
}

func period(start, end *time.Time) string {
	format := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("02.01.2006")
	}
	return format(start) + " - " + format(end)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "..."
}

package pdf

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"teamtasks/internal/models"
)

func TestProjectReport_BuiltinFont(t *testing.T) {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	g := NewReportGenerator("does/not/exist.ttf")
	out, err := g.ProjectReport(ProjectReportData{
		Project: models.Project{Name: "Launch", Status: models.ProjectInProgress, StartDate: &start,
			CompletionRate: 50, TotalTasks: 2, CompletedTasks: 1},
		Tasks: []models.Task{
			{Title: "Write copy", Status: models.StatusCompleted, Priority: models.PriorityNormal, StartDate: start, EndDate: start},
			{Title: "A very long task title that does not fit into the table column", Status: models.StatusInProgress, StartDate: start, EndDate: start},
		},
		GeneratedAt: start,
		GeneratedBy: "Ann",
	})
	if err != nil {
		t.Fatalf("ProjectReport: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Errorf("output does not look like a PDF: %q", out[:min(len(out), 8)])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd..." {
		t.Errorf("truncate long = %q", got)
	}
}

func TestProjectReport_Concurrent(t *testing.T) {
	g := NewReportGenerator("")
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := g.ProjectReport(ProjectReportData{
				Project:     models.Project{Name: "Café Über", Description: "Déjà vu", StartDate: &start},
				Tasks:       []models.Task{{Title: "Naïve task", StartDate: start, EndDate: start}},
				GeneratedAt: start,
				GeneratedBy: "Zoë",
			})
			if err == nil && !bytes.HasPrefix(out, []byte("%PDF-")) {
				err = errBadOutput
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("ProjectReport: %v", err)
		}
	}
}

var errBadOutput = errors.New("output is not a PDF")

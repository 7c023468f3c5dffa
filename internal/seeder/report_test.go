package seeder

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportFileName(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 10, 18, 13, 50, 46, 120, time.UTC)
	a := uuid.MustParse("b24c2ed9-0000-4000-8000-000000000001")
	b := uuid.MustParse("6a12dddc-0000-4000-8000-000000000002")

	assert.Equal(t, "seeding-report-2026-10-18T13-50-46-b24c2ed9.json", ReportFileName(ts, a))
	assert.NotEqual(t, ReportFileName(ts, a), ReportFileName(ts, b), "Runs in the same second get distinct files")
}

func TestReportWriteRefusesExistingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := &Report{RunID: uuid.New(), Timestamp: time.Now().UTC(), Environment: "test"}
	r.Summarize()

	path, err := r.Write(dir)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	r.Environment = "production"
	_, err = r.Write(dir)
	require.Error(t, err, "A written report must never be replaced")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, after)

	files, err := filepath.Glob(filepath.Join(dir, "*"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestReportPrintUsesColorOutput(t *testing.T) {
	var buf bytes.Buffer
	orig := color.Output
	color.Output = &buf
	t.Cleanup(func() { color.Output = orig })

	r := &Report{
		Provider: "memory",
		Modules: []ModuleReport{
			{Name: "brands", Status: StatusCompleted, Stats: &Stats{Total: 2, Created: 2}},
			{Name: "models", Status: StatusSkipped, Error: "dependency brands did not complete"},
		},
		Warnings: []string{"car_models: collection is empty"},
	}
	r.Summarize()
	r.Print()

	out := buf.String()
	assert.Contains(t, out, "Modules: 1 completed, 0 failed, 1 skipped of 2")
	assert.Contains(t, out, "Records: 2 total, 2 created, 0 updated, 0 failed")
	assert.Contains(t, out, "car_models: collection is empty")
}

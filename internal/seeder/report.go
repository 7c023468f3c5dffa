package seeder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
	"github.com/Lumos-Labs-HQ/autoseed/internal/utils"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

type ModuleStatus string

const (
	StatusPending   ModuleStatus = "pending"
	StatusCompleted ModuleStatus = "completed"
	StatusFailed    ModuleStatus = "failed"
	StatusSkipped   ModuleStatus = "skipped"
)

type ModuleReport struct {
	Name      string       `json:"name"`
	Priority  Priority     `json:"priority"`
	Status    ModuleStatus `json:"status"`
	Stats     *Stats       `json:"stats,omitempty"`
	Error     string       `json:"error,omitempty"`
	ErrorKind types.Kind   `json:"errorKind,omitempty"`
	Duration  string       `json:"duration,omitempty"`
}

type Summary struct {
	TotalModules     int     `json:"totalModules"`
	CompletedModules int     `json:"completedModules"`
	FailedModules    int     `json:"failedModules"`
	SkippedModules   int     `json:"skippedModules"`
	TotalRecords     int     `json:"totalRecords"`
	Created          int     `json:"created"`
	Updated          int     `json:"updated"`
	Failed           int     `json:"failed"`
	SuccessRate      float64 `json:"successRate"`
}

// Report is the run-level outcome written to the logs directory.
type Report struct {
	RunID       uuid.UUID      `json:"runId"`
	Timestamp   time.Time      `json:"timestamp"`
	Environment string         `json:"environment"`
	Provider    string         `json:"provider"`
	Duration    string         `json:"duration"`
	Order       []string       `json:"order"`
	Modules     []ModuleReport `json:"modules"`
	Errors      []string       `json:"errors"`
	Warnings    []string       `json:"warnings"`
	Summary     Summary        `json:"summary"`
}

// module returns the entry for name, or nil when name is not part of the run.
func (r *Report) module(name string) *ModuleReport {
	for i := range r.Modules {
		if r.Modules[i].Name == name {
			return &r.Modules[i]
		}
	}
	return nil
}

// Summarize recomputes the summary from the module entries.
func (r *Report) Summarize() {
	s := Summary{TotalModules: len(r.Modules)}
	for _, m := range r.Modules {
		switch m.Status {
		case StatusCompleted:
			s.CompletedModules++
		case StatusFailed:
			s.FailedModules++
		case StatusSkipped:
			s.SkippedModules++
		}
		if m.Stats != nil {
			s.TotalRecords += m.Stats.Total
			s.Created += m.Stats.Created
			s.Updated += m.Stats.Updated
			s.Failed += m.Stats.Failed
		}
	}
	if s.TotalModules > 0 {
		s.SuccessRate = float64(s.CompletedModules) / float64(s.TotalModules) * 100
	}
	r.Summary = s
}

// ReportFileName names the report after the run start time and the first
// eight characters of the run ID, so runs started in the same second never
// share a file.
func ReportFileName(ts time.Time, runID uuid.UUID) string {
	return fmt.Sprintf("seeding-report-%s-%s.json", ts.UTC().Format("2006-01-02T15-04-05"), runID.String()[:8])
}

// Write stores the report as indented JSON under dir and returns its path.
func (r *Report) Write(dir string) (string, error) {
	if dir == "" {
		dir = "logs"
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	path := filepath.Join(dir, ReportFileName(r.Timestamp, r.RunID))
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("report %s already exists", path)
	}
	if err := utils.AtomicWrite(path, data); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func (r *Report) Print() {
	color.Cyan("\n📊 Seeding summary (%s, %s)", r.Provider, r.Duration)
	for _, m := range r.Modules {
		switch m.Status {
		case StatusCompleted:
			color.Green("  ✅ %-16s %s", m.Name, moduleLine(m))
		case StatusFailed:
			color.Red("  ❌ %-16s %s", m.Name, m.Error)
		case StatusSkipped:
			color.Yellow("  ⏭️  %-16s %s", m.Name, m.Error)
		default:
			color.White("  ⏸️  %-16s %s", m.Name, m.Status)
		}
	}

	s := r.Summary
	fmt.Fprintf(color.Output, "\nModules: %d completed, %d failed, %d skipped of %d (%.1f%%)\n",
		s.CompletedModules, s.FailedModules, s.SkippedModules, s.TotalModules, s.SuccessRate)
	fmt.Fprintf(color.Output, "Records: %d total, %d created, %d updated, %d failed\n",
		s.TotalRecords, s.Created, s.Updated, s.Failed)

	for _, w := range r.Warnings {
		color.Yellow("  ⚠️  %s", w)
	}
}

func moduleLine(m ModuleReport) string {
	if m.Stats == nil {
		return ""
	}
	return fmt.Sprintf("%d created, %d updated, %d failed", m.Stats.Created, m.Stats.Updated, m.Stats.Failed)
}

package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Lumos-Labs-HQ/autoseed/internal/database"
	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

type State string

const (
	StateUninitialized  State = "uninitialized"
	StateInitializing   State = "initializing"
	StateHealthChecking State = "health-checking"
	StateSeeding        State = "seeding"
	StateValidating     State = "validating"
	StateReporting      State = "reporting"
	StateCleaningUp     State = "cleaning-up"
	StateDone           State = "done"
)

// Orchestrator runs a set of domains against one store, in dependency order,
// and owns the store until the run is over.
type Orchestrator struct {
	store   database.Store
	fetcher AssetFetcher
	domains []Domain
	opts    Options
	metrics MetricsSink
	state   State
	now     func() time.Time
}

// NewOrchestrator takes ownership of store and fetcher: both are closed when
// Run returns. metrics may be nil.
func NewOrchestrator(store database.Store, fetcher AssetFetcher, domains []Domain, opts Options, metrics MetricsSink) *Orchestrator {
	return &Orchestrator{
		store:   store,
		fetcher: fetcher,
		domains: append([]Domain(nil), domains...),
		opts:    opts,
		metrics: metrics,
		state:   StateUninitialized,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.state = s
	color.Magenta("🔄 %s", s)
}

func (o *Orchestrator) domain(name string) (Domain, bool) {
	for _, d := range o.domains {
		if d.Name == name {
			return d, true
		}
	}
	return Domain{}, false
}

// Plan builds the dependency graph of domains and returns it with the names
// to seed, in dependency order. With no selection every domain is returned.
// A selection is kept as is: parents are not added.
func Plan(domains []Domain, selected []string) (*DependencyGraph, []string, error) {
	graph := NewDependencyGraph()
	for i := range domains {
		if err := graph.AddDomain(&domains[i]); err != nil {
			return nil, nil, err
		}
	}
	order, err := graph.BuildInsertionOrder()
	if err != nil {
		return nil, nil, err
	}
	if len(selected) == 0 {
		return graph, order, nil
	}

	want := make(map[string]bool, len(selected))
	for _, name := range selected {
		if _, ok := graph.domains[name]; !ok {
			return nil, nil, &types.ValidationError{Domain: name, Reason: "unknown domain"}
		}
		want[name] = true
	}
	filtered := make([]string, 0, len(want))
	for _, name := range order {
		if want[name] {
			filtered = append(filtered, name)
		}
	}
	return graph, filtered, nil
}

// Run seeds the selected domains and always returns a report. The error is
// non-nil when the store is unhealthy, the domain graph is invalid, or a
// domain failed in strict mode.
func (o *Orchestrator) Run(ctx context.Context, selected []string) (*Report, error) {
	start := o.now()
	report := &Report{
		RunID:       uuid.New(),
		Timestamp:   start,
		Environment: o.opts.Environment,
		Provider:    o.store.Provider(),
		Order:       []string{},
		Modules:     []ModuleReport{},
		Errors:      []string{},
		Warnings:    []string{},
	}

	s := New(o.store, o.fetcher, o.opts)
	s.now = o.now
	defer func() {
		o.setState(StateCleaningUp)
		if err := s.Close(); err != nil {
			color.Yellow("⚠️  Cleanup: %v", err)
		}
		o.setState(StateDone)
	}()

	o.setState(StateInitializing)
	graph, order, err := Plan(o.domains, selected)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		o.finish(ctx, report, start, err)
		return report, err
	}
	report.Order = order
	for _, name := range order {
		d, _ := o.domain(name)
		report.Modules = append(report.Modules, ModuleReport{Name: name, Priority: d.Priority, Status: StatusPending})
	}

	o.setState(StateHealthChecking)
	health := o.store.HealthCheck(ctx)
	if !health.OK {
		err := &types.ConnectionError{Provider: o.store.Provider(), Err: errors.New(health.Message)}
		report.Errors = append(report.Errors, err.Error())
		o.skipRemaining(report, "health check failed")
		o.finish(ctx, report, start, err)
		return report, err
	}
	color.Green("💚 %s", health.Message)

	o.setState(StateSeeding)
	runErr := o.seedAll(ctx, s, graph, report)

	o.setState(StateValidating)
	o.validate(ctx, report)

	o.finish(ctx, report, start, runErr)
	return report, runErr
}

func (o *Orchestrator) seedAll(ctx context.Context, s *Seeder, graph *DependencyGraph, report *Report) error {
	for i, name := range report.Order {
		m := &report.Modules[i]
		if m.Status == StatusSkipped {
			color.Yellow("⏭️  Skipping %s: %s", name, m.Error)
			continue
		}

		if err := ctx.Err(); err != nil {
			o.skipRemaining(report, "run interrupted")
			return fmt.Errorf("seeding interrupted before %s: %w", name, err)
		}

		d, _ := o.domain(name)
		color.Cyan("\n🌱 [%d/%d] %s (%s)", i+1, len(report.Order), name, d.Priority)
		t0 := o.now()
		stats, err := s.SeedDomain(ctx, d)
		m.Stats = stats
		m.Duration = o.now().Sub(t0).Round(time.Millisecond).String()

		if err == nil {
			m.Status = StatusCompleted
			continue
		}

		m.Status = StatusFailed
		m.Error = err.Error()
		m.ErrorKind = types.KindOf(err)
		report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", name, err))
		color.Red("❌ %s failed: %v", name, err)

		if o.opts.Strict {
			o.skipRemaining(report, "run aborted in strict mode")
			return fmt.Errorf("domain %s failed: %w", name, err)
		}
		skipDependents(report, graph, name)
	}
	return nil
}

// skipDependents marks every pending domain that depends on failed, directly
// or through another domain, as skipped.
func skipDependents(report *Report, graph *DependencyGraph, failed string) {
	for _, name := range graph.Dependents(failed) {
		m := report.module(name)
		if m == nil || m.Status != StatusPending {
			continue
		}
		m.Status = StatusSkipped
		m.Error = fmt.Sprintf("dependency %s did not complete", failed)
	}
}

func (o *Orchestrator) skipRemaining(report *Report, reason string) {
	for i := range report.Modules {
		if report.Modules[i].Status == StatusPending {
			report.Modules[i].Status = StatusSkipped
			report.Modules[i].Error = reason
		}
	}
}

// validate counts every collection that was written to and collects the
// per-domain validation warnings. Nothing here fails the run.
func (o *Orchestrator) validate(ctx context.Context, report *Report) {
	for _, m := range report.Modules {
		if m.Status == StatusSkipped || m.Status == StatusPending {
			continue
		}
		d, _ := o.domain(m.Name)

		n, err := o.store.Collection(d.Collection).Count(ctx)
		switch {
		case err != nil:
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: count failed: %v", d.Collection, err))
		case n == 0:
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: collection is empty", d.Collection))
		}

		if m.Stats != nil && m.Stats.Validation != nil {
			for _, w := range m.Stats.Validation.Warnings {
				report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %s", d.Collection, w))
			}
		}
	}
}

func (o *Orchestrator) finish(ctx context.Context, report *Report, start time.Time, runErr error) {
	o.setState(StateReporting)
	duration := o.now().Sub(start)
	report.Duration = duration.Round(time.Millisecond).String()
	report.Summarize()

	if path, err := report.Write(o.opts.LogsDir); err != nil {
		color.Yellow("⚠️  %v", err)
	} else {
		color.Green("📄 Report written to %s", path)
	}
	report.Print()

	if o.metrics == nil {
		return
	}
	for _, m := range report.Modules {
		var created, updated, failed int
		if m.Stats != nil {
			created, updated, failed = m.Stats.Created, m.Stats.Updated, m.Stats.Failed
		}
		o.metrics.ObserveDomain(m.Name, string(m.Status), created, updated, failed)
	}
	o.metrics.ObserveRun(duration, runStatus(report, runErr))
	if err := o.metrics.Push(ctx); err != nil {
		color.Yellow("⚠️  Failed to push metrics: %v", err)
	}
}

func runStatus(report *Report, runErr error) string {
	switch {
	case runErr != nil:
		return "failed"
	case report.Summary.FailedModules > 0 || report.Summary.SkippedModules > 0:
		return "partial"
	default:
		return "completed"
	}
}

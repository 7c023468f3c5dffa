package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Options configure one seeding run. They are fixed at construction.
type Options struct {
	BatchSize     int
	Strict        bool // abort the run on the first domain failure
	IncludeAssets bool
	Reset         bool // drop each collection before seeding it
	Progress      bool
	Environment   string
	LogsDir       string
}

const DefaultBatchSize = 100

func (o Options) batchSize() int {
	if o.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return o.BatchSize
}

// ParentRef points a child record at the stable ID of its parent document.
type ParentRef struct {
	Domain     string
	Collection string
	ID         string
}

// Record is one entity to seed, identified by its natural key.
type Record struct {
	ID      string
	Key     types.Key
	Fields  map[string]interface{}
	Parents []ParentRef
	Assets  map[string]string // document field -> remote URL
}

func (r Record) Identifier() string {
	return r.Key.String()
}

// Label is a human name for the record, used when naming re-hosted assets.
func (r Record) Label() string {
	if len(r.Key) == 0 {
		return r.ID
	}
	return fmt.Sprint(r.Key[0].Value)
}

type Generator func() ([]Record, error)

// Domain describes one seeded collection and what it depends on.
type Domain struct {
	Name          string
	Collection    string
	Priority      Priority
	DependsOn     []string
	GroupBy       string   // field used for the per-domain breakdown
	Required      []string // fields checked by post-run validation
	AssetCategory string
	Generate      Generator
}

// AssetFetcher re-hosts remote assets. It reports false and returns the
// input URL when the asset could not be re-hosted.
type AssetFetcher interface {
	Rehost(ctx context.Context, url, name, category string) (string, bool)
	Close() error
}

// MetricsSink receives per-domain and per-run outcomes.
type MetricsSink interface {
	ObserveDomain(domain, status string, created, updated, failed int)
	ObserveRun(duration time.Duration, status string)
	Push(ctx context.Context) error
}

type RecordError struct {
	Identifier string     `json:"identifier"`
	Kind       types.Kind `json:"kind"`
	Message    string     `json:"message"`
}

type Validation struct {
	Count    int64            `json:"count"`
	Missing  map[string]int64 `json:"missing,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

// Stats accumulates the outcome of one domain run. Every run starts from zero.
type Stats struct {
	Total          int            `json:"total"`
	Created        int            `json:"created"`
	Updated        int            `json:"updated"`
	Failed         int            `json:"failed"`
	AssetsRehosted int            `json:"assetsRehosted"`
	AssetsDegraded int            `json:"assetsDegraded"`
	Groups         map[string]int `json:"groups,omitempty"`
	Errors         []RecordError  `json:"errors,omitempty"`
	Validation     *Validation    `json:"validation,omitempty"`
}

func NewStats() *Stats {
	return &Stats{Groups: make(map[string]int)}
}

func (s *Stats) recordFailure(identifier string, err error) {
	s.Failed++
	s.Errors = append(s.Errors, RecordError{
		Identifier: identifier,
		Kind:       types.KindOf(err),
		Message:    err.Error(),
	})
}

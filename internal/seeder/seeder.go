package seeder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/autoseed/internal/database"
	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

type Seeder struct {
	store   database.Store
	fetcher AssetFetcher
	opts    Options
	now     func() time.Time
}

// New wires a seeder to an already connected store. fetcher may be nil.
func New(store database.Store, fetcher AssetFetcher, opts Options) *Seeder {
	return &Seeder{
		store:   store,
		fetcher: fetcher,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Close releases the asset fetcher and the store. Both are safe to close twice.
func (s *Seeder) Close() error {
	var errs []error
	if s.fetcher != nil {
		if err := s.fetcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close asset fetcher: %w", err))
		}
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close %s store: %w", s.store.Provider(), err))
	}
	return errors.Join(errs...)
}

// SeedDomain upserts every generated record of domain, one batch at a time.
// Record failures are counted and skipped. The returned error is non-nil only
// when the whole domain had to be abandoned.
func (s *Seeder) SeedDomain(ctx context.Context, domain Domain) (*Stats, error) {
	stats := NewStats()
	color.Cyan("  📝 Seeding %s → %s", domain.Name, domain.Collection)

	records, err := domain.Generate()
	if err != nil {
		return stats, &types.ValidationError{Domain: domain.Name, Reason: "generator failed", Err: err}
	}
	stats.Total = len(records)

	coll := s.store.Collection(domain.Collection)

	if s.opts.Reset {
		color.Yellow("  🗑️  Dropping %s", domain.Collection)
		if err := coll.Drop(ctx); err != nil {
			return stats, fmt.Errorf("failed to reset %s: %w", domain.Collection, err)
		}
	}

	if len(records) > 0 {
		if err := coll.EnsureKeyIndex(ctx, records[0].Key.Names()); err != nil {
			color.Yellow("  ⚠️  Could not ensure key index on %s: %v", domain.Collection, err)
		}
	}

	batches := chunk(records, s.opts.batchSize())
	bar := s.progressBar(domain.Name, len(records))

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			_ = bar.Exit()
			return stats, fmt.Errorf("seeding %s interrupted at batch %d/%d: %w", domain.Name, i+1, len(batches), err)
		}
		if !s.opts.Progress {
			color.Cyan("    📦 Batch %d/%d (%d records)", i+1, len(batches), len(batch))
		}
		for _, rec := range batch {
			s.seedRecord(ctx, domain, coll, rec, stats)
			_ = bar.Add(1)
		}
	}
	_ = bar.Finish()

	s.printStats(domain, stats)
	stats.Validation = s.validate(ctx, domain, coll)
	return stats, nil
}

func (s *Seeder) seedRecord(ctx context.Context, domain Domain, coll types.Collection, rec Record, stats *Stats) {
	fields := make(map[string]interface{}, len(rec.Fields)+len(rec.Assets))
	for k, v := range rec.Fields {
		fields[k] = v
	}
	for _, field := range sortedKeys(rec.Assets) {
		url := rec.Assets[field]
		if s.opts.IncludeAssets && s.fetcher != nil && url != "" {
			rehosted, ok := s.fetcher.Rehost(ctx, url, rec.Label(), domain.AssetCategory)
			if ok {
				stats.AssetsRehosted++
			} else {
				stats.AssetsDegraded++
			}
			url = rehosted
		}
		fields[field] = url
	}

	created, err := s.upsert(ctx, domain, coll, rec, fields)
	if err != nil {
		stats.recordFailure(rec.Identifier(), err)
		color.Yellow("    ⚠️  %s [%s]: %v", domain.Name, rec.Identifier(), err)
		return
	}

	if created {
		stats.Created++
	} else {
		stats.Updated++
	}
	if domain.GroupBy != "" {
		stats.Groups[groupValue(rec, fields, domain.GroupBy)]++
	}
}

// upsert writes rec by natural key and reports whether a new document was created.
func (s *Seeder) upsert(ctx context.Context, domain Domain, coll types.Collection, rec Record, fields map[string]interface{}) (bool, error) {
	for _, parent := range rec.Parents {
		_, found, err := s.store.Collection(parent.Collection).FindByID(ctx, parent.ID)
		if err != nil {
			return false, fmt.Errorf("lookup %s parent: %w", parent.Domain, err)
		}
		if !found {
			return false, &types.MissingParentError{Domain: domain.Name, Parent: parent.Domain, ParentID: parent.ID}
		}
	}

	now := s.now()
	doc := make(types.Document, len(rec.Key)+len(fields)+3)
	for k, v := range fields {
		doc[k] = v
	}
	for _, f := range rec.Key {
		doc[f.Name] = f.Value
	}
	doc[types.IDField] = rec.ID
	doc[types.UpdatedAtField] = now

	existing, found, err := coll.FindOne(ctx, rec.Key)
	if err != nil {
		return false, err
	}

	if found {
		if createdAt, ok := existing[types.CreatedAtField]; ok && createdAt != nil {
			doc[types.CreatedAtField] = createdAt
		} else {
			doc[types.CreatedAtField] = now
		}
		if err := coll.Replace(ctx, rec.Key, doc); err != nil {
			return false, conflict(coll, rec, err)
		}
		return false, nil
	}

	doc[types.CreatedAtField] = now
	if err := coll.Insert(ctx, rec.Key, doc); err != nil {
		return false, conflict(coll, rec, err)
	}
	return true, nil
}

func conflict(coll types.Collection, rec Record, err error) error {
	if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrDuplicateKey) {
		return &types.UpsertConflictError{Collection: coll.Name(), Key: rec.Identifier(), Err: err}
	}
	return err
}

// validate only logs: a failed check never fails the domain.
func (s *Seeder) validate(ctx context.Context, domain Domain, coll types.Collection) *Validation {
	v := &Validation{Missing: make(map[string]int64)}

	count, err := coll.Count(ctx)
	if err != nil {
		v.Warnings = append(v.Warnings, fmt.Sprintf("count failed: %v", err))
	} else {
		v.Count = count
	}

	for _, field := range domain.Required {
		n, err := coll.CountMissing(ctx, field)
		if err != nil {
			v.Warnings = append(v.Warnings, fmt.Sprintf("missing-field check on %s failed: %v", field, err))
			continue
		}
		if n > 0 {
			v.Missing[field] = n
			v.Warnings = append(v.Warnings, fmt.Sprintf("%d documents missing %s", n, field))
		}
	}

	if len(v.Warnings) == 0 {
		color.Green("  🔍 %s: %d documents, all required fields present", domain.Collection, v.Count)
	}
	for _, w := range v.Warnings {
		color.Yellow("  ⚠️  %s validation: %s", domain.Collection, w)
	}
	return v
}

func (s *Seeder) printStats(domain Domain, stats *Stats) {
	color.Green("  ✅ %s: %d total, %d created, %d updated, %d failed",
		domain.Name, stats.Total, stats.Created, stats.Updated, stats.Failed)

	if stats.AssetsRehosted+stats.AssetsDegraded > 0 {
		color.Cyan("     🖼️  assets: %d re-hosted, %d kept original URL", stats.AssetsRehosted, stats.AssetsDegraded)
	}

	if len(stats.Groups) > 0 {
		parts := make([]string, 0, len(stats.Groups))
		for _, g := range sortedKeys(stats.Groups) {
			parts = append(parts, fmt.Sprintf("%s=%d", g, stats.Groups[g]))
		}
		color.Cyan("     📊 by %s: %s", domain.GroupBy, strings.Join(parts, ", "))
	}
}

func (s *Seeder) progressBar(description string, total int) *progressbar.ProgressBar {
	if !s.opts.Progress || total == 0 {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(color.Output),
		progressbar.OptionSetDescription("    "+description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(color.Output) }),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// chunk splits records into consecutive batches of at most size records.
func chunk(records []Record, size int) [][]Record {
	if size <= 0 {
		size = DefaultBatchSize
	}
	batches := make([][]Record, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}
	return batches
}

func groupValue(rec Record, fields map[string]interface{}, field string) string {
	if v, ok := fields[field]; ok && v != nil && v != "" {
		return fmt.Sprint(v)
	}
	if v, ok := rec.Key.Get(field); ok {
		return fmt.Sprint(v)
	}
	return "unknown"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

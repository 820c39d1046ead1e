// Package loader owns the process-wide catalog: it fetches the warehouse feed
// once, builds the catalog and hands the same snapshot to every caller.
package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raine/kawthar-catalog/internal/catalog"
	"github.com/raine/kawthar-catalog/internal/classify"
	"github.com/raine/kawthar-catalog/internal/source"
	"github.com/raine/kawthar-catalog/internal/warehouse"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Enricher post-processes a freshly built catalog before it is published.
// Errors are logged and the catalog is published as is.
type Enricher interface {
	Enrich(ctx context.Context, c *catalog.Catalog) error
}

type Opts struct {
	Fetcher source.Fetcher
	// Location of the warehouse feed. Defaults to warehouse.DefaultLocation.
	Location string
	// Table classifies categories. Defaults to classify.DefaultTable.
	Table    *classify.Table
	Enricher Enricher
}

// Repository loads the catalog at most once per successful load. Concurrent
// callers share the in-flight load; a failed load is not remembered.
type Repository struct {
	fetcher  source.Fetcher
	location string
	table    classify.Table
	enricher Enricher

	group singleflight.Group

	mu      sync.RWMutex
	current *catalog.Catalog
}

func New(opts Opts) *Repository {
	r := &Repository{
		fetcher:  opts.Fetcher,
		location: warehouse.DefaultLocation,
		table:    classify.DefaultTable,
		enricher: opts.Enricher,
	}
	if opts.Location != "" {
		r.location = opts.Location
	}
	if opts.Table != nil {
		r.table = *opts.Table
	}
	return r
}

// EnsureLoaded returns the catalog, loading it if no load has succeeded yet.
// Cancelling ctx abandons the wait but not the shared load.
func (r *Repository) EnsureLoaded(ctx context.Context) (*catalog.Catalog, error) {
	if c := r.Snapshot(); c != nil {
		return c, nil
	}

	ch := r.group.DoChan("catalog", func() (any, error) {
		return r.load(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*catalog.Catalog), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Snapshot returns the loaded catalog, or nil before the first successful load.
func (r *Repository) Snapshot() *catalog.Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *Repository) load(ctx context.Context) (*catalog.Catalog, error) {
	if c := r.Snapshot(); c != nil {
		return c, nil
	}

	start := time.Now()
	data, err := r.fetcher.Fetch(ctx, r.location)
	if err != nil {
		log.Error().Err(err).Str("location", r.location).Msg("failed to fetch warehouse feed")
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	rows, bad := warehouse.ParseJSONL(data)
	c := catalog.Build(rows, r.table)
	c.SourceFingerprint = source.Fingerprint(data)
	c.Diagnostics.BadLines = bad

	if r.enricher != nil {
		if err := r.enricher.Enrich(ctx, c); err != nil {
			log.Warn().Err(err).Msg("catalog enrichment failed, keeping source names")
		}
	}

	if c.Diagnostics.DuplicateIDs > 0 {
		log.Warn().
			Int("count", c.Diagnostics.DuplicateIDs).
			Strs("ids", c.Diagnostics.Duplicated).
			Msg("duplicate product ids in warehouse feed")
	}
	log.Info().
		Str("loadId", c.LoadID).
		Int("products", len(c.Products)).
		Int("categories", len(c.Categories)).
		Int("brands", len(c.Brands)).
		Int("badLines", bad).
		Int("droppedRows", c.Diagnostics.DroppedRows).
		Dur("took", time.Since(start)).
		Msg("catalog loaded")

	r.mu.Lock()
	r.current = c
	r.mu.Unlock()
	return c, nil
}

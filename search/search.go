// Package search fans the configuration grid out across a bounded worker
// pool. Each worker evaluates one configuration's full repetition loop and
// owns no mutable shared state beyond the read-only Dataset. Configurations
// are dispatched in chunks so memory stays bounded, progress is observable,
// and cancellation between chunks leaves the collected results valid.
package search

import (
	"context"
	"runtime"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/modelsel/gbsearch/dataset"
	"github.com/modelsel/gbsearch/evaluate"
	"github.com/modelsel/gbsearch/grid"
	"github.com/modelsel/gbsearch/pkg/errors"
	"github.com/modelsel/gbsearch/pkg/log"
)

// Options configure the coordinator.
type Options struct {
	Evaluate evaluate.Options `yaml:"evaluate"`

	// Workers is the pool size. Defaults to GOMAXPROCS.
	Workers int `yaml:"workers"`

	// ChunkSize is the number of configurations dispatched per batch.
	ChunkSize int `yaml:"chunk_size"`

	// Logger receives progress and drop reports. Defaults to the package
	// logger.
	Logger log.Logger `yaml:"-"`
}

func (o Options) withDefaults() Options {
	o.Evaluate = o.Evaluate.WithDefaults()
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = 64
	}
	if o.Logger == nil {
		o.Logger = log.GetLoggerWithName("search.coordinator")
	}
	return o
}

// Dropped records one configuration omitted from the results table.
type Dropped struct {
	ConfigID int    `csv:"config_id"`
	Reason   string `csv:"reason"`
}

// Report is the outcome of a search run. Results are sorted by configuration
// ID; completion order never leaks into the output.
type Report struct {
	Results   []evaluate.AggregatedResult
	Dropped   []Dropped
	Evaluated int
}

// Run evaluates every configuration against the dataset. A configuration
// whose repetitions all fail is dropped and logged, never fatal. Cancellation
// via ctx is honored between chunks: the report returned alongside ctx's
// error holds every result collected so far.
func Run(ctx context.Context, ds *dataset.Dataset, configs []grid.Configuration, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	if err := opts.Evaluate.Validate(); err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, errors.Wrap(errors.ErrEmptySearchSpace, "search.Run")
	}
	logger := opts.Logger

	logger.Info("starting grid search",
		"configurations", len(configs),
		"repetitions", opts.Evaluate.Repetitions,
		"workers", opts.Workers,
		"chunk_size", opts.ChunkSize)

	report := &Report{}
	for start := 0; start < len(configs); start += opts.ChunkSize {
		if err := ctx.Err(); err != nil {
			logger.Warn("search cancelled",
				"completed", report.Evaluated,
				"remaining", len(configs)-start)
			finalize(report)
			return report, err
		}

		end := start + opts.ChunkSize
		if end > len(configs) {
			end = len(configs)
		}
		chunk := configs[start:end]

		// One result slot per configuration; workers never share slots, so
		// no locking is needed.
		results := make([]evaluate.AggregatedResult, len(chunk))
		chunkErrs := make([]error, len(chunk))

		p := pool.New().WithMaxGoroutines(opts.Workers)
		for i, cfg := range chunk {
			p.Go(func() {
				results[i], chunkErrs[i] = evaluate.AggregateRepetitions(ds, cfg, opts.Evaluate)
			})
		}
		p.Wait()

		for i, cfg := range chunk {
			report.Evaluated++
			if chunkErrs[i] != nil {
				report.Dropped = append(report.Dropped, Dropped{
					ConfigID: cfg.ID,
					Reason:   chunkErrs[i].Error(),
				})
				logger.Warn("configuration dropped",
					"config_id", cfg.ID,
					"error", chunkErrs[i])
				continue
			}
			report.Results = append(report.Results, results[i])
		}

		logger.Info("chunk complete",
			"evaluated", report.Evaluated,
			"total", len(configs),
			"kept", len(report.Results),
			"dropped", len(report.Dropped))
	}

	finalize(report)
	logger.Info("search finished",
		"evaluated", report.Evaluated,
		"kept", len(report.Results),
		"dropped", len(report.Dropped))
	return report, nil
}

// finalize makes the report deterministic regardless of completion order.
func finalize(r *Report) {
	sort.Slice(r.Results, func(i, j int) bool {
		return r.Results[i].ID < r.Results[j].ID
	})
	sort.Slice(r.Dropped, func(i, j int) bool {
		return r.Dropped[i].ConfigID < r.Dropped[j].ConfigID
	})
}

package worker

import (
	"context"
	"reflect"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/interfaces"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/secmon-lab/rolodex/pkg/utils/logging"
)

// SchemaLoader reads the declared field schemas, typically from a TOML file
type SchemaLoader func() ([]*config.FieldSchema, error)

// SchemaSyncWorker keeps the stored field schemas in line with their declaration. A kind
// is written back only when its declaration changed since the last sync.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
type SchemaSyncWorker struct {
	repo     interfaces.Repository
	load     SchemaLoader
	interval time.Duration
	onChange func(kind types.EntityKind)

	last   map[types.EntityKind]*config.FieldSchema
	stopCh chan struct{}
	doneCh chan struct{}
}

// SchemaSyncOption configures SchemaSyncWorker
type SchemaSyncOption func(*SchemaSyncWorker)

// WithOnChange registers a callback invoked for every kind whose schema was rewritten
func WithOnChange(fn func(kind types.EntityKind)) SchemaSyncOption {
	return func(w *SchemaSyncWorker) {
		w.onChange = fn
	}
}

// NewSchemaSyncWorker creates a worker. An interval of 0 disables the periodic reload;
// Sync can still be called directly.
func NewSchemaSyncWorker(repo interfaces.Repository, load SchemaLoader, interval time.Duration, opts ...SchemaSyncOption) *SchemaSyncWorker {
	w := &SchemaSyncWorker{
		repo:     repo,
		load:     load,
		interval: interval,
		onChange: func(types.EntityKind) {},
		last:     make(map[types.EntityKind]*config.FieldSchema),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start runs the reload loop in a background goroutine. The initial sync must be done by
// calling Sync before Start.
func (w *SchemaSyncWorker) Start(ctx context.Context) {
	logging.Default().Info("Schema sync worker starting", "interval", w.interval.String())
	go w.run(ctx)
}

// Stop signals the worker to stop and waits for completion
func (w *SchemaSyncWorker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Schema sync worker stopped")
}

func (w *SchemaSyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if w.interval <= 0 {
		select {
		case <-w.stopCh:
		case <-ctx.Done():
		}
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.Sync(ctx); err != nil {
				logging.Default().Error("Schema sync failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

// Sync loads the declaration once and stores every changed schema. It returns the kinds
// that were written. A load failure leaves the stored schemas untouched.
func (w *SchemaSyncWorker) Sync(ctx context.Context) ([]types.EntityKind, error) {
	schemas, err := w.load()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load field schemas")
	}

	var changed []types.EntityKind
	for _, schema := range schemas {
		if reflect.DeepEqual(w.last[schema.Kind], schema) {
			continue
		}
		if err := w.repo.Schema().Put(ctx, schema); err != nil {
			return changed, goerr.Wrap(err, "failed to store field schema", goerr.V("kind", schema.Kind))
		}
		w.last[schema.Kind] = schema
		changed = append(changed, schema.Kind)
		w.onChange(schema.Kind)
	}

	if len(changed) > 0 {
		logging.Default().Info("Field schemas synchronized", "kinds", changed)
	}
	return changed, nil
}

package executor

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ndk/internal/collaborators"
	"github.com/ternarybob/ndk/internal/config"
	"github.com/ternarybob/ndk/internal/history"
	"github.com/ternarybob/ndk/internal/ingestion"
	"github.com/ternarybob/ndk/internal/ndkerr"
	"github.com/ternarybob/ndk/pkg/uri"
)

// Executor is the top-level §4.5 query executor: it drives the connector
// chain, the history store and the inference collaborator to turn a list
// of actions into a fully resolved Resources bundle.
type Executor struct {
	connectors []collaborators.Connector
	history    *history.Store
	inference  collaborators.Inference
	tunables   config.Tunables
	batchSize  int
	logger     arbor.ILogger
}

// NewExecutor wires an Executor from its collaborators. connectors is
// tried in order for every reference the executor needs to locate (§4.5
// step 1's "connector chain"); inference may be nil, in which case label
// generation silently yields empty labels (internal/labels.Generate's nil
// handling).
func NewExecutor(connectors []collaborators.Connector, store *history.Store, inference collaborators.Inference, tunables config.Tunables, logger arbor.ILogger) *Executor {
	batchSize := tunables.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Executor{
		connectors: connectors,
		history:    store,
		inference:  inference,
		tunables:   tunables,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// QueryOptions carries the caller-supplied knobs that aren't part of the
// action list itself: the overall per-request timeout (§5) and the
// label-satisfaction filter applied during final assembly (§4.5 step 7).
type QueryOptions struct {
	// Timeout, if positive, wraps the whole call per §5's "overall
	// per-request timeout wraps execute_query_all".
	Timeout time.Duration
	// RequiredLabels, if non-empty, restricts the final Resources to
	// entries whose generated labels intersect this set.
	RequiredLabels []string
}

// ExecuteQueryAll runs §4.5's full action-to-bundle pipeline: action
// intake, the batched resolve/observe/ingest loop, relation/dependency
// expansion, label generation, and final assembly.
//
// On cancellation the final bundle is not emitted (§5): ExecuteQueryAll
// returns a Cancelled error instead, even though any in-flight batch was
// allowed to complete and its deltas are already durably persisted.
func (e *Executor) ExecuteQueryAll(ctx context.Context, actions []Action, opts QueryOptions) (Resources, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ps := newPendingState()
	if err := e.intake(ctx, ps, actions); err != nil {
		return Resources{}, ndkerr.Wrap(ndkerr.Internal, err, "failed to apply attachment action")
	}

	e.run(ctx, ps)

	if ctx.Err() != nil {
		return Resources{}, ndkerr.New(ndkerr.Cancelled, "query cancelled before completion")
	}

	e.generateLabels(ctx, ps)

	return e.assemble(ps, opts), nil
}

// resolveLink adapts the history store's alias index to ingestion's
// connector-agnostic ResolveLink callback, so ingestion never depends on
// internal/collaborators directly.
func (e *Executor) resolveLink(ctx context.Context) ingestion.ResolveLink {
	return func(ref string) (uri.ResourceURI, bool) {
		resource, ok, err := e.history.ResolveAlias(ctx, ref)
		if err != nil || !ok {
			return uri.ResourceURI{}, false
		}
		return resource, true
	}
}

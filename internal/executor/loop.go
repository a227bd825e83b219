package executor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/ndk/internal/collaborators"
	"github.com/ternarybob/ndk/internal/history"
	"github.com/ternarybob/ndk/internal/ingestion"
	"github.com/ternarybob/ndk/internal/ndkerr"
	"github.com/ternarybob/ndk/pkg/bundle"
	"github.com/ternarybob/ndk/pkg/uri"
)

// run drives §4.5 steps 3-6: repeatedly batching outstanding pending
// results, resolving/observing/ingesting each in parallel, then expanding
// relations/dependencies, until no pending result has missing work.
//
// Per §5, a batch is a structured-concurrency scope: all of its tasks are
// joined before the loop mutates pendingState again, so no task body ever
// races a relation-expansion pass.
func (e *Executor) run(ctx context.Context, ps *pendingState) {
	for {
		if ctx.Err() != nil {
			return
		}
		batch := selectBatch(ps, e.batchSize)
		if len(batch) == 0 {
			return
		}
		e.runBatch(ctx, ps, batch)
		if ctx.Err() != nil {
			// §5: in-flight batches complete best-effort, but we do not
			// start another one once cancellation is observed.
			return
		}
	}
}

// selectBatch picks up to size pending results that still have work,
// sorted by (expand_depth DESC, load_mode != none DESC, resource_uri DESC)
// so the graph expands breadth-first by depth before leaf content is read.
func selectBatch(ps *pendingState, size int) []*pendingResult {
	var candidates []*pendingResult
	for _, key := range ps.order {
		r := ps.results[key]
		if r.hasWork() {
			candidates = append(candidates, r)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.expandDepth != b.expandDepth {
			return a.expandDepth > b.expandDepth
		}
		aLoad, bLoad := a.loadMode != LoadNone, b.loadMode != LoadNone
		if aLoad != bLoad {
			return aLoad
		}
		return a.resource.String() > b.resource.String()
	})
	if len(candidates) > size {
		candidates = candidates[:size]
	}
	return candidates
}

// runBatch resolves, observes and ingests every entry in batch
// concurrently behind a size-bounded semaphore, joins on all of them, then
// runs relation/dependency expansion over the batch's results.
func (e *Executor) runBatch(ctx context.Context, ps *pendingState, batch []*pendingResult) {
	sem := make(chan struct{}, e.batchSize)
	var wg sync.WaitGroup

	for _, r := range batch {
		wg.Add(1)
		go func(r *pendingResult) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			e.processEntry(ctx, ps, r)
		}(r)
	}
	wg.Wait()

	for _, r := range batch {
		e.expandRelationsAndDeps(ctx, ps, r)
	}
}

// processEntry runs resolve -> merge -> observe -> ingest -> persist ->
// history-write for one pending result (§4.5 step 4). It never returns an
// error: failures are recorded on r per §7's ResourceError/ObservationError
// policy instead.
func (e *Executor) processEntry(ctx context.Context, ps *pendingState, r *pendingResult) {
	if !r.resolved {
		e.resolveEntry(ctx, r)
		if r.unresolvable != nil {
			return
		}
	}

	for _, obs := range r.missingObserve() {
		e.observeOne(ctx, ps, r, obs)
	}
}

func (e *Executor) resolveEntry(ctx context.Context, r *pendingResult) {
	h, err := e.history.Load(ctx, r.resource)
	if err != nil {
		r.unresolvable = &ResourceError{Resource: r.resource, Reason: "failed to load history: " + err.Error()}
		return
	}
	var cachedPtr *history.MergedView
	if len(h.Deltas) > 0 {
		merged := history.Merge(h)
		cachedPtr = &merged
	}

	if r.connector == nil {
		r.unresolvable = &ResourceError{Resource: r.resource, Reason: "no connector available to resolve"}
		return
	}

	result, err := r.connector.Resolve(ctx, r.locator, cachedPtr)
	if err != nil {
		r.unresolvable = &ResourceError{Resource: r.resource, Reason: "resolve failed: " + err.Error()}
		return
	}

	r.metadata = result.MetadataDelta
	r.resolved = true
	r.shouldCache = result.ShouldCache

	for _, exp := range result.Expired {
		delete(r.observed, exp.String())
	}

	if _, err := e.history.AppendDelta(ctx, r.resource, history.ResourceDelta{
		RefreshedAt:   time.Now(),
		MetadataDelta: result.MetadataDelta,
	}); err != nil {
		r.unresolvable = &ResourceError{Resource: r.resource, Reason: "failed to persist resolve metadata: " + err.Error()}
	}
}

// observeOne observes, ingests and persists a single observable. Failures
// produce an ObservationError on obs; sibling observables still proceed
// (§7).
func (e *Executor) observeOne(ctx context.Context, ps *pendingState, r *pendingResult, obs Observable) {
	resolveResult := collaborators.ResolveResult{MetadataDelta: r.metadata, ShouldCache: r.shouldCache}
	observed, err := r.connector.Observe(ctx, r.locator, obs, resolveResult)
	if err != nil {
		r.obsErrs = append(r.obsErrs, ObservationError{Observable: obs, Reason: err.Error()})
		return
	}

	var b bundle.Bundle
	var newRelations []history.Relation
	var files []bundle.BundleFile

	switch {
	case observed.Bundle != nil:
		b, err = projectObservedBundle(*observed.Bundle)
		if err != nil {
			r.obsErrs = append(r.obsErrs, ObservationError{Observable: obs, Reason: err.Error()})
			return
		}
	case observed.Fragment != nil:
		result, err := ingestion.Ingest(r.resource, *observed.Fragment, e.tunables, e.resolveLink(ctx))
		if err != nil {
			r.obsErrs = append(r.obsErrs, ObservationError{Observable: obs, Reason: "ingestion failed: " + err.Error()})
			return
		}
		if result.Body != nil {
			b = bundle.FromBody(result.Body)
		}
		files = result.Files
		newRelations = result.Relations
	default:
		r.obsErrs = append(r.obsErrs, ObservationError{Observable: obs, Reason: "connector returned neither bundle nor fragment"})
		return
	}

	newRelations = append(newRelations, observed.Relations...)
	newRelations = append(newRelations, relationsForOptions(r.resource, observed)...)
	newRelations = append(newRelations, relationsForBundle(r.resource, b)...)

	shouldCache := observed.ShouldCache || r.shouldCache
	if shouldCache {
		r.bundles = append(r.bundles, b)
		for _, f := range files {
			fCopy := f
			r.bundles = append(r.bundles, bundle.FromFile(&fCopy))
		}
	}
	r.observed[obs.String()] = true

	observedDeltas := []history.ObservedDelta{toObservedDelta(b)}
	for _, f := range files {
		fCopy := f
		observedDeltas = append(observedDeltas, history.ObservedDelta{Kind: uri.KindFile, File: &fCopy})
	}

	if _, err := e.history.AppendDelta(ctx, r.resource, history.ResourceDelta{
		RefreshedAt:   time.Now(),
		MetadataDelta: observed.MetadataDelta,
		Observed:      observedDeltas,
		Relations:     newRelations,
	}); err != nil {
		r.obsErrs = append(r.obsErrs, ObservationError{Observable: obs, Reason: "failed to persist observation: " + err.Error()})
		return
	}

	ps.relations = append(ps.relations, newRelations...)
}

func relationsForOptions(source uri.ResourceURI, observed collaborators.ObservedResult) []history.Relation {
	var out []history.Relation
	for _, target := range observed.OptionRelationsLink {
		out = append(out, history.NewRelation(history.RelationLink, "", source, target))
	}
	for _, target := range observed.OptionRelationsParent {
		out = append(out, history.NewRelation(history.RelationParent, "", source, target))
	}
	return out
}

// relationsForBundle records the one relation kind a bundle variant implies
// by its own shape (§4.7): a collection bundle contributes one Parent
// relation per distinct result. Body bundles' Link relations come from
// ingestion's own link resolution instead (internal/ingestion/links.go),
// since a materialized body bundle carries no raw text to resolve here.
func relationsForBundle(source uri.ResourceURI, b bundle.Bundle) []history.Relation {
	if b.Kind != bundle.KindCollection {
		return nil
	}
	seen := map[string]bool{}
	var out []history.Relation
	for _, child := range b.Collection.Results {
		key := child.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, history.NewRelation(history.RelationParent, "", source, child))
	}
	return out
}

func projectObservedBundle(ob collaborators.ObservedBundle) (bundle.Bundle, error) {
	switch {
	case ob.Body != nil:
		return bundle.FromBody(ob.Body), nil
	case ob.Collection != nil:
		return bundle.FromCollection(ob.Collection), nil
	case ob.File != nil:
		return bundle.FromFile(ob.File), nil
	case ob.Plain != nil:
		return bundle.FromPlain(ob.Plain), nil
	default:
		return bundle.Bundle{}, ndkerr.New(ndkerr.Internal, "connector returned an empty observed bundle")
	}
}

func toObservedDelta(b bundle.Bundle) history.ObservedDelta {
	switch b.Kind {
	case bundle.KindBody:
		return history.ObservedDelta{Kind: uri.KindBody, Body: b.Body}
	case bundle.KindCollection:
		return history.ObservedDelta{Kind: uri.KindCollection, Collection: b.Collection}
	case bundle.KindFile:
		return history.ObservedDelta{Kind: uri.KindFile, File: b.File}
	default:
		return history.ObservedDelta{Kind: uri.KindPlain, Plain: b.Plain}
	}
}

// expandRelationsAndDeps implements §4.5 step 5: after persistence, newly
// discovered relations and bundle dependencies seed or upgrade pending
// entries for related resources. Re-expansion is skipped once a resource
// has already been expanded at an equal or deeper level, which is what
// terminates the BFS on cycles (§9).
func (e *Executor) expandRelationsAndDeps(ctx context.Context, ps *pendingState, r *pendingResult) {
	if r.unresolvable != nil {
		return
	}
	if r.expandMode == ExpandNone {
		return
	}
	if r.relationsExpandedAt >= r.expandDepth {
		return
	}
	r.relationsExpandedAt = r.expandDepth

	for _, b := range r.bundles {
		for _, ref := range b.DepEmbeds() {
			if target, ok := uri.ResourceOf(ref); ok {
				bodyObservable := Observable{Resource: target, Suffix: &uri.Suffix{Kind: uri.KindBody}}
				e.upsertAndLocate(ctx, ps, target, 0, r.expandMode, r.loadMode, []Observable{bodyObservable})
			}
		}
		for _, ref := range b.DepLinks() {
			if target, ok := uri.ResourceOf(ref); ok {
				ps.upsert(target, 0, r.expandMode, LoadNone, nil)
			}
		}
		if b.Kind == bundle.KindCollection {
			for _, child := range b.Collection.Results {
				bodyObservable := Observable{Resource: child, Suffix: &uri.Suffix{Kind: uri.KindBody}}
				e.upsertAndLocate(ctx, ps, child, r.expandDepth-1, r.expandMode, LoadAuto, []Observable{bodyObservable})
			}
		}
	}
}

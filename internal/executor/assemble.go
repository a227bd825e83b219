package executor

import (
	"sort"

	"github.com/ternarybob/ndk/internal/history"
	"github.com/ternarybob/ndk/internal/labels"
	"github.com/ternarybob/ndk/pkg/bundle"
)

// assemble implements §4.5 step 7: map every pending result through the
// allowlist/label filter and project it into a Resource or ResourceError,
// plus the deduplicated, deterministically ordered relation list and a
// diagnostic bundle.Stats aggregate.
func (e *Executor) assemble(ps *pendingState, opts QueryOptions) Resources {
	var out Resources

	var bodies []*bundle.BundleBody
	for _, key := range ps.order {
		r := ps.results[key]
		if !inAllowlist(r) {
			continue
		}
		if r.unresolvable != nil {
			out.Errors = append(out.Errors, *r.unresolvable)
			continue
		}
		if !satisfiesLabels(r, opts.RequiredLabels) {
			continue
		}

		res := Resource{
			URI:               r.resource,
			Metadata:          r.metadata,
			Bundles:           r.bundles,
			ObservationErrors: r.obsErrs,
		}
		if r.label != nil {
			res.Labels = []labels.Result{*r.label}
		}
		out.Resources = append(out.Resources, res)

		for _, b := range r.bundles {
			if b.Kind == bundle.KindBody {
				bodies = append(bodies, b.Body)
			}
		}
	}

	out.Relations = dedupRelations(ps.relations)
	out.Stats = bundle.ComputeStats(bodies)
	return out
}

// inAllowlist implements the "URI allowlist" half of step 7's filter: a
// pending entry only became a deliverable Resource if some action actually
// asked to load or observe it (load_mode != none), as opposed to a stub
// entry §4.5 step 5 created purely to record a link dependency.
func inAllowlist(r *pendingResult) bool {
	return r.loadMode != LoadNone || r.unresolvable != nil
}

// satisfiesLabels implements the "label satisfaction" half of step 7's
// filter: with no required labels, every resource passes; otherwise a
// resource must carry at least one of the required labels.
func satisfiesLabels(r *pendingResult, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if r.label == nil {
		return false
	}
	want := map[string]bool{}
	for _, l := range required {
		want[l] = true
	}
	for _, l := range r.label.Labels {
		if want[l] {
			return true
		}
	}
	return false
}

// dedupRelations removes duplicate relations by unique_id and sorts the
// result by unique_id, per §5's "relations by unique_id" ordering
// guarantee and §8.1's "no duplicates by unique_id" invariant.
func dedupRelations(relations []history.Relation) []history.Relation {
	seen := map[string]history.Relation{}
	for _, rel := range relations {
		seen[rel.UniqueID] = rel
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]history.Relation, 0, len(ids))
	for _, id := range ids {
		out = append(out, seen[id])
	}
	return out
}

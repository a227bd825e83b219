package history

import "github.com/ternarybob/ndk/pkg/uri"

// Merge folds a ResourceHistory's deltas left to right into the resource's
// current view, per §3.4: metadata keys overwrite only what a delta sets,
// aliases accumulate, an Expired entry clears the matching-Kind Observed
// record before that same delta's Observed overlay is applied (so a delta
// can resolve a stale affordance and re-observe it in one step), and
// Relations replaces the whole list only when a delta supplies one (nil
// means "untouched", not "cleared").
func Merge(h ResourceHistory) MergedView {
	v := MergedView{
		Resource: h.Resource,
		Metadata: map[string]string{},
		Observed: map[uri.Kind]ObservedDelta{},
	}

	for _, d := range h.Deltas {
		if d.Locator != "" {
			v.Locator = d.Locator
		}
		for k, val := range d.MetadataDelta {
			v.Metadata[k] = val
		}
		v.Aliases = append(v.Aliases, d.Aliases...)

		for _, exp := range d.Expired {
			delete(v.Observed, exp.AffordanceOf().Suffix.Kind)
		}
		for _, obs := range d.Observed {
			v.Observed[obs.Kind] = obs
		}

		if d.Relations != nil {
			v.Relations = d.Relations
		}
	}

	return v
}

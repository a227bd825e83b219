package executor

import (
	"context"
	"strings"

	"github.com/ternarybob/ndk/internal/labels"
	"github.com/ternarybob/ndk/pkg/bundle"
)

// generateLabels builds one labels.Observation per resolved resource that
// accumulated cacheable body content, asks internal/labels for a batched
// label/field/cross-ref pass, and folds each result back onto its pending
// entry (§4.5's "PendingResult... accumulated labels").
func (e *Executor) generateLabels(ctx context.Context, ps *pendingState) {
	var observations []labels.Observation
	byResource := map[string]*pendingResult{}

	for _, key := range ps.order {
		r := ps.results[key]
		if r.unresolvable != nil {
			continue
		}
		text := bodyText(r)
		if text == "" {
			continue
		}
		observations = append(observations, labels.Observation{Resource: r.resource, Text: text})
		byResource[r.resource.String()] = r
	}
	if len(observations) == 0 {
		return
	}

	results := labels.Generate(ctx, observations, e.inference, e.tunables.GroupThreshold, e.logger)
	for i := range results {
		res := results[i]
		if r, ok := byResource[res.Resource.String()]; ok {
			r.label = &res
		}
	}
}

// bodyText concatenates the text of every chunk across a pending result's
// accumulated body bundles, the input internal/labels batches into a
// prompt.
func bodyText(r *pendingResult) string {
	var b strings.Builder
	for _, bnd := range r.bundles {
		if bnd.Kind != bundle.KindBody || bnd.Body == nil {
			continue
		}
		for _, c := range bnd.Body.Chunks {
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(c.Text.AsStr(false))
		}
	}
	return b.String()
}

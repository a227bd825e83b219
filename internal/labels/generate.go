package labels

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ndk/internal/collaborators"
	"github.com/ternarybob/ndk/internal/xref"
)

// Generate batches observations by tokenThreshold and asks inference for
// labels/fields per batch, folding in a deterministic cross-reference scan
// per observation regardless of inference outcome. Per §7 ("Inference
// errors are logged and yield an empty label/field list for that group —
// they never fail the request"), a failed batch never aborts Generate: its
// observations simply get empty Labels/Fields (CrossRefs still populated).
func Generate(ctx context.Context, observations []Observation, inference collaborators.Inference, tokenThreshold int, logger arbor.ILogger) []Result {
	results := make([]Result, 0, len(observations))

	for _, batch := range Batch(observations, tokenThreshold) {
		entries := generateBatch(ctx, batch, inference, logger)
		for i, obs := range batch {
			results = append(results, Result{
				Resource:  obs.Resource,
				Labels:    entries[i].Labels,
				Fields:    entries[i].Fields,
				CrossRefs: xref.ExtractFromText(obs.Text),
			})
		}
	}
	return results
}

func generateBatch(ctx context.Context, batch []Observation, inference collaborators.Inference, logger arbor.ILogger) []modelEntry {
	empty := make([]modelEntry, len(batch))

	if inference == nil {
		return empty
	}

	prompt := []collaborators.PromptPart{{Kind: collaborators.PromptText, Text: buildPrompt(batch)}}
	raw, err := inference.CompletionJSON(ctx, systemPrompt, responseSchema, prompt)
	if err != nil {
		if logger != nil {
			logger.Error().Err(err).Int("batch_size", len(batch)).Msg("label generation inference call failed, yielding empty labels for batch")
		}
		return empty
	}
	return parseResponse(raw, len(batch))
}

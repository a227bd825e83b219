package labels

import "github.com/ternarybob/ndk/pkg/tokens"

// Batch groups observations, in order, so each batch's total estimated
// token count stays at or under threshold (§6.5's GROUP_THRESHOLD). A
// single observation larger than threshold still gets its own
// single-item batch rather than being dropped or split.
func Batch(observations []Observation, threshold int) [][]Observation {
	var batches [][]Observation
	var current []Observation
	currentTokens := 0

	for _, obs := range observations {
		t := tokens.Estimate(obs.Text)
		if len(current) > 0 && currentTokens+t > threshold {
			batches = append(batches, current)
			current = nil
			currentTokens = 0
		}
		current = append(current, obs)
		currentTokens += t
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

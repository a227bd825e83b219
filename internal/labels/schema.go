package labels

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// responseSchema is the JSON Schema handed to Inference.CompletionJSON: a
// flat object keyed by the observation's index within its batch (as a
// string, since JSON Schema "patternProperties" doesn't address integer
// keys), each value a {labels, fields} pair.
var responseSchema = []byte(`{
  "type": "object",
  "patternProperties": {
    "^[0-9]+$": {
      "type": "object",
      "properties": {
        "labels": {"type": "array", "items": {"type": "string"}},
        "fields": {"type": "object", "additionalProperties": {"type": "string"}}
      },
      "required": ["labels", "fields"]
    }
  }
}`)

const systemPrompt = `You are a content labeling assistant. For each numbered document below, produce a short set of topical labels and any typed fields (key/value pairs) you can confidently extract. Respond with a single JSON object matching the given schema, keyed by each document's number as a string. Omit a key entirely rather than guessing if nothing applies.`

type modelEntry struct {
	Labels []string          `json:"labels"`
	Fields map[string]string `json:"fields"`
}

// buildPrompt renders a batch as numbered documents for the prompt text.
func buildPrompt(batch []Observation) string {
	var b strings.Builder
	for i, obs := range batch {
		fmt.Fprintf(&b, "Document %d (%s):\n%s\n\n", i, obs.Resource.String(), obs.Text)
	}
	return b.String()
}

// parseResponse decodes the model's JSON object into one modelEntry per
// batch index, defaulting to an empty entry for indexes the model omitted
// or for a response that fails to parse at all.
func parseResponse(raw string, batchLen int) []modelEntry {
	entries := make([]modelEntry, batchLen)

	var decoded map[string]modelEntry
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return entries
	}
	for k, v := range decoded {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 || idx >= batchLen {
			continue
		}
		entries[idx] = v
	}
	return entries
}

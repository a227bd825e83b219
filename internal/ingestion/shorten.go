package ingestion

import (
	"fmt"
	"strings"

	"github.com/ternarybob/ndk/internal/ndkerr"
	"github.com/ternarybob/ndk/pkg/tokens"
)

// shorten implements §4.6's trimming rule: text under threshold tokens
// passes through unchanged; otherwise lines accumulate until adding the
// next one would exceed trimmedMax tokens, and an omission marker is
// appended. A single first line already over trimmedMax cannot be trimmed
// into budget, so that's reported as an Ingestion error.
func shorten(text string, threshold, trimmedMax int) (string, error) {
	if tokens.Estimate(text) <= threshold {
		return text, nil
	}

	lines := strings.Split(text, "\n")
	if tokens.Estimate(lines[0]) > trimmedMax {
		return "", ndkerr.New(ndkerr.Ingestion, "file too large")
	}

	var kept []string
	kept = append(kept, lines[0])
	acc := tokens.Estimate(lines[0])
	cut := 1

	for _, line := range lines[1:] {
		lt := tokens.Estimate(line)
		if acc+lt > trimmedMax {
			break
		}
		kept = append(kept, line)
		acc += lt
		cut++
	}

	result := strings.Join(kept, "\n")
	if omitted := len(lines) - cut; omitted > 0 {
		result += fmt.Sprintf("\n\n... (%d lines omitted)", omitted)
	}
	return result, nil
}

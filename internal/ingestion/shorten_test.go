package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/ndk/internal/ndkerr"
)

func TestShortenPassesThroughUnderThreshold(t *testing.T) {
	text := "short text"
	out, err := shorten(text, 1000, 500)
	require.NoError(t, err)
	require.Equal(t, text, out)
}

func TestShortenTrimsAndAppendsOmissionMarker(t *testing.T) {
	lines := make([]string, 200)
	for i := range lines {
		lines[i] = strings.Repeat("x", 20)
	}
	text := strings.Join(lines, "\n")

	out, err := shorten(text, 10, 50)
	require.NoError(t, err)
	require.Contains(t, out, "lines omitted")
	require.Less(t, len(out), len(text))
}

func TestShortenFailsWhenFirstLineAloneExceedsTrimmedMax(t *testing.T) {
	text := strings.Repeat("x", 1000)
	_, err := shorten(text, 1, 10)
	require.Error(t, err)
	require.True(t, ndkerr.Is(err, ndkerr.Ingestion))
}

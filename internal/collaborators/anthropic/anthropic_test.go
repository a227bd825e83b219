package anthropic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildSystemPromptIncludesSchemaAndSystemText(t *testing.T) {
	out := buildSystemPrompt("classify the issue", []byte(`{"type":"object"}`))
	require.True(t, strings.HasPrefix(out, "classify the issue\n\n"))
	require.Contains(t, out, `{"type":"object"}`)
}

func TestBuildSystemPromptOmitsBlankSystemText(t *testing.T) {
	out := buildSystemPrompt("", []byte(`{"type":"object"}`))
	require.False(t, strings.Contains(out, "\n\n\n"))
	require.True(t, strings.HasPrefix(out, "Respond with a single JSON value"))
}

func TestEncodeBase64RoundTripsThroughStandardEncoding(t *testing.T) {
	require.Equal(t, "aGVsbG8=", encodeBase64([]byte("hello")))
}

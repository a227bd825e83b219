package labels

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ndk/internal/collaborators"
	"github.com/ternarybob/ndk/pkg/uri"
)

type fakeInference struct {
	response string
	err      error
	calls    int
}

func (f *fakeInference) CompletionJSON(ctx context.Context, system string, schema []byte, prompt []collaborators.PromptPart) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeInference) Embedding(ctx context.Context, content string) ([]float32, error) {
	return nil, nil
}

func testResource(n string) uri.ResourceURI {
	return uri.ResourceURI{Realm: "github", Subrealm: "acme", Path: []string{"widgets", "issues", n}}
}

func TestGenerateParsesPerIndexLabelsAndFieldsAndAddsCrossRefs(t *testing.T) {
	observations := []Observation{
		{Resource: testResource("1"), Text: "blocked on PROJ-1"},
		{Resource: testResource("2"), Text: "see #7 for context"},
	}
	inference := &fakeInference{response: `{
		"0": {"labels": ["bug"], "fields": {"severity": "high"}},
		"1": {"labels": ["question"], "fields": {}}
	}`}

	results := Generate(context.Background(), observations, inference, 80_000, nil)
	require.Len(t, results, 2)
	require.Equal(t, []string{"bug"}, results[0].Labels)
	require.Equal(t, "high", results[0].Fields["severity"])
	require.Contains(t, results[0].CrossRefs, "PROJ-1")
	require.Equal(t, []string{"question"}, results[1].Labels)
	require.Contains(t, results[1].CrossRefs, "7")
}

func TestGenerateYieldsEmptyLabelsOnInferenceErrorWithoutFailing(t *testing.T) {
	observations := []Observation{{Resource: testResource("1"), Text: "blocked on PROJ-1"}}
	inference := &fakeInference{err: errors.New("rate limited")}

	results := Generate(context.Background(), observations, inference, 80_000, nil)
	require.Len(t, results, 1)
	require.Empty(t, results[0].Labels)
	require.Nil(t, results[0].Fields)
	require.Contains(t, results[0].CrossRefs, "PROJ-1")
}

func TestGenerateHandlesNilInferenceCollaborator(t *testing.T) {
	observations := []Observation{{Resource: testResource("1"), Text: "see #99"}}
	results := Generate(context.Background(), observations, nil, 80_000, nil)
	require.Len(t, results, 1)
	require.Empty(t, results[0].Labels)
}

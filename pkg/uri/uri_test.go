package uri

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// S1. Round-trip of representative URIs.
func TestParseReferenceRoundTrip(t *testing.T) {
	cases := []string{
		"ndk://jira/issue/PROJ-123",
		"ndk://stub/-/dir/example/$body",
		"ndk://stub/-/dir/example/$chunk/01/02",
		"ndk://stub/-/dir/example/$media/figures/image.png",
		"https://example.com/mypage.html?queryParam=42#fragment",
	}
	for _, s := range cases {
		t.Run(s, func(t *testing.T) {
			ref, err := ParseReference(s)
			require.NoError(t, err)
			require.Equal(t, s, ref.String())
		})
	}
}

func TestParseResourceURIVariants(t *testing.T) {
	ref, err := ParseReference("ndk://jira/issue/PROJ-123")
	require.NoError(t, err)
	require.Equal(t, ReferenceKnowledge, ref.Kind)
	require.Nil(t, ref.Knowledge.Suffix)
	require.Equal(t, "jira", ref.Knowledge.Resource.Realm)
	require.Equal(t, "issue", ref.Knowledge.Resource.Subrealm)
	require.Equal(t, []string{"PROJ-123"}, ref.Knowledge.Resource.Path)
}

func TestParseChunkObservable(t *testing.T) {
	ref, err := ParseReference("ndk://stub/-/dir/example/$chunk/01/02")
	require.NoError(t, err)
	require.Equal(t, KindChunk, ref.Knowledge.Suffix.Kind)
	require.Equal(t, []string{"01", "02"}, ref.Knowledge.Suffix.Path)
}

func TestRejectsTooFewComponents(t *testing.T) {
	_, err := ParseReference("ndk://jira/issue")
	require.Error(t, err)
	var bad *BadURIError
	require.ErrorAs(t, err, &bad)
}

func TestRejectsBadChunkIndex(t *testing.T) {
	_, err := ParseReference("ndk://stub/-/dir/example/$chunk/abc")
	require.Error(t, err)
}

func TestRejectsUnknownKind(t *testing.T) {
	_, err := ParseReference("ndk://stub/-/dir/example/$bogus")
	require.Error(t, err)
}

func TestSuffixOfKind(t *testing.T) {
	k, ok := SuffixOfKind("$chunk/01")
	require.True(t, ok)
	require.Equal(t, KindChunk, k)

	_, ok = SuffixOfKind("$nope")
	require.False(t, ok)
}

func TestIsChildOr(t *testing.T) {
	parentResource, err := ParseReference("ndk://jira/issue/PROJ-123")
	require.NoError(t, err)

	body, err := ParseReference("ndk://jira/issue/PROJ-123/$body")
	require.NoError(t, err)

	chunk, err := ParseReference("ndk://jira/issue/PROJ-123/$chunk/01")
	require.NoError(t, err)

	other, err := ParseReference("ndk://jira/issue/PROJ-456/$body")
	require.NoError(t, err)

	require.True(t, IsChildOr(body, parentResource))
	require.True(t, IsChildOr(chunk, body))
	require.True(t, IsChildOr(chunk, parentResource))
	require.False(t, IsChildOr(other, parentResource))
	require.True(t, IsChildOr(parentResource, parentResource))
}

func TestChildObservableValidatesChunkIndex(t *testing.T) {
	resource := ResourceURI{Realm: "jira", Subrealm: "issue", Path: []string{"PROJ-123"}}
	_, err := ChildObservable(resource, KindChunk, "1")
	require.Error(t, err)

	k, err := ChildObservable(resource, KindChunk, "01")
	require.NoError(t, err)
	require.Equal(t, "ndk://jira/issue/PROJ-123/$chunk/01", k.String())
}

func TestExternalURICanonicalization(t *testing.T) {
	e, err := ParseExternalURI("https://example.com:443/a?b=2&a=1")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/a?a=1&b=2", e.String())
}

func TestExternalURIRejectsForbiddenChars(t *testing.T) {
	_, err := ParseExternalURI(`https://example.com/<bad>`)
	require.Error(t, err)
}

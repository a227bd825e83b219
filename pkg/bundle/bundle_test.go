package bundle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ndk/pkg/content"
	"github.com/ternarybob/ndk/pkg/uri"
)

func mustChunkURI(t *testing.T, s string) uri.KnowledgeURI {
	t.Helper()
	k, err := uri.ParseKnowledgeURI(s)
	require.NoError(t, err)
	return k
}

func TestNewBundleBodySortsChunksByIndexes(t *testing.T) {
	resource := uri.ResourceURI{Realm: "jira", Subrealm: "issue", Path: []string{"PROJ-1"}}
	u := mustChunkURI(t, "ndk://jira/issue/PROJ-1/$body")

	c1 := Chunk{URI: mustChunkURI(t, "ndk://jira/issue/PROJ-1/$chunk/01"), Indexes: []int{1}, Text: content.FromParts(nil)}
	c0 := Chunk{URI: mustChunkURI(t, "ndk://jira/issue/PROJ-1/$chunk/00"), Indexes: []int{0}, Text: content.FromParts(nil)}
	c10 := Chunk{URI: mustChunkURI(t, "ndk://jira/issue/PROJ-1/$chunk/10"), Indexes: []int{10}, Text: content.FromParts(nil)}

	b := NewBundleBody(u, "", nil, []Chunk{c10, c1, c0}, nil)
	require.Equal(t, []int{0}, b.Chunks[0].Indexes)
	require.Equal(t, []int{1}, b.Chunks[1].Indexes)
	require.Equal(t, []int{10}, b.Chunks[2].Indexes)
	_ = resource
}

func TestNewBundleBodyFiltersUnreferencedMedia(t *testing.T) {
	u := mustChunkURI(t, "ndk://jira/issue/PROJ-1/$body")
	mediaURI := mustChunkURI(t, "ndk://jira/issue/PROJ-1/$media/a.png")
	unusedURI := mustChunkURI(t, "ndk://jira/issue/PROJ-1/$media/b.png")

	embedText := content.FromParts([]content.Part{
		{Kind: content.PartLink, LinkMode: content.LinkEmbed, Href: uri.Reference{Kind: uri.ReferenceKnowledge, Knowledge: mediaURI}},
	})
	chunk := Chunk{URI: mustChunkURI(t, "ndk://jira/issue/PROJ-1/$chunk/00"), Indexes: []int{0}, Text: embedText}

	media := []Media{
		{URI: mediaURI, MimeType: "image/png"},
		{URI: unusedURI, MimeType: "image/png"},
	}

	b := NewBundleBody(u, "", nil, []Chunk{chunk}, media)
	require.Len(t, b.Media, 1)
	require.Equal(t, mediaURI.String(), b.Media[0].URI.String())
}

func TestHasAnyTag(t *testing.T) {
	b := &BundleBody{Tags: []string{"a", "b"}}
	require.True(t, b.HasAnyTag(nil))
	require.True(t, b.HasAnyTag([]string{"b", "c"}))
	require.False(t, b.HasAnyTag([]string{"c"}))
}

func TestProjectBodySingleChunkIsInlineText(t *testing.T) {
	u := mustChunkURI(t, "ndk://jira/issue/PROJ-1/$body")
	chunkURI := mustChunkURI(t, "ndk://jira/issue/PROJ-1/$chunk/00")
	b := &BundleBody{URI: u, Chunks: []Chunk{{URI: chunkURI, Indexes: []int{0}, Text: content.Parse("hello", content.ModeData, content.LinkPlain)}}}

	obs := ProjectBody(b)
	require.Equal(t, ObsBodyText, obs.Mode)
	require.Equal(t, "hello", obs.Text.AsStr(false))
}

func TestProjectBodyMultiChunkIsToc(t *testing.T) {
	u := mustChunkURI(t, "ndk://jira/issue/PROJ-1/$body")
	c0 := Chunk{URI: mustChunkURI(t, "ndk://jira/issue/PROJ-1/$chunk/00"), Indexes: []int{0}}
	c1 := Chunk{URI: mustChunkURI(t, "ndk://jira/issue/PROJ-1/$chunk/01"), Indexes: []int{1}}
	b := &BundleBody{URI: u, Sections: []Section{{Indexes: []int{0}, Heading: "Intro"}}, Chunks: []Chunk{c0, c1}}

	obs := ProjectBody(b)
	require.Equal(t, ObsBodyToc, obs.Mode)
	require.Len(t, obs.Toc, 2)
	require.Equal(t, "Intro", obs.Toc[0].Heading)
}

func TestComputeStats(t *testing.T) {
	u1 := mustChunkURI(t, "ndk://jira/issue/PROJ-1/$body")
	u2 := mustChunkURI(t, "ndk://confluence/page/PROJ-2/$body")
	b1 := &BundleBody{URI: u1, Chunks: make([]Chunk, 2)}
	b2 := &BundleBody{URI: u2, Chunks: make([]Chunk, 4)}

	s := ComputeStats([]*BundleBody{b1, b2})
	require.Equal(t, 2, s.TotalBundles)
	require.Equal(t, 6, s.TotalChunks)
	require.Equal(t, 3.0, s.AverageChunks)
	require.Equal(t, 1, s.ByRealm["jira"])
}

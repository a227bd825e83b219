package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ndk/pkg/content"
	"github.com/ternarybob/ndk/pkg/uri"
)

func mustResource(t *testing.T, s string) uri.ResourceURI {
	t.Helper()
	k, err := uri.ParseKnowledgeURI(s)
	require.NoError(t, err)
	return k.Resource
}

// TestFastPathSmallBody mirrors S3: a small document stays a single chunk
// with no section structure when it fits under CHUNKING_THRESHOLD.
func TestFastPathSmallBody(t *testing.T) {
	resource := mustResource(t, "ndk://jira/issue/PROJ-1")
	md := "# Title\n\nSome short prose under the first heading.\n\n## Details\n\nA little more prose here.\n"
	text := content.Parse(md, content.ModeMarkdown, content.LinkMarkdown)

	body, err := Chunk(resource, "", text, nil, Options{ChunkingThreshold: 20000, MaxChunk: 8000})
	require.NoError(t, err)
	require.Len(t, body.Chunks, 1)
	require.Len(t, body.Sections, 0)
}

// repeatParagraph builds deterministic filler prose of the given number of
// six-character words (about 1.5 tokens per word at 4 chars/token), so
// synthetic sections can target a given size.
func repeatParagraph(words int) string {
	word := "lorem "
	return strings.Repeat(word, words) + "\n"
}

// TestHierarchicalChunkingStaysUnderBudget builds a synthetic multi-section
// document well over CHUNKING_THRESHOLD and checks the size invariant: no
// emitted chunk exceeds MAX_CHUNK tokens except one carrying a single
// unsplittable atom.
func TestHierarchicalChunkingStaysUnderBudget(t *testing.T) {
	resource := mustResource(t, "ndk://jira/issue/PROJ-1")

	var b strings.Builder
	b.WriteString("# Paper\n\n")
	for i := 0; i < 6; i++ {
		b.WriteString("## Section ")
		b.WriteString(strings.Repeat("x", 1))
		b.WriteString("\n\n")
		b.WriteString(repeatParagraph(300))
		b.WriteString("\n")
	}
	text := content.Parse(b.String(), content.ModeMarkdown, content.LinkMarkdown)

	body, err := Chunk(resource, "", text, nil, Options{ChunkingThreshold: 200, MaxChunk: 500})
	require.NoError(t, err)
	require.Greater(t, len(body.Chunks), 1)

	for _, c := range body.Chunks {
		n := c.Text.AsStr(true)
		est := (len(n) + 3) / 4
		if est > 500 {
			// Only acceptable when the chunk is a single unsplittable atom
			// (one paragraph too large to break further).
			require.LessOrEqual(t, strings.Count(n, "\n\n"), 1, "oversized chunk %v should be a single atom", c.Indexes)
		}
	}
}

// TestSectionOnlyEmittedForMultipleSubgroups checks the invariant directly
// against the emit step: a heading that ends up owning a single surviving
// child produces no Section row, only a heading that survives optimize
// with at least two children does.
func TestSectionOnlyEmittedForMultipleSubgroups(t *testing.T) {
	lone := &optimized{leaf: true, atoms: []atom{{kind: atomText, tokens: 1}}}
	root := &optimized{hasHeading: false, children: []*optimized{
		{hasHeading: true, heading: "Solo", children: []*optimized{lone}},
	}}
	sections, chunks, err := emit(mustResource(t, "ndk://jira/issue/PROJ-1"), root)
	require.NoError(t, err)
	require.Len(t, sections, 0)
	require.Len(t, chunks, 1)

	multi := &optimized{hasHeading: true, heading: "Group", children: []*optimized{lone, lone}}
	root2 := &optimized{children: []*optimized{multi}}
	sections2, chunks2, err := emit(mustResource(t, "ndk://jira/issue/PROJ-1"), root2)
	require.NoError(t, err)
	require.Len(t, sections2, 1)
	require.Equal(t, "Group", sections2[0].Heading)
	require.Len(t, chunks2, 2)
}

// TestAtomizeSplitsParagraphsAndSkipsEmptyOnes checks atomize/splitTextAtoms
// directly: blank-line paragraph boundaries split, headings and code stand
// alone, and no text atom is left empty.
func TestAtomizeSplitsParagraphsAndSkipsEmptyOnes(t *testing.T) {
	md := "First paragraph.\n\n\n\nSecond paragraph.\n\n## Heading\n\n```go\ncode\n```\n"
	text := content.Parse(md, content.ModeMarkdown, content.LinkMarkdown)
	atoms := atomize(text.Parts)

	var kinds []atomKind
	for _, a := range atoms {
		kinds = append(kinds, a.kind)
	}
	require.Contains(t, kinds, atomHeading)
	require.Contains(t, kinds, atomCode)

	textAtoms := 0
	for _, a := range atoms {
		if a.kind == atomText {
			textAtoms++
			require.NotEmpty(t, strings.TrimSpace(content.FromParts(a.parts).AsStr(true)))
		}
	}
	require.GreaterOrEqual(t, textAtoms, 2)
}

// TestBinPackAtomsRespectsBudget verifies the first-fit bucketing used for
// headingless runs.
func TestBinPackAtomsRespectsBudget(t *testing.T) {
	atoms := []atom{
		{kind: atomText, tokens: 100},
		{kind: atomText, tokens: 100},
		{kind: atomText, tokens: 100},
		{kind: atomText, tokens: 900}, // over budget alone
		{kind: atomText, tokens: 50},
	}
	buckets := binPackAtoms(atoms, 250)
	require.Len(t, buckets, 4)
	require.Equal(t, 200, totalTokens(buckets[0].chunks))
	require.Equal(t, 100, totalTokens(buckets[1].chunks))
	require.Equal(t, 900, totalTokens(buckets[2].chunks))
	require.Equal(t, 50, totalTokens(buckets[3].chunks))
}

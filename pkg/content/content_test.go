package content

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// S2. Markdown extraction from text with code fences.
func TestMarkdownExtractionWithCodeFence(t *testing.T) {
	input := "This is <https://example.com>:\n```lang\nBut this ndk://x/y/z is omitted!\n```\nHowever, ndk://sharepoint/SiteName/Documents/file1.txt is extracted."

	ct := Parse(input, ModeMarkdown, LinkPlain)

	var links []Part
	var codes []Part
	for _, p := range ct.Parts {
		switch p.Kind {
		case PartLink:
			links = append(links, p)
		case PartCode:
			codes = append(codes, p)
		}
	}

	require.Len(t, codes, 1)
	require.Contains(t, codes[0].Code, "ndk://x/y/z")
	require.Equal(t, "lang", codes[0].Language)

	require.Len(t, links, 2)
	require.Equal(t, LinkMarkdown, links[0].LinkMode)
	require.Equal(t, "https://example.com", links[0].Href.String())
	require.Equal(t, LinkPlain, links[1].LinkMode)
	require.Equal(t, "ndk://sharepoint/SiteName/Documents/file1.txt", links[1].Href.String())
}

func TestDataModeExtractsBareReferences(t *testing.T) {
	input := `{"url": "ndk://jira/issue/PROJ-1", "other": "https://example.com/a"}`
	ct := Parse(input, ModeData, LinkPlain)
	refs := ExtractReferences(input)
	require.Len(t, refs, 2)
	require.Equal(t, "ndk://jira/issue/PROJ-1", refs[0].String())
	require.Equal(t, "https://example.com/a", refs[1].String())
	require.Equal(t, input, ct.AsStr(false))
}

func TestCleaningRuleTrimsTrailingPunctuation(t *testing.T) {
	refs := ExtractReferences("See https://example.com/a, and https://example.com/b.")
	require.Len(t, refs, 2)
	require.Equal(t, "https://example.com/a", refs[0].String())
	require.Equal(t, "https://example.com/b", refs[1].String())
}

func TestCleaningRuleBalancesParens(t *testing.T) {
	refs := ExtractReferences("(see https://example.com/wiki_(disambiguation))")
	require.Len(t, refs, 1)
	require.Equal(t, "https://example.com/wiki_(disambiguation)", refs[0].String())
}

func TestCleaningRuleNdkStripsOnlyTrailingDot(t *testing.T) {
	refs := ExtractReferences("Cf. ndk://jira/issue/PROJ-1.")
	require.Len(t, refs, 1)
	require.Equal(t, "ndk://jira/issue/PROJ-1", refs[0].String())
}

func TestCitationShape(t *testing.T) {
	ct := Parse("See prior work [^ndk://jira/issue/PROJ-1|PROJ-1] for detail.", ModeMarkdown, LinkPlain)
	var link *Part
	for i, p := range ct.Parts {
		if p.Kind == PartLink {
			link = &ct.Parts[i]
		}
	}
	require.NotNil(t, link)
	require.Equal(t, LinkCitation, link.LinkMode)
	require.Equal(t, "PROJ-1", link.Label)
	require.Equal(t, "ndk://jira/issue/PROJ-1", link.Href.String())
}

func TestEmbedShape(t *testing.T) {
	ct := Parse("![a diagram](ndk://stub/-/dir/example/$media/figures/image.png)", ModeMarkdown, LinkPlain)
	require.Len(t, ct.Parts, 1)
	require.Equal(t, PartLink, ct.Parts[0].Kind)
	require.Equal(t, LinkEmbed, ct.Parts[0].LinkMode)
	ref, ok := ct.OnlyEmbed()
	require.True(t, ok)
	require.Equal(t, "ndk://stub/-/dir/example/$media/figures/image.png", ref.String())
}

func TestQuotedPlainShape(t *testing.T) {
	ct := Parse(`config source is "ndk://jira/issue/PROJ-1" by default`, ModeMarkdown, LinkPlain)
	var found bool
	for _, p := range ct.Parts {
		if p.Kind == PartLink {
			found = true
			require.Equal(t, LinkPlain, p.LinkMode)
			require.Equal(t, "ndk://jira/issue/PROJ-1", p.Href.String())
		}
	}
	require.True(t, found)
}

func TestHeadingAndPageMarkerRoundTrip(t *testing.T) {
	input := "# Title\n\nSome body text.\n\n12\n------------------------------------------------\n\n## Next"
	ct := Parse(input, ModeMarkdown, LinkPlain)

	var sawHeading, sawPage bool
	for _, p := range ct.Parts {
		if p.Kind == PartHeading && p.Text == "Title" {
			sawHeading = true
		}
		if p.Kind == PartPageNumber && p.PageNum == 12 {
			sawPage = true
		}
	}
	require.True(t, sawHeading)
	require.True(t, sawPage)
}

func TestAsStrContainsReferencesInOrder(t *testing.T) {
	input := "first ndk://jira/issue/PROJ-1 then https://example.com/b"
	ct := Parse(input, ModeData, LinkPlain)
	out := ct.AsStr(true)
	i1 := indexOf(out, "ndk://jira/issue/PROJ-1")
	i2 := indexOf(out, "https://example.com/b")
	require.True(t, i1 >= 0 && i2 >= 0 && i1 < i2)
}

func TestDepLinksAndDepEmbedsAreSortedAndDeduped(t *testing.T) {
	input := "a ndk://jira/issue/PROJ-2 b ndk://jira/issue/PROJ-1 c ndk://jira/issue/PROJ-1"
	ct := Parse(input, ModeData, LinkPlain)
	deps := ct.DepLinks()
	require.Len(t, deps, 2)
	require.Equal(t, "ndk://jira/issue/PROJ-1", deps[0].String())
	require.Equal(t, "ndk://jira/issue/PROJ-2", deps[1].String())
}

func TestMergeTakesLongerSeparator(t *testing.T) {
	joined := joinText("hello   ", SepNL, SepNLNL, "world")
	require.Equal(t, "hello\n\nworld", joined)
}

func TestMergeEmptySeparatorPreservesWhitespace(t *testing.T) {
	joined := joinText("hello ", SepNone, SepNone, " world")
	require.Equal(t, "hello  world", joined)
}

func TestAppendPartMergesAdjacentText(t *testing.T) {
	var parts []Part
	parts = appendPart(parts, textPart("a", SepNone, SepNL))
	parts = appendPart(parts, textPart("b", SepNL, SepNone))
	require.Len(t, parts, 1)
	require.Equal(t, "a\nb", parts[0].Text)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

package ingestion

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/ndk/internal/config"
	"github.com/ternarybob/ndk/pkg/uri"
)

func TestIngestPlainWrapsAsSingleChunk(t *testing.T) {
	res, err := Ingest(testResource(t), Fragment{Text: "hello world", Mode: ModePlain}, config.DefaultTunables(), nil)
	require.NoError(t, err)
	require.Len(t, res.Body.Chunks, 1)
	require.Equal(t, []int{0}, res.Body.Chunks[0].Indexes)
}

func TestIngestDataResolvesLinksAndRecordsRelations(t *testing.T) {
	target := uri.ResourceURI{Realm: "github", Subrealm: "ternarybob", Path: []string{"ndk", "issues", "1"}}
	resolve := func(ref string) (uri.ResourceURI, bool) {
		if ref == "https://github.com/ternarybob/ndk/issues/1" {
			return target, true
		}
		return uri.ResourceURI{}, false
	}

	frag := Fragment{Text: "see https://github.com/ternarybob/ndk/issues/1 for details", Mode: ModeData}
	res, err := Ingest(testResource(t), frag, config.DefaultTunables(), resolve)
	require.NoError(t, err)
	require.NotNil(t, res.Body)
	require.Len(t, res.Relations, 1)
	require.Equal(t, target.String(), res.Relations[0].Target.String())
}

func TestIngestMarkdownNormalizesHTMLSource(t *testing.T) {
	frag := Fragment{
		Text:         "<h1>Title</h1><p>Some <strong>body</strong> text.</p>",
		Mode:         ModeMarkdown,
		SourceIsHTML: true,
		BaseURL:      "https://example.com",
	}

	res, err := Ingest(testResource(t), frag, config.DefaultTunables(), nil)
	require.NoError(t, err)
	require.NotNil(t, res.Body)
	require.NotEmpty(t, res.Body.Chunks)
}

func TestIngestMarkdownProcessesBlobsAndChunks(t *testing.T) {
	frag := Fragment{
		Text: "# Title\n\nSome body text with an embed ![](blob://figures/chart.png) after it.",
		Mode: ModeMarkdown,
		Blobs: map[BlobKey]DataURI{
			"blob://figures/chart.png": {MimeType: "image/png", Data: encodedPNG(t, 256, 256, color.RGBA{R: 255, A: 255})},
		},
	}

	res, err := Ingest(testResource(t), frag, config.DefaultTunables(), nil)
	require.NoError(t, err)
	require.NotNil(t, res.Body)
	require.NotEmpty(t, res.Body.Media)
}

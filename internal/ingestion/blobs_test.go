package ingestion

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/ndk/internal/config"
	"github.com/ternarybob/ndk/pkg/uri"
)

func testResource(t *testing.T) uri.ResourceURI {
	t.Helper()
	return uri.ResourceURI{Realm: "stub", Subrealm: "-", Path: []string{"dir", "example"}}
}

func encodedPNG(t *testing.T, w, h int, fill color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessBlobsDiscardsZeroOccurrenceBlobs(t *testing.T) {
	data := encodedPNG(t, 100, 100, color.RGBA{R: 255, A: 255})
	blobs := map[BlobKey]DataURI{
		"blob://unused": {MimeType: "image/png", Data: data},
	}
	res, err := processBlobs(testResource(t), "no references here", blobs, config.DefaultTunables())
	require.NoError(t, err)
	require.Empty(t, res.Media)
}

func TestProcessBlobsDiscardsIdenticalContentAcrossKeys(t *testing.T) {
	data := encodedPNG(t, 100, 100, color.RGBA{R: 255, A: 255})
	blobs := map[BlobKey]DataURI{
		"blob://a": {MimeType: "image/png", Data: data},
		"blob://b": {MimeType: "image/png", Data: data},
	}
	text := "![](blob://a) text ![](blob://b) more ![](blob://a)"

	res, err := processBlobs(testResource(t), text, blobs, config.DefaultTunables())
	require.NoError(t, err)
	require.Empty(t, res.Media)
	require.NotContains(t, res.Text, "blob://a")
	require.NotContains(t, res.Text, "blob://b")
}

func TestProcessBlobsDiscardsUndersizedImages(t *testing.T) {
	data := encodedPNG(t, 8, 8, color.RGBA{G: 255, A: 255})
	blobs := map[BlobKey]DataURI{
		"blob://tiny": {MimeType: "image/png", Data: data},
	}
	text := "see ![](blob://tiny) here"

	tun := config.DefaultTunables()
	res, err := processBlobs(testResource(t), text, blobs, tun)
	require.NoError(t, err)
	require.Empty(t, res.Media)
}

func TestProcessBlobsKeepsValidImageAndRewritesURI(t *testing.T) {
	data := encodedPNG(t, 256, 256, color.RGBA{B: 255, A: 255})
	blobs := map[BlobKey]DataURI{
		"blob://figures/chart.png": {MimeType: "image/png", Data: data},
	}
	text := "see ![](blob://figures/chart.png) here"

	res, err := processBlobs(testResource(t), text, blobs, config.DefaultTunables())
	require.NoError(t, err)
	require.Len(t, res.Media, 1)
	require.Equal(t, "image/png", res.Media[0].MimeType)
	require.NotContains(t, res.Text, "blob://figures/chart.png")
	require.Contains(t, res.Text, res.Media[0].URI.String())
}

func TestProcessBlobsDownscalesOversizedImageAndKeepsOriginalFile(t *testing.T) {
	data := encodedPNG(t, 4096, 2048, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	blobs := map[BlobKey]DataURI{
		"blob://big": {MimeType: "image/png", Data: data},
	}
	text := "![](blob://big)"

	res, err := processBlobs(testResource(t), text, blobs, config.DefaultTunables())
	require.NoError(t, err)
	require.Len(t, res.Media, 1)
	require.Len(t, res.Files, 1)
	require.Less(t, len(res.Media[0].Blob), len(data))
	require.Equal(t, data, res.Files[0].DownloadURL.Data)
}

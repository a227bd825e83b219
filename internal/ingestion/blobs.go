package ingestion

import (
	"bytes"
	"crypto/sha256"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/ternarybob/ndk/internal/config"
	"github.com/ternarybob/ndk/pkg/bundle"
	"github.com/ternarybob/ndk/pkg/uri"
)

func init() {
	image.RegisterFormat("webp", "RIFF????WEBP", webp.Decode, webp.DecodeConfig)
}

// canonicalImageMime is the MIME every surviving embed is re-encoded to, so
// a downstream inference collaborator always receives one image format.
const canonicalImageMime = "image/png"

var supportedImageMimes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

var pathComponent = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// blobResult is the outcome of processBlobs: the text with occurrences
// substituted, the surviving media, and any original-resolution files
// produced alongside a downscaled embed.
type blobResult struct {
	Text  string
	Media []bundle.Media
	Files []bundle.BundleFile
}

// processBlobs implements §4.6's three-step blob pipeline: occurrence
// counting + content dedup, MIME/size validation with downscale, and
// occurrence substitution.
func processBlobs(resource uri.ResourceURI, text string, blobs map[BlobKey]DataURI, tun config.Tunables) (blobResult, error) {
	occurrences := map[BlobKey]int{}
	for key := range blobs {
		occurrences[key] = strings.Count(text, string(key))
	}

	dup := duplicateContentKeys(blobs)

	keys := make([]BlobKey, 0, len(blobs))
	for key := range blobs {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	singleImageFragment := len(blobs) == 1 && strings.TrimSpace(strings.ReplaceAll(text, string(keys[0]), "")) == ""

	result := blobResult{Text: text}
	mediaIdx := 0

	for _, key := range keys {
		blob := blobs[key]
		if occurrences[key] == 0 || dup[key] {
			result.Text = strings.ReplaceAll(result.Text, string(key), anchorFragment(key))
			continue
		}

		if !supportedImageMimes[blob.MimeType] {
			result.Text = strings.ReplaceAll(result.Text, string(key), anchorFragment(key))
			continue
		}

		cfg, _, err := image.DecodeConfig(bytes.NewReader(blob.Data))
		if err != nil {
			result.Text = strings.ReplaceAll(result.Text, string(key), anchorFragment(key))
			continue
		}

		minSide := cfg.Width
		if cfg.Height < minSide {
			minSide = cfg.Height
		}
		if minSide < tun.ImageMinSidePx && !singleImageFragment {
			result.Text = strings.ReplaceAll(result.Text, string(key), anchorFragment(key))
			continue
		}

		embedData := blob.Data
		var file *bundle.BundleFile
		if cfg.Width > tun.ImageMaxSidePx || cfg.Height > tun.ImageMaxSidePx {
			downscaled, err := downscale(blob.Data, tun.ImageMaxSidePx)
			if err == nil {
				mediaURI, uerr := mediaURIFor(resource, key, mediaIdx)
				if uerr == nil {
					file = &bundle.BundleFile{
						URI:         mediaURI,
						MimeType:    detectMime(blob.Data),
						DownloadURL: bundle.DownloadURL{Kind: bundle.DownloadData, Data: blob.Data},
					}
				}
				embedData = downscaled
			}
		}

		reencoded, err := reencodePNG(embedData)
		if err != nil {
			reencoded = embedData
		}

		mediaURI, err := mediaURIFor(resource, key, mediaIdx)
		if err != nil {
			result.Text = strings.ReplaceAll(result.Text, string(key), anchorFragment(key))
			continue
		}
		mediaIdx++

		m := bundle.Media{URI: mediaURI, MimeType: canonicalImageMime, Blob: reencoded}
		result.Media = append(result.Media, m)
		if file != nil {
			result.Files = append(result.Files, *file)
		}

		result.Text = strings.ReplaceAll(result.Text, string(key), mediaURI.String())
	}

	return result, nil
}

// duplicateContentKeys reports, for every key whose data is byte-identical
// to at least one other blob's data, that the key must be discarded — §4.6
// step 1 discards every blob sharing content with another, not just all
// but one survivor.
func duplicateContentKeys(blobs map[BlobKey]DataURI) map[BlobKey]bool {
	byHash := map[[32]byte][]BlobKey{}
	for key, blob := range blobs {
		h := sha256.Sum256(blob.Data)
		byHash[h] = append(byHash[h], key)
	}
	dup := map[BlobKey]bool{}
	for _, keys := range byHash {
		if len(keys) > 1 {
			for _, k := range keys {
				dup[k] = true
			}
		}
	}
	return dup
}

func anchorFragment(key BlobKey) string {
	return "#discarded-" + sanitizeSlug(string(key))
}

func detectMime(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "application/octet-stream"
	}
	return kind.MIME.Value
}

func reencodePNG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// downscale fits img within maxSide on its longer side, preserving aspect
// ratio, re-encoding as PNG.
func downscale(data []byte, maxSide int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	scale := float64(maxSide) / float64(maxInt(w, h))
	newW, newH := int(float64(w)*scale), int(float64(h)*scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// mediaURIFor derives a stable media observable URI from a blob's
// occurrence key, falling back to a sequential index when the key's
// characters don't form valid path components.
func mediaURIFor(resource uri.ResourceURI, key BlobKey, idx int) (uri.KnowledgeURI, error) {
	slug := sanitizeSlug(string(key))
	parts := strings.Split(slug, "/")
	valid := len(parts) > 0
	for _, p := range parts {
		if p == "" || !pathComponent.MatchString(p) {
			valid = false
			break
		}
	}
	if !valid {
		parts = []string{"blob-" + strconv.Itoa(idx)}
	}
	return uri.ChildObservable(resource, uri.KindMedia, parts...)
}

func sanitizeSlug(s string) string {
	s = strings.TrimPrefix(s, "blob://")
	s = strings.TrimPrefix(s, "data://")
	return s
}

package rendering

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/ndk/pkg/content"
	"github.com/ternarybob/ndk/pkg/uri"
)

// LLMPartKind discriminates the two item shapes as_llm_inline yields.
type LLMPartKind int

const (
	LLMText LLMPartKind = iota
	LLMBlob
)

// LLMPart is one item of an as_llm_inline alternation: either a text run or
// a media blob, never both.
type LLMPart struct {
	Kind LLMPartKind
	Text string
	Blob Blob
}

// AsLLMInline walks r's rendered parts, yielding an alternation of text runs
// and media blobs per §4.4. A blob whose MimeType is not in supportsMedia, or
// that would push the running blob count past limitMedia, is demoted to a
// textual placeholder built from its description instead. Adjacent text runs
// are joined with a single blank line.
func AsLLMInline(r Rendered, supportsMedia map[string]bool, limitMedia int) []LLMPart {
	blobByURI := indexBlobs(r.Blobs)
	var out []LLMPart
	var textRun []content.Part
	shown := 0

	flushText := func() {
		if len(textRun) == 0 {
			return
		}
		s := strings.TrimSpace(content.FromParts(textRun).AsStr(true))
		textRun = nil
		if s == "" {
			return
		}
		appendText(&out, s)
	}

	for _, p := range r.Parts {
		blob, isBlob := blobForPart(p, blobByURI)
		if !isBlob {
			textRun = append(textRun, p)
			continue
		}
		if !supportsMedia[blob.MimeType] || shown >= limitMedia {
			flushText()
			appendText(&out, placeholderText(blob))
			continue
		}
		flushText()
		out = append(out, LLMPart{Kind: LLMBlob, Blob: blob})
		shown++
	}
	flushText()
	return out
}

// AsLLMSplit renders the same alternation as AsLLMInline but returns it as a
// single string — each surviving blob replaced in place by a
// "![](<uri>)" reference — plus the deduplicated (by URI), URI-sorted list
// of blobs that reference points at.
func AsLLMSplit(r Rendered, supportsMedia map[string]bool, limitMedia int) (string, []Blob) {
	blobByURI := indexBlobs(r.Blobs)
	var sb strings.Builder
	seen := map[string]bool{}
	var blobs []Blob
	shown := 0

	write := func(s string) {
		if s == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(s)
	}

	var textRun []content.Part
	flushText := func() {
		if len(textRun) == 0 {
			return
		}
		s := strings.TrimSpace(content.FromParts(textRun).AsStr(true))
		textRun = nil
		write(s)
	}

	for _, p := range r.Parts {
		blob, isBlob := blobForPart(p, blobByURI)
		if !isBlob {
			textRun = append(textRun, p)
			continue
		}
		if !supportsMedia[blob.MimeType] || shown >= limitMedia {
			flushText()
			write(placeholderText(blob))
			continue
		}
		flushText()
		write(fmt.Sprintf("![](%s)", blob.URI.String()))
		shown++
		key := blob.URI.String()
		if !seen[key] {
			seen[key] = true
			blobs = append(blobs, blob)
		}
	}
	flushText()

	sort.Slice(blobs, func(i, j int) bool { return blobs[i].URI.String() < blobs[j].URI.String() })
	return sb.String(), blobs
}

func appendText(out *[]LLMPart, s string) {
	n := len(*out)
	if n > 0 && (*out)[n-1].Kind == LLMText {
		(*out)[n-1].Text = (*out)[n-1].Text + "\n\n" + s
		return
	}
	*out = append(*out, LLMPart{Kind: LLMText, Text: s})
}

func placeholderText(b Blob) string {
	if b.Placeholder != "" {
		return b.Placeholder
	}
	if b.Description != "" {
		return fmt.Sprintf("[media: %s]", b.Description)
	}
	return fmt.Sprintf("[media: %s]", b.URI.String())
}

func indexBlobs(blobs []Blob) map[string]Blob {
	m := make(map[string]Blob, len(blobs))
	for _, b := range blobs {
		m[b.URI.String()] = b
	}
	return m
}

// blobForPart recognizes the blobMarker link parts render.go leaves behind
// at a resolved blob's position in the part stream.
func blobForPart(p content.Part, blobByURI map[string]Blob) (Blob, bool) {
	if p.Kind != content.PartLink || p.LinkMode != content.LinkEmbed {
		return Blob{}, false
	}
	if p.Href.Kind != uri.ReferenceKnowledge {
		return Blob{}, false
	}
	b, ok := blobByURI[p.Href.Knowledge.String()]
	return b, ok
}

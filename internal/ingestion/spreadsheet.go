package ingestion

import (
	"fmt"
	"strings"

	"github.com/ternarybob/ndk/internal/config"
	"github.com/ternarybob/ndk/pkg/bundle"
	"github.com/ternarybob/ndk/pkg/content"
	"github.com/ternarybob/ndk/pkg/tokens"
	"github.com/ternarybob/ndk/pkg/uri"
)

const sheetBoundary = "\n\n## "

// sheet is one "## Name" section of a spreadsheet-mode fragment.
type sheet struct {
	Name string
	Text string
}

// splitSheets splits text on the sheetBoundary convention. A fragment with
// no boundary is treated as a single unnamed sheet.
func splitSheets(text string) []sheet {
	if !strings.Contains(text, sheetBoundary) {
		return []sheet{{Text: text}}
	}

	// Normalize so every sheet (including the first) starts at a boundary
	// marker, then split on it.
	normalized := text
	if !strings.HasPrefix(normalized, "## ") {
		if idx := strings.Index(normalized, sheetBoundary); idx >= 0 {
			normalized = normalized[:idx] + sheetBoundary + normalized[idx+2:]
		}
	}

	raw := strings.Split(normalized, sheetBoundary)
	var sheets []sheet
	for _, block := range raw {
		block = strings.TrimPrefix(block, "## ")
		if strings.TrimSpace(block) == "" {
			continue
		}
		name, body, _ := strings.Cut(block, "\n")
		sheets = append(sheets, sheet{Name: strings.TrimSpace(name), Text: strings.TrimLeft(body, "\n")})
	}
	return sheets
}

// ingestSpreadsheet implements §4.6's spreadsheet mode: small or
// single-sheet fragments fall through to the data-mode path into a single
// chunk; otherwise each sheet becomes its own trimmed chunk with a section
// heading.
func ingestSpreadsheet(resource uri.ResourceURI, frag Fragment, tun config.Tunables) (Result, error) {
	sheets := splitSheets(frag.Text)

	if tokens.Estimate(frag.Text) <= tun.SpreadsheetThreshold || len(sheets) <= 1 {
		return ingestData(resource, Fragment{Text: frag.Text, Mode: ModeData}, tun, nil)
	}

	bodyURI, err := uri.ChildObservable(resource, uri.KindBody)
	if err != nil {
		return Result{}, err
	}

	var chunks []bundle.Chunk
	var sections []bundle.Section
	for i, sh := range sheets {
		trimmed, err := shorten(sh.Text, tun.SpreadsheetChunkTrimmed, tun.SpreadsheetChunkTrimmed)
		if err != nil {
			return Result{}, err
		}
		chunkURI, err := uri.ChildObservable(resource, uri.KindChunk, fmt.Sprintf("%02d", i))
		if err != nil {
			return Result{}, err
		}
		chunks = append(chunks, bundle.Chunk{
			URI:         chunkURI,
			Indexes:     []int{i},
			Description: sh.Name,
			Text:        content.FromParts([]content.Part{{Kind: content.PartText, Text: trimmed}}),
		})
		if sh.Name != "" {
			sections = append(sections, bundle.Section{Indexes: []int{i}, Heading: sh.Name})
		}
	}

	return Result{Body: &bundle.BundleBody{URI: bodyURI, Chunks: chunks, Sections: sections}}, nil
}


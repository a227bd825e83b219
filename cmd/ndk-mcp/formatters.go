package main

import (
	"fmt"
	"strings"

	"github.com/ternarybob/ndk/internal/executor"
	"github.com/ternarybob/ndk/pkg/bundle"
)

// formatResources formats an executor.Resources bundle as markdown, the
// shape an MCP client renders directly in a chat transcript.
func formatResources(out executor.Resources) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Resources (%d resolved, %d errors)\n\n", len(out.Resources), len(out.Errors)))

	for _, r := range out.Resources {
		sb.WriteString(fmt.Sprintf("### %s\n", r.URI.String()))
		for _, b := range r.Bundles {
			sb.WriteString(formatBundle(b))
		}
		for _, oe := range r.ObservationErrors {
			sb.WriteString(fmt.Sprintf("**Observation error** (%s): %s\n", oe.Observable.String(), oe.Reason))
		}
		for _, l := range r.Labels {
			if len(l.Labels) > 0 {
				sb.WriteString(fmt.Sprintf("**Labels:** %s\n", strings.Join(l.Labels, ", ")))
			}
		}
		sb.WriteString("\n---\n\n")
	}

	for _, e := range out.Errors {
		sb.WriteString(fmt.Sprintf("**Error:** %s: %s\n", e.Resource.String(), e.Reason))
	}

	if len(out.Relations) > 0 {
		sb.WriteString(fmt.Sprintf("\n**Relations:** %d\n", len(out.Relations)))
	}

	return sb.String()
}

func formatBundle(b bundle.Bundle) string {
	var sb strings.Builder
	switch b.Kind {
	case bundle.KindBody:
		for _, c := range b.Body.Chunks {
			sb.WriteString(c.Text.AsStr(false))
			sb.WriteString("\n")
		}
	case bundle.KindCollection:
		sb.WriteString(fmt.Sprintf("Collection of %d results:\n", len(b.Collection.Results)))
		for _, res := range b.Collection.Results {
			sb.WriteString(fmt.Sprintf("- %s\n", res.String()))
		}
	case bundle.KindFile:
		sb.WriteString(fmt.Sprintf("File: %s (%s)\n", b.File.Description, b.File.MimeType))
	case bundle.KindPlain:
		sb.WriteString(b.Plain.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

package content

import (
	"fmt"
	"strings"
)

// AsStr serializes parts by walking the list and interleaving the
// effective separator between neighbours using the merge rule. When
// ignorePlain is false and a plain cache is present, it is returned
// directly instead of reconstructing the string from parts.
func (c ContentText) AsStr(ignorePlain bool) string {
	if !ignorePlain && c.plain != nil {
		return *c.plain
	}
	if len(c.Parts) == 0 {
		return ""
	}
	acc := renderPart(c.Parts[0])
	for i := 1; i < len(c.Parts); i++ {
		acc = joinText(acc, c.Parts[i-1].RSep, c.Parts[i].LSep, renderPart(c.Parts[i]))
	}
	return acc
}

func renderPart(p Part) string {
	switch p.Kind {
	case PartText:
		return p.Text
	case PartHeading:
		return strings.Repeat("#", p.Level) + " " + p.Text
	case PartCode:
		var b strings.Builder
		b.WriteString(p.Fence)
		b.WriteString(p.Language)
		b.WriteByte('\n')
		b.WriteString(p.Code)
		b.WriteByte('\n')
		b.WriteString(p.Fence)
		return b.String()
	case PartPageNumber:
		return fmt.Sprintf("%d\n%s", p.PageNum, strings.Repeat("-", 48))
	case PartLink:
		return renderLink(p)
	default:
		return ""
	}
}

func renderLink(p Part) string {
	href := p.Href.String()
	switch p.LinkMode {
	case LinkCitation:
		if p.Label != "" {
			return fmt.Sprintf("[^%s|%s]", href, p.Label)
		}
		return fmt.Sprintf("[^%s]", href)
	case LinkEmbed:
		return fmt.Sprintf("![%s](%s)", p.Label, href)
	case LinkMarkdown:
		if p.Label != "" {
			return fmt.Sprintf("[%s](%s)", p.Label, href)
		}
		return fmt.Sprintf("<%s>", href)
	case LinkPlain:
		return href
	default:
		return href
	}
}

// chooseFence picks the shortest backtick fence that does not collide with
// code, falling back to tildes.
func chooseFence(code string) string {
	for _, f := range []string{"```", "````", "`````"} {
		if !strings.Contains(code, f) {
			return f
		}
	}
	return "~~~"
}

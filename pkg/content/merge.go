package content

// appendPart appends p to parts, merging it into the last element when
// both are Text parts (per the "two adjacent Text parts are merged into
// one" rule).
func appendPart(parts []Part, p Part) []Part {
	if len(parts) > 0 {
		if merged, ok := tryMergeText(parts[len(parts)-1], p); ok {
			parts[len(parts)-1] = merged
			return parts
		}
	}
	return append(parts, p)
}

func tryMergeText(prev, next Part) (Part, bool) {
	if prev.Kind != PartText || next.Kind != PartText {
		return Part{}, false
	}
	return textPart(joinText(prev.Text, prev.RSep, next.LSep, next.Text), prev.LSep, next.RSep), true
}

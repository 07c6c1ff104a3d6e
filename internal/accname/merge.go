package accname

import "strings"

// Sources are the per-source texts of one element.
type Sources struct {
	Direct string
	Slot   string
	Shadow string
	Pseudo string
}

// Merge combines the sources into the element's accessible text.
//
// Direct text comes first. Slot text follows unless it equals the direct
// text, and shadow text follows unless it equals either of those. Each
// source is compared only against the ones before it. When neither slot nor
// shadow text exists the direct text is kept as is. Pseudo-element content
// is appended last.
func Merge(s Sources) string {
	t := strings.TrimSpace(s.Direct)
	slot := strings.TrimSpace(s.Slot)
	shadow := strings.TrimSpace(s.Shadow)

	text := t
	if slot != "" || shadow != "" {
		var parts []string
		if t != "" {
			parts = append(parts, t)
		}
		if slot != "" && slot != t {
			parts = append(parts, slot)
		}
		if shadow != "" && shadow != t && shadow != slot {
			parts = append(parts, shadow)
		}
		text = strings.Join(parts, " ")
	}
	if p := strings.TrimSpace(s.Pseudo); p != "" {
		if text == "" {
			text = p
		} else {
			text += " " + p
		}
	}
	return text
}

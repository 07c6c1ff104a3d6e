package model

import "strings"

// FilterElements returns the elements matching every given filter: kind,
// case-insensitive text, and bounding box overlap. An empty filter matches
// everything. Elements without a layout box never match a bbox filter.
// Sequence and kind ids are preserved.
func FilterElements(elements []InteractiveElement, kinds []Kind, text string, bbox *Rect) []InteractiveElement {
	if len(kinds) == 0 && text == "" && bbox == nil {
		return elements
	}
	kindSet := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		kindSet[k] = true
	}
	textLower := strings.ToLower(text)

	result := []InteractiveElement{}
	for _, el := range elements {
		if len(kindSet) > 0 && !kindSet[elementKind(el)] {
			continue
		}
		if text != "" && !textMatchesElement(el, textLower) {
			continue
		}
		if bbox != nil && (el.BoundingBox == nil || !boundsIntersect(*el.BoundingBox, *bbox)) {
			continue
		}
		result = append(result, el)
	}
	return result
}

func elementKind(el InteractiveElement) Kind {
	if el.IsButton {
		return KindButton
	}
	return KindLink
}

func textMatchesElement(el InteractiveElement, textLower string) bool {
	for _, s := range []string{el.AccessibleText, el.AriaLabel, el.AriaLabelledByText, el.Href} {
		if strings.Contains(strings.ToLower(s), textLower) {
			return true
		}
	}
	for _, img := range el.ImageContent {
		switch {
		case img.Img != nil && strings.Contains(strings.ToLower(img.Img.AltText), textLower):
			return true
		case img.SVG != nil && strings.Contains(strings.ToLower(img.SVG.TitleOrDesc), textLower):
			return true
		}
	}
	return false
}

// boundsIntersect checks if two rectangles overlap.
func boundsIntersect(a, b Rect) bool {
	ax1, ay1, ax2, ay2 := a.X, a.Y, a.X+a.Width, a.Y+a.Height
	bx1, by1, bx2, by2 := b.X, b.Y, b.X+b.Width, b.Y+b.Height
	return ax1 < bx2 && ax2 > bx1 && ay1 < by2 && ay2 > by1
}

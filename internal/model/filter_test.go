package model

import "testing"

func sampleElements() []InteractiveElement {
	return []InteractiveElement{
		{SequenceID: 0, KindID: 1, Tag: "a", AccessibleText: "Home", BoundingBox: &Rect{X: 0, Y: 0, Width: 50, Height: 20}},
		{SequenceID: 1, KindID: 1, Tag: "button", IsButton: true, AriaLabel: "Close dialog", BoundingBox: &Rect{X: 200, Y: 200, Width: 20, Height: 20}},
		{SequenceID: 2, KindID: 2, Tag: "a", ImageContent: []ImageDescriptor{{Type: ImageTypeImg, Img: &ImgInfo{AltText: "Company logo"}}}},
		{SequenceID: 3, KindID: 2, Tag: "button", IsButton: true, ImageContent: []ImageDescriptor{{Type: ImageTypeSVG, SVG: &SVGInfo{TitleOrDesc: "Search"}}}, BoundingBox: &Rect{X: 90, Y: 90, Width: 20, Height: 20}},
	}
}

func TestFilterElements_NoFilters(t *testing.T) {
	els := sampleElements()
	if got := FilterElements(els, nil, "", nil); len(got) != len(els) {
		t.Errorf("expected %d elements, got %d", len(els), len(got))
	}
}

func TestFilterElements_Kind(t *testing.T) {
	got := FilterElements(sampleElements(), []Kind{KindButton}, "", nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(got))
	}
	if got[0].SequenceID != 1 || got[1].SequenceID != 3 {
		t.Errorf("ids should be preserved, got %d and %d", got[0].SequenceID, got[1].SequenceID)
	}
}

func TestFilterElements_Text(t *testing.T) {
	tests := []struct {
		text string
		want []int
	}{
		{"home", []int{0}},
		{"CLOSE", []int{1}},
		{"logo", []int{2}},
		{"search", []int{3}},
		{"nothing", nil},
	}
	for _, tt := range tests {
		got := FilterElements(sampleElements(), nil, tt.text, nil)
		if len(got) != len(tt.want) {
			t.Errorf("text %q: expected %v, got %d elements", tt.text, tt.want, len(got))
			continue
		}
		for i, el := range got {
			if el.SequenceID != tt.want[i] {
				t.Errorf("text %q: expected id %d, got %d", tt.text, tt.want[i], el.SequenceID)
			}
		}
	}
}

func TestFilterElements_BBox(t *testing.T) {
	bbox := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	got := FilterElements(sampleElements(), nil, "", &bbox)
	if len(got) != 2 {
		t.Fatalf("expected inside + overlapping elements, got %d", len(got))
	}
	if got[0].SequenceID != 0 || got[1].SequenceID != 3 {
		t.Errorf("unexpected ids %d %d", got[0].SequenceID, got[1].SequenceID)
	}
}

func TestBoundsIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"overlapping", Rect{X: 0, Y: 0, Width: 100, Height: 100}, Rect{X: 50, Y: 50, Width: 100, Height: 100}, true},
		{"adjacent_no_overlap", Rect{X: 0, Y: 0, Width: 100, Height: 100}, Rect{X: 100, Y: 0, Width: 100, Height: 100}, false},
		{"contained", Rect{X: 0, Y: 0, Width: 200, Height: 200}, Rect{X: 50, Y: 50, Width: 10, Height: 10}, true},
		{"no_overlap", Rect{X: 0, Y: 0, Width: 10, Height: 10}, Rect{X: 20, Y: 20, Width: 10, Height: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := boundsIntersect(tt.a, tt.b); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

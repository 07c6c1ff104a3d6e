package svgprep

import (
	"strings"
	"testing"

	"github.com/mj1618/clickaudit/internal/dom"
)

func mustParse(t *testing.T, src string) *dom.Node {
	t.Helper()
	svg, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return svg
}

func firstTag(svg *dom.Node, tag string) *dom.Node {
	return dom.Find(svg, false, func(n *dom.Node) bool { return n.IsElement(tag) })
}

func TestParse_NoSVG(t *testing.T) {
	if _, err := Parse("<div>not an svg</div>"); err == nil {
		t.Error("expected error for markup without svg")
	}
}

func TestParseViewBox(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want ViewBox
	}{
		{"0 0 24 24", true, ViewBox{0, 0, 24, 24}},
		{"0,0,100,50", true, ViewBox{0, 0, 100, 50}},
		{" -1 -1  10 20 ", true, ViewBox{-1, -1, 10, 20}},
		{"0 0 0 10", false, ViewBox{}},
		{"0 0 10", false, ViewBox{}},
		{"a b c d", false, ViewBox{}},
	}
	for _, tt := range tests {
		got, ok := ParseViewBox(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseViewBox(%q) = %+v,%v want %+v,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSanitize_Namespace(t *testing.T) {
	for _, ns := range []string{"https://www.w3.org/2000/svg", "http://www.w3.org/2000/svg", "https://w3.org/2000/svg"} {
		out := Sanitize(`<svg xmlns="` + ns + `" width="10" height="10"></svg>`)
		if !strings.Contains(out, `xmlns="http://www.w3.org/2000/svg"`) {
			t.Errorf("namespace %s not normalized: %s", ns, out)
		}
	}
}

func TestSanitize_InjectsXLink(t *testing.T) {
	out := Sanitize(`<svg width="10" height="10"><use xlink:href="#a"></use></svg>`)
	if !strings.Contains(out, `xmlns:xlink="http://www.w3.org/1999/xlink"`) {
		t.Errorf("xlink declaration missing: %s", out)
	}
	if strings.Count(out, "xmlns:xlink") != 1 {
		t.Errorf("xlink declared more than once: %s", out)
	}
}

func TestSanitize_StructuralFixes(t *testing.T) {
	src := `<svg viewBox="0 0 48 24" width="100%" height="100%" preserveAspectRatio="none"><foreignObject><div>x</div></foreignObject><path d="M0 0h1"/></svg>`
	svg := mustParse(t, Sanitize(src))
	if svg.HasAttr("preserveAspectRatio") {
		t.Error("preserveAspectRatio=none should be dropped")
	}
	if firstTag(svg, "foreignObject") != nil {
		t.Error("foreignObject should be stripped")
	}
	if firstTag(svg, "path") == nil {
		t.Error("path should remain")
	}
	if w, h := svg.AttrOr("width", ""), svg.AttrOr("height", ""); w != "48" || h != "24" {
		t.Errorf("expected 48x24 from viewBox, got %sx%s", w, h)
	}
}

func TestSanitize_KeepsOtherAspectRatio(t *testing.T) {
	svg := mustParse(t, Sanitize(`<svg width="1" height="1" preserveAspectRatio="xMidYMid meet"></svg>`))
	if svg.AttrOr("preserveAspectRatio", "") != "xMidYMid meet" {
		t.Error("non-none preserveAspectRatio should be kept")
	}
}

func TestSanitize_Dimensions(t *testing.T) {
	tests := []struct {
		name  string
		attrs string
		w, h  string
	}{
		{"viewbox_only_wide", `viewBox="0 0 400 100"`, "200", "50"},
		{"viewbox_only_tall", `viewBox="0 0 10 20"`, "100", "200"},
		{"width_and_viewbox", `width="30" viewBox="0 0 10 20"`, "30", "60"},
		{"height_and_viewbox", `height="30px" viewBox="0 0 20 10"`, "60", "30px"},
		{"nothing", ``, "24", "24"},
		{"width_only", `width="16"`, "16", "16"},
		{"explicit", `width="5" height="7" viewBox="0 0 100 100"`, "5", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg := mustParse(t, Sanitize(`<svg `+tt.attrs+`></svg>`))
			if w, h := svg.AttrOr("width", ""), svg.AttrOr("height", ""); w != tt.w || h != tt.h {
				t.Errorf("expected %sx%s, got %sx%s", tt.w, tt.h, w, h)
			}
		})
	}
}

func TestSanitize_FallsBackOnFailure(t *testing.T) {
	src := "<p>plain</p>"
	if got := Sanitize(src); got != src {
		t.Errorf("expected source back, got %q", got)
	}
	if got := Sanitize(""); got != "" {
		t.Errorf("expected empty back, got %q", got)
	}
}

func TestFixColors_CurrentColorRoundTrip(t *testing.T) {
	once := FixColors(`<svg viewBox="0 0 24 24"><path fill="currentColor" d="M0 0"/></svg>`, DefaultFixedColor)
	path := firstTag(mustParse(t, once), "path")
	if got := path.AttrOr("fill", ""); got != DefaultFixedColor {
		t.Errorf("expected fill %s, got %q", DefaultFixedColor, got)
	}
	if twice := FixColors(once, DefaultFixedColor); twice != once {
		t.Errorf("fixed-color pass not idempotent:\n%s\n%s", once, twice)
	}
}

func TestFixColors(t *testing.T) {
	tests := []struct {
		name       string
		shape      string
		wantFill   string
		wantStroke string
	}{
		{"unset_fill", `<rect/>`, "#123456", ""},
		{"inherit_fill", `<circle fill="inherit"/>`, "#123456", ""},
		{"explicit_fill_kept", `<path fill="red"/>`, "red", ""},
		{"none_fill_gets_stroke", `<path fill="none"/>`, "none", "#123456"},
		{"current_stroke", `<path fill="red" stroke="currentColor"/>`, "red", "#123456"},
		{"explicit_stroke_kept", `<path fill="none" stroke="blue"/>`, "none", "blue"},
		{"line_gets_stroke", `<line/>`, "#123456", "#123456"},
		{"polyline_gets_stroke", `<polyline fill="red"/>`, "red", "#123456"},
		{"style_fill_current", `<path style="fill:currentColor;opacity:.5"/>`, "#123456", ""},
		{"style_fill_none", `<ellipse style="fill: none"/>`, "none", "#123456"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FixColors(`<svg>`+tt.shape+`</svg>`, "#123456")
			svg := mustParse(t, out)
			el := dom.Find(svg, false, func(n *dom.Node) bool { return n.IsElement(shapeTags...) })
			fill, _ := paint(el, "fill")
			stroke, _ := paint(el, "stroke")
			if fill != tt.wantFill || stroke != tt.wantStroke {
				t.Errorf("expected fill=%q stroke=%q, got fill=%q stroke=%q (%s)", tt.wantFill, tt.wantStroke, fill, stroke, out)
			}
			if again := FixColors(out, "#123456"); again != out {
				t.Errorf("not idempotent: %s vs %s", out, again)
			}
		})
	}
}

func TestFixColors_IgnoresNonShapes(t *testing.T) {
	out := FixColors(`<svg><text>t</text><g></g></svg>`, DefaultFixedColor)
	if strings.Contains(out, DefaultFixedColor) {
		t.Errorf("non-shape elements should not be painted: %s", out)
	}
}

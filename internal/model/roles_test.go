package model

import "testing"

func TestIsCandidate(t *testing.T) {
	tests := []struct {
		tag     string
		role    string
		hasRole bool
		want    bool
	}{
		{"a", "", false, true},
		{"A", "", false, true},
		{"button", "", false, true},
		{"div", "button", true, true},
		{"span", "link", true, true},
		{"div", "Button", true, false},
		{"div", "menuitem", true, false},
		{"div", "", false, false},
		{"input", "", false, false},
	}
	for _, tt := range tests {
		if got := IsCandidate(tt.tag, tt.role, tt.hasRole); got != tt.want {
			t.Errorf("IsCandidate(%q, %q, %v) = %v, want %v", tt.tag, tt.role, tt.hasRole, got, tt.want)
		}
	}
}

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		tag, role string
		want      Kind
	}{
		{"button", "", KindButton},
		{"a", "button", KindButton},
		{"div", "button", KindButton},
		{"a", "", KindLink},
		{"span", "link", KindLink},
		{"button", "link", KindButton},
	}
	for _, tt := range tests {
		if got := ClassifyKind(tt.tag, tt.role); got != tt.want {
			t.Errorf("ClassifyKind(%q, %q) = %s, want %s", tt.tag, tt.role, got, tt.want)
		}
	}
}

func TestParseKinds(t *testing.T) {
	got := ParseKinds([]string{"Buttons", "lnk", "button", "bogus"})
	if len(got) != 2 || got[0] != KindButton || got[1] != KindLink {
		t.Errorf("unexpected kinds %v", got)
	}
	if got := ParseKinds(nil); len(got) != 0 {
		t.Errorf("expected no kinds, got %v", got)
	}
}

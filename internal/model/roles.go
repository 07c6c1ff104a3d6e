package model

import "strings"

// Kind is the class an interactive element is counted in.
type Kind string

const (
	KindButton Kind = "button"
	KindLink   Kind = "link"
)

// CandidateSelector is the CSS selector matching interactive elements.
const CandidateSelector = `a, button, [role="link"], [role="button"]`

// candidateTags and candidateRoles are the two halves of CandidateSelector.
var (
	candidateTags  = []string{"a", "button"}
	candidateRoles = []string{"link", "button"}
)

// IsCandidate reports whether an element with the given tag and role
// attribute is interactive. The role must match exactly, as an attribute
// selector does.
func IsCandidate(tag string, role string, hasRole bool) bool {
	for _, t := range candidateTags {
		if strings.EqualFold(tag, t) {
			return true
		}
	}
	if !hasRole {
		return false
	}
	for _, r := range candidateRoles {
		if role == r {
			return true
		}
	}
	return false
}

// ClassifyKind returns KindButton when the tag is button or the role is
// button, KindLink otherwise.
func ClassifyKind(tag, role string) Kind {
	if strings.EqualFold(tag, "button") || role == "button" {
		return KindButton
	}
	return KindLink
}

// ParseKinds normalizes user-supplied kind names. Plural and short forms
// are accepted; unknown names are dropped.
func ParseKinds(names []string) []Kind {
	seen := make(map[Kind]bool, len(names))
	var kinds []Kind
	for _, n := range names {
		var k Kind
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "button", "buttons", "btn":
			k = KindButton
		case "link", "links", "lnk", "a":
			k = KindLink
		default:
			continue
		}
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	return kinds
}

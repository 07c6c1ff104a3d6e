package browser

import "strings"

// DefaultConsentPhrases are the cookie banner button texts tried when no
// custom phrase matches.
var DefaultConsentPhrases = []string{
	"Accept",
	"Accept All",
	"Accept Cookies",
	"Accept All Cookies",
	"Accept Selected",
	"Accept Necessary",

	"Allow",
	"Allow All",
	"Allow Cookies",
	"Allow All Cookies",
	"Allow Selected",
	"Allow Necessary",

	"I Accept",
	"I Agree",
	"Agree",
	"Agree to All",
	"Agree to Cookies",
	"Agree to All Cookies",

	"OK",
	"Got it",
	"Continue",
	"Proceed",
	"Confirm",
	"Yes",
	"Yes, I agree",
	"Yes, accept all",

	"Accept Privacy Policy",
	"Accept Terms",
	"Accept Terms and Conditions",
	"Accept Privacy Settings",
	"Accept Cookie Policy",

	"Close",
	"Dismiss",
	"Close Banner",
	"Dismiss Banner",
	"Close Notice",
	"Dismiss Notice",

	"Accepter",
	"Accepter tout",
	"Accepter les cookies",
	"Accepter tous les cookies",
	"Zustimmen",
	"Alle akzeptieren",
	"Cookies akzeptieren",
	"Alle Cookies akzeptieren",
	"Aceptar",
	"Aceptar todo",
	"Aceptar cookies",
	"Aceptar todas las cookies",
}

// ConsentPhrases returns the phrases to try in order: custom first, then
// extra, then the defaults. Blank and repeated phrases are dropped.
func ConsentPhrases(custom string, extra []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		p = strings.TrimSpace(p)
		key := strings.ToLower(p)
		if p == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, p)
	}
	add(custom)
	for _, p := range extra {
		add(p)
	}
	for _, p := range DefaultConsentPhrases {
		add(p)
	}
	return out
}

// ChooseConsent picks which visible candidate text to click. Phrases are
// tried in order; for each one an exact case-insensitive match wins over a
// substring match. It returns -1 when nothing matches.
func ChooseConsent(candidates, phrases []string) int {
	norm := make([]string, len(candidates))
	for i, c := range candidates {
		norm[i] = strings.ToLower(strings.Join(strings.Fields(c), " "))
	}
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		for i, c := range norm {
			if c == p {
				return i
			}
		}
		for i, c := range norm {
			if strings.Contains(c, p) {
				return i
			}
		}
	}
	return -1
}

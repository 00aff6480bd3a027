// Package exclusion is the privacy gate of the capture pipeline. Its decision
// runs before any OCR or disk work; an excluded tick leaves no trace.
package exclusion

import "strings"

// Decision is the outcome of the exclusion check.
type Decision int

const (
	Allow Decision = iota
	Exclude
)

// String implements fmt.Stringer.
func (d Decision) String() string {
	if d == Exclude {
		return "exclude"
	}
	return "allow"
}

// incognitoTerms are matched against the window title when incognito
// detection is enabled. Fixed set, case-insensitive.
var incognitoTerms = []string{"incognito", "private browsing", "inprivate"}

// RuleSet is the externally-owned exclusion configuration. It is loaded fresh
// for every decision so rule edits take effect without restarting capture.
type RuleSet struct {
	// BundleIDs are excluded bundle identifiers (exact match).
	BundleIDs []string

	// TitleKeywords are excluded window-title substrings (case-insensitive).
	TitleKeywords []string

	// IgnoreIncognito treats private/incognito browser windows as excluded.
	IgnoreIncognito bool
}

// Decide applies the rule set to the foreground application identity.
// First match wins: bundle id, then title keywords, then incognito terms.
// A nil window title short-circuits the title checks to allow (an unknown
// title cannot be evaluated), but the bundle-id check still applies.
func Decide(appName, bundleID, windowTitle *string, rules RuleSet) Decision {
	if bundleID != nil {
		for _, excluded := range rules.BundleIDs {
			if *bundleID == excluded {
				return Exclude
			}
		}
	}

	if windowTitle == nil {
		return Allow
	}
	title := strings.ToLower(*windowTitle)

	for _, keyword := range rules.TitleKeywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		if strings.Contains(title, strings.ToLower(keyword)) {
			return Exclude
		}
	}

	if rules.IgnoreIncognito {
		for _, term := range incognitoTerms {
			if strings.Contains(title, term) {
				return Exclude
			}
		}
	}

	return Allow
}

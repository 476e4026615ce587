package madara

import "time"

const defaultSpacing = 100 * time.Millisecond

// siteSpec describes one known Madara-theme site. Spacing is slower for
// sites that rate-limit aggressively.
type siteSpec struct {
	name    string
	baseURL string
	spacing time.Duration
}

var knownSites = []siteSpec{
	{name: "toonily", baseURL: "https://toonily.com", spacing: defaultSpacing},
	{name: "manhuaplus", baseURL: "https://manhuaplus.com", spacing: defaultSpacing},
	{name: "mangaclash", baseURL: "https://mangaclash.com", spacing: 200 * time.Millisecond},
	{name: "1stkissmanga", baseURL: "https://1stkissmanga.me", spacing: 500 * time.Millisecond},
	{name: "zinmanga", baseURL: "https://zinmanga.com", spacing: 200 * time.Millisecond},
}

// Fleet returns an adapter per known Madara site.
func Fleet() []*Site {
	out := make([]*Site, 0, len(knownSites))
	for _, spec := range knownSites {
		out = append(out, New(spec.name, spec.baseURL, spec.spacing))
	}
	return out
}

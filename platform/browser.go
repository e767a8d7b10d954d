package platform

import "regexp"

// preferredBrands lists brands that win over any other structured brand entry.
var preferredBrands = []string{
	"Google Chrome",
	"Microsoft Edge",
	"Brave",
	"Opera",
	"Vivaldi",
	"Chromium",
}

// reGreaseBrand matches the placeholder brands browsers inject into brand lists.
var reGreaseBrand = regexp.MustCompile(`(?i)^not[^a-z]*a[^a-z]*brand`)

type uaBrowserRule struct {
	re   *regexp.Regexp
	name string
}

var uaBrowserRules = []uaBrowserRule{
	{regexp.MustCompile(`CriOS/([0-9.]+)`), "Chrome (iOS)"},
	{regexp.MustCompile(`FxiOS/([0-9.]+)`), "Firefox (iOS)"},
	{regexp.MustCompile(`EdgiOS/([0-9.]+)`), "Edge (iOS)"},
	{regexp.MustCompile(`Edg/([0-9.]+)`), "Microsoft Edge"},
	{regexp.MustCompile(`Chrome/([0-9.]+)`), "Google Chrome"},
	{regexp.MustCompile(`Firefox/([0-9.]+)`), "Firefox"},
}

var (
	reSafari       = regexp.MustCompile(`Version/([0-9.]+).*Safari/`)
	reNotSafari    = regexp.MustCompile(`Chrome|Chromium|CriOS|Edg|EdgiOS|OPR/`)
	unknownBrowser = Browser{Name: "Unknown", Source: SourceUnknown}
)

func resolveBrowser(s *Signals) Browser {
	b, src := firstOf(unknownBrowser,
		func() (Browser, Source, bool) { return browserFromBrands(s) },
		func() (Browser, Source, bool) { return browserFromUA(s.UserAgent) },
	)
	b.Source = src
	return b
}

func browserFromBrands(s *Signals) (Browser, Source, bool) {
	if s.UAData == nil {
		return Browser{}, "", false
	}
	list := s.UAData.Brands
	if he := s.UAData.HighEntropy; he != nil && len(he.FullVersionList) > 0 {
		list = he.FullVersionList
	}
	var candidates []Brand
	for _, b := range list {
		if b.Brand != "" && !reGreaseBrand.MatchString(b.Brand) {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return Browser{}, "", false
	}
	chosen := candidates[0]
pick:
	for _, want := range preferredBrands {
		for _, c := range candidates {
			if c.Brand == want {
				chosen = c
				break pick
			}
		}
	}
	return Browser{Name: chosen.Brand, Version: strPtr(chosen.Version)}, SourceStructured, true
}

func browserFromUA(ua string) (Browser, Source, bool) {
	for _, r := range uaBrowserRules {
		if m := r.re.FindStringSubmatch(ua); m != nil {
			return Browser{Name: r.name, Version: strPtr(m[1])}, SourceUserAgent, true
		}
	}
	if m := reSafari.FindStringSubmatch(ua); m != nil && !reNotSafari.MatchString(ua) {
		return Browser{Name: "Safari", Version: strPtr(m[1])}, SourceUserAgent, true
	}
	return Browser{}, "", false
}

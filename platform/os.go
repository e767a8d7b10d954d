package platform

import (
	"regexp"
	"strings"
)

// frozenMacOSVersion is the value modern browsers report for every macOS release.
const frozenMacOSVersion = "10.15.7"

const frozenMacOSNote = "UA often frozen at 10.15.7 on modern macOS; version hidden by browser."

var (
	reWindowsNT      = regexp.MustCompile(`(?i)Windows NT ([0-9.]+)`)
	reMacOSX         = regexp.MustCompile(`(?i)Mac OS X ([0-9_]+)`)
	reAndroidVersion = regexp.MustCompile(`(?i)Android ([0-9.]+)`)
	reIOS            = regexp.MustCompile(`(?i)OS ([0-9_]+) like Mac OS X`)
	reUAWindows      = regexp.MustCompile(`(?i)Windows NT`)
	reUAAndroid      = regexp.MustCompile(`(?i)Android`)
	reUAIOS          = regexp.MustCompile(`(?i)(iPhone|iPad|iPod)`)
	reUAMac          = regexp.MustCompile(`(?i)Mac OS X`)
	reUAChromeOS     = regexp.MustCompile(`(?i)CrOS`)
	reUALinux        = regexp.MustCompile(`(?i)Linux`)
	windowsBuckets   = map[string]string{
		"10.0": "10/11",
		"6.3":  "8.1",
		"6.2":  "8",
		"6.1":  "7",
	}
)

// NormalizePlatformVersion keeps at most major.minor.patch of a structured
// platform version and converts underscores to dots. It does not round.
func NormalizePlatformVersion(v string) string {
	s := strings.ReplaceAll(strings.TrimSpace(v), "_", ".")
	var parts []string
	for p := range strings.SplitSeq(s, ".") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, ".")
}

func windowsVersionFromUA(ua string) string {
	m := reWindowsNT.FindStringSubmatch(ua)
	if m == nil {
		return ""
	}
	if bucket, ok := windowsBuckets[m[1]]; ok {
		return bucket
	}
	return m[1]
}

func macOSVersionFromUA(ua string) string {
	if m := reMacOSX.FindStringSubmatch(ua); m != nil {
		return strings.ReplaceAll(m[1], "_", ".")
	}
	return ""
}

func androidVersionFromUA(ua string) string {
	if m := reAndroidVersion.FindStringSubmatch(ua); m != nil {
		return m[1]
	}
	return ""
}

func iosVersionFromUA(ua string) string {
	if m := reIOS.FindStringSubmatch(ua); m != nil {
		return strings.ReplaceAll(m[1], "_", ".")
	}
	return ""
}

// osNameFromHint maps a structured platform name to an OS name.
func osNameFromHint(hint string) string {
	h := strings.ToLower(hint)
	switch {
	case h == "":
		return ""
	case strings.Contains(h, "windows"), strings.HasPrefix(h, "win"):
		return OSWindows
	case strings.Contains(h, "mac"):
		return OSMacOS
	case strings.Contains(h, "android"):
		return OSAndroid
	case strings.Contains(h, "ios"), strings.Contains(h, "iphone"), strings.Contains(h, "ipad"):
		return OSIOS
	case strings.Contains(h, "cros"), strings.Contains(h, "chrome os"):
		return OSChromeOS
	case strings.Contains(h, "linux"):
		return OSLinux
	}
	return ""
}

func osNameFromUA(ua string) string {
	switch {
	case reUAWindows.MatchString(ua):
		return OSWindows
	case reUAAndroid.MatchString(ua):
		return OSAndroid
	case reUAIOS.MatchString(ua):
		return OSIOS
	case reUAMac.MatchString(ua):
		return OSMacOS
	case reUAChromeOS.MatchString(ua):
		return OSChromeOS
	case reUALinux.MatchString(ua):
		return OSLinux
	}
	return ""
}

func resolveOS(s *Signals) OS {
	ua := s.UserAgent
	var platformVersion string
	if he := s.highEntropy(); he != nil {
		platformVersion = NormalizePlatformVersion(he.PlatformVersion)
	}

	name, _ := firstOf(OSUnknown,
		when(SourceStructured, func() string { return osNameFromHint(s.platformHint()) }),
		when(SourceUserAgent, func() string { return osNameFromUA(ua) }),
	)

	structured := when(SourceStructured, func() string { return platformVersion })
	out := OS{Name: name, PlatformVersion: strPtr(platformVersion)}

	var uaVersion string
	switch name {
	case OSWindows:
		uaVersion = windowsVersionFromUA(ua)
	case OSMacOS:
		uaVersion = macOSVersionFromUA(ua)
	case OSAndroid:
		uaVersion = androidVersionFromUA(ua)
	case OSIOS:
		uaVersion = iosVersionFromUA(ua)
	}
	out.UAVersion = strPtr(uaVersion)

	var version string
	var src Source
	switch name {
	case OSMacOS:
		frozen := func() (string, Source, bool) {
			return "", SourceUserAgentFrozen, uaVersion == frozenMacOSVersion
		}
		version, src = firstOf("", structured, frozen, when(SourceUserAgent, func() string { return uaVersion }))
		if src == SourceUserAgentFrozen {
			out.Note = frozenMacOSNote
		}
	case OSWindows, OSAndroid, OSIOS:
		version, src = firstOf("", structured, when(SourceUserAgent, func() string { return uaVersion }))
	default:
		version, src = firstOf("", structured)
	}
	out.Version = strPtr(version)
	out.Source = src
	return out
}

// OSVersionLabel renders the OS version for display.
func OSVersionLabel(os OS) string {
	if os.Version == nil {
		if os.Name == OSMacOS && os.Source == SourceUserAgentFrozen {
			return "hidden (UA frozen)"
		}
		return "-"
	}
	return *os.Version
}

package platform

import "regexp"

var (
	reIPad    = regexp.MustCompile(`(?i)\biPad\b`)
	reIPhone  = regexp.MustCompile(`(?i)\biPhone\b`)
	reAndroid = regexp.MustCompile(`(?i)\bAndroid\b`)
	reTablet  = regexp.MustCompile(`(?i)\bTablet\b`)
	reMobile  = regexp.MustCompile(`(?i)\bMobile\b`)
	reGecko   = regexp.MustCompile(`(?i)Gecko/\d`)
	reFirefox = regexp.MustCompile(`(?i)Firefox/`)
	reWebKit  = regexp.MustCompile(`(?i)AppleWebKit/`)
)

func resolveDevice(s *Signals) Device {
	ua := s.UserAgent
	var model string
	if he := s.highEntropy(); he != nil {
		model = he.Model
	}

	kind, src := firstOf(DeviceDesktop,
		when(SourceUserAgent, func() string {
			switch {
			case reTablet.MatchString(ua) || reIPad.MatchString(ua):
				return DeviceTablet
			case reIPhone.MatchString(ua):
				if model == "" {
					model = "iPhone"
				}
				return DeviceMobile
			case reAndroid.MatchString(ua) && reMobile.MatchString(ua):
				return DeviceMobile
			case reAndroid.MatchString(ua):
				return DeviceTablet
			}
			return ""
		}),
		when(SourceStructured, func() string {
			if s.UAData != nil && s.UAData.Mobile != nil && *s.UAData.Mobile {
				return DeviceMobile
			}
			return ""
		}),
		when(SourceHeuristic, func() string {
			switch {
			case s.likelyTouch() && s.screenSmall():
				return DeviceMobile
			case s.likelyTouch():
				return DeviceTablet
			}
			return DeviceDesktop
		}),
	)
	return Device{Type: kind, Model: strPtr(model), Source: src}
}

func resolveEngine(s *Signals) Engine {
	name, src := firstOf("Unknown",
		when(SourceUserAgent, func() string {
			switch {
			case reGecko.MatchString(s.UserAgent) && reFirefox.MatchString(s.UserAgent):
				return "Gecko"
			case reWebKit.MatchString(s.UserAgent):
				return "WebKit/Blink"
			}
			return ""
		}),
	)
	return Engine{Name: name, Source: src}
}

package platform

// Signals is the raw evidence bag read from the host environment.
// Every field is optional; an absent signal is the zero value or nil.
// Signals is treated as immutable once collected.
type Signals struct {
	UserAgent string  `json:"userAgent" yaml:"userAgent"`
	Platform  string  `json:"platform" yaml:"platform"`
	Vendor    string  `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	UAData    *UAData `json:"uaData,omitempty" yaml:"uaData,omitempty"`

	// Media holds media-query results keyed by the query text,
	// e.g. "(dynamic-range: high)". A missing key means "no match".
	Media map[string]bool `json:"media,omitempty" yaml:"media,omitempty"`

	// MediaCapabilities holds recorded video decode answers keyed by
	// content type, e.g. `video/mp4; codecs="av01.0.10M.10"`. Nil means no
	// decode source was recorded.
	MediaCapabilities map[string]DecodeAnswer `json:"mediaCapabilities,omitempty" yaml:"mediaCapabilities,omitempty"`

	Screen           Screen   `json:"screen" yaml:"screen"`
	DevicePixelRatio *float64 `json:"devicePixelRatio,omitempty" yaml:"devicePixelRatio,omitempty"`

	MaxTouchPoints      *int     `json:"maxTouchPoints,omitempty" yaml:"maxTouchPoints,omitempty"`
	HardwareConcurrency *int     `json:"hardwareConcurrency,omitempty" yaml:"hardwareConcurrency,omitempty"`
	DeviceMemory        *float64 `json:"deviceMemory,omitempty" yaml:"deviceMemory,omitempty"`

	TimeZone      string `json:"timeZone,omitempty" yaml:"timeZone,omitempty"`
	SecureContext bool   `json:"secureContext" yaml:"secureContext"`
}

// UAData is structured platform data (user-agent client hints).
// HighEntropy is nil when the host refused or does not offer it.
type UAData struct {
	Brands      []Brand      `json:"brands,omitempty" yaml:"brands,omitempty"`
	Mobile      *bool        `json:"mobile,omitempty" yaml:"mobile,omitempty"`
	Platform    string       `json:"platform,omitempty" yaml:"platform,omitempty"`
	HighEntropy *HighEntropy `json:"highEntropy,omitempty" yaml:"highEntropy,omitempty"`
	Error       string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// HighEntropy carries the high-entropy client hint values.
type HighEntropy struct {
	Architecture    string  `json:"architecture,omitempty" yaml:"architecture,omitempty"`
	Bitness         string  `json:"bitness,omitempty" yaml:"bitness,omitempty"`
	Model           string  `json:"model,omitempty" yaml:"model,omitempty"`
	PlatformVersion string  `json:"platformVersion,omitempty" yaml:"platformVersion,omitempty"`
	UAFullVersion   string  `json:"uaFullVersion,omitempty" yaml:"uaFullVersion,omitempty"`
	FullVersionList []Brand `json:"fullVersionList,omitempty" yaml:"fullVersionList,omitempty"`
	WOW64           *bool   `json:"wow64,omitempty" yaml:"wow64,omitempty"`
}

// DecodeAnswer is one recorded decode capability answer.
type DecodeAnswer struct {
	Supported      bool `json:"supported" yaml:"supported"`
	Smooth         bool `json:"smooth,omitempty" yaml:"smooth,omitempty"`
	PowerEfficient bool `json:"powerEfficient,omitempty" yaml:"powerEfficient,omitempty"`
}

// Brand is one browser brand/version pair.
type Brand struct {
	Brand   string `json:"brand" yaml:"brand"`
	Version string `json:"version" yaml:"version"`
}

// Screen is the reported screen geometry.
type Screen struct {
	Width       int `json:"width,omitempty" yaml:"width,omitempty"`
	Height      int `json:"height,omitempty" yaml:"height,omitempty"`
	AvailWidth  int `json:"availWidth,omitempty" yaml:"availWidth,omitempty"`
	AvailHeight int `json:"availHeight,omitempty" yaml:"availHeight,omitempty"`
	ColorDepth  int `json:"colorDepth,omitempty" yaml:"colorDepth,omitempty"`
	PixelDepth  int `json:"pixelDepth,omitempty" yaml:"pixelDepth,omitempty"`
}

// Common media queries.
const (
	QueryDynamicRangeHigh      = "(dynamic-range: high)"
	QueryVideoDynamicRangeHigh = "(video-dynamic-range: high)"
	QueryGamutRec2020          = "(color-gamut: rec2020)"
	QueryGamutP3               = "(color-gamut: p3)"
	QueryGamutSRGB             = "(color-gamut: srgb)"
	QueryPointerCoarse         = "(pointer: coarse)"
	QueryHoverNone             = "(hover: none)"
)

// smallScreenMax is the largest short edge, in CSS pixels, still treated as a phone.
const smallScreenMax = 820

// MatchMedia reports whether the media query matched.
func (s *Signals) MatchMedia(query string) bool {
	if s == nil {
		return false
	}
	return s.Media[query]
}

func (s *Signals) platformHint() string {
	if s.UAData != nil && s.UAData.Platform != "" {
		return s.UAData.Platform
	}
	return s.Platform
}

func (s *Signals) highEntropy() *HighEntropy {
	if s.UAData == nil {
		return nil
	}
	return s.UAData.HighEntropy
}

func (s *Signals) likelyTouch() bool {
	return (s.MaxTouchPoints != nil && *s.MaxTouchPoints > 0) || s.MatchMedia(QueryPointerCoarse)
}

func (s *Signals) screenSmall() bool {
	if s.Screen.Width <= 0 || s.Screen.Height <= 0 {
		return false
	}
	return min(s.Screen.Width, s.Screen.Height) <= smallScreenMax
}

package gpucaps

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/gpucaps/fingerprint"
	"github.com/gogpu/gpucaps/gpuprobe"
	"github.com/gogpu/gpucaps/hdr"
	"github.com/gogpu/gpucaps/platform"
	"github.com/gogpu/gpucaps/raster"
	"github.com/gogpu/gpucaps/submit"
)

// Report is the assembled capability report of one run. It is complete
// once Run returns; Geo is the only field set afterwards and it never
// feeds the fingerprint.
type Report struct {
	ID            uuid.UUID         `json:"id"`
	GeneratedAt   time.Time         `json:"generatedAt"`
	UserAgent     string            `json:"userAgent"`
	SecureContext bool              `json:"secureContext"`
	Client        Client            `json:"client"`
	Display       DisplaySummary    `json:"display"`
	WebGPU        gpuprobe.Report   `json:"webgpu"`
	WebGL2        raster.Capability `json:"webgl2"`
	WebGL1        raster.Capability `json:"webgl1"`
	Geo           *Geo              `json:"geo,omitempty"`
}

// Client is the resolved identity with its display data.
type Client struct {
	UAData      *platform.UAData   `json:"uaData"`
	Identity    platform.Identity  `json:"parsed"`
	Platform    PlatformInfo       `json:"platform"`
	Hardware    Hardware           `json:"hardware"`
	Display     ClientDisplay      `json:"display"`
	Input       InputHints         `json:"input"`
	TimeZone    string             `json:"timeZone,omitempty"`
	Fingerprint fingerprint.Hashes `json:"fingerprint"`
}

// PlatformInfo holds display labels and the raw platform echo.
type PlatformInfo struct {
	Summary               string `json:"summary"`
	OSVersionLabel        string `json:"osVersionLabel"`
	CPULabel              string `json:"cpuLabel,omitempty"`
	NavigatorPlatform     string `json:"navigatorPlatform,omitempty"`
	UADataPlatform        string `json:"uaDataPlatform,omitempty"`
	UADataPlatformVersion string `json:"uaDataPlatformVersion,omitempty"`
}

// Hardware holds the reported counters with notes on their precision.
type Hardware struct {
	DeviceMemory            *float64 `json:"deviceMemory"`
	DeviceMemoryNote        string   `json:"deviceMemoryNote"`
	HardwareConcurrency     *int     `json:"hardwareConcurrency"`
	HardwareConcurrencyNote string   `json:"hardwareConcurrencyNote"`
	MaxTouchPoints          *int     `json:"maxTouchPoints"`
}

// ClientDisplay is the screen geometry and the HDR verdict with evidence.
type ClientDisplay struct {
	Screen           platform.Screen `json:"screen"`
	DevicePixelRatio *float64        `json:"devicePixelRatio"`
	hdr.Verdict
}

// InputHints are the pointer media queries.
type InputHints struct {
	PointerCoarse bool `json:"pointerCoarse"`
	HoverNone     bool `json:"hoverNone"`
}

// DisplaySummary is the coarse HDR and gamut summary sent with the report.
type DisplaySummary struct {
	DynamicRangeHigh      bool   `json:"dynamicRangeHigh"`
	VideoDynamicRangeHigh bool   `json:"videoDynamicRangeHigh"`
	HDRCapable            bool   `json:"hdrCapable"`
	HDRSource             string `json:"hdrSource"`
	ColorGamutRec2020     bool   `json:"colorGamutRec2020"`
	ColorGamutP3          bool   `json:"colorGamutP3"`
	ColorGamutSRGB        bool   `json:"colorGamutSRGB"`
}

// Geo is display-only location data returned by the collection backend.
type Geo struct {
	CountryCode string `json:"countryCode"`
}

const (
	memoryNote      = "Approximate GB (privacy-rounded; often capped/rounded in browsers)."
	concurrencyNote = "Reported logical cores (may be capped/rounded by privacy protections)."
	unavailableNote = "Not available in this browser."
)

// SupportedFormats returns how many probed formats passed at least one
// axis, and how many were probed.
func (r *Report) SupportedFormats() (supported, total int) {
	return r.WebGPU.Supported(), len(r.WebGPU.Formats)
}

// StatusLine summarizes the run, e.g. "Detection complete. 71/95 formats supported."
func (r *Report) StatusLine() string {
	n, m := r.SupportedFormats()
	return fmt.Sprintf("Detection complete. %d/%d formats supported.", n, m)
}

// HDRLabel returns "HDR", "HDR (video)", "Capable" or "SDR".
func (r *Report) HDRLabel() string {
	switch {
	case r.Display.DynamicRangeHigh:
		return "HDR"
	case r.Display.VideoDynamicRangeHigh:
		return "HDR (video)"
	case r.Display.HDRCapable:
		return "Capable"
	}
	return "SDR"
}

// ApplySubmission merges the backend's country code into Geo. The
// fingerprint is unaffected.
func (r *Report) ApplySubmission(res submit.Result) {
	if res.OK && res.CountryCode != "" {
		r.Geo = &Geo{CountryCode: res.CountryCode}
	}
}

// newClient builds the client section from resolved identity and signals.
func newClient(id platform.Identity, s *platform.Signals, v hdr.Verdict) Client {
	c := Client{
		UAData:   s.UAData,
		Identity: id,
		Platform: PlatformInfo{NavigatorPlatform: s.Platform},
		Hardware: Hardware{
			DeviceMemory:            s.DeviceMemory,
			DeviceMemoryNote:        unavailableNote,
			HardwareConcurrency:     s.HardwareConcurrency,
			HardwareConcurrencyNote: unavailableNote,
			MaxTouchPoints:          s.MaxTouchPoints,
		},
		Display: ClientDisplay{
			Screen:           s.Screen,
			DevicePixelRatio: s.DevicePixelRatio,
			Verdict:          v,
		},
		Input: InputHints{
			PointerCoarse: s.MatchMedia(platform.QueryPointerCoarse),
			HoverNone:     s.MatchMedia(platform.QueryHoverNone),
		},
		TimeZone: s.TimeZone,
	}
	if s.DeviceMemory != nil {
		c.Hardware.DeviceMemoryNote = memoryNote
	}
	if s.HardwareConcurrency != nil {
		c.Hardware.HardwareConcurrencyNote = concurrencyNote
	}
	if s.UAData != nil {
		c.Platform.UADataPlatform = s.UAData.Platform
		if s.UAData.HighEntropy != nil {
			c.Platform.UADataPlatformVersion = s.UAData.HighEntropy.PlatformVersion
		}
	}
	c.refreshLabels()
	return c
}

// refreshLabels recomputes the display labels from the identity.
func (c *Client) refreshLabels() {
	c.Platform.Summary = platform.Summary(c.Identity)
	c.Platform.OSVersionLabel = platform.OSVersionLabel(c.Identity.OS)
	c.Platform.CPULabel = platform.CPULabel(c.Identity.OS.Name, c.Identity.CPU)
}

func summarize(v hdr.Verdict) DisplaySummary {
	return DisplaySummary{
		DynamicRangeHigh:      v.Evidence.DynamicRangeHigh,
		VideoDynamicRangeHigh: v.Evidence.VideoDynamicRangeHigh,
		HDRCapable:            v.HDRCapable,
		HDRSource:             v.Source,
		ColorGamutRec2020:     v.Evidence.ColorGamutRec2020,
		ColorGamutP3:          v.Evidence.ColorGamutP3,
		ColorGamutSRGB:        v.Evidence.ColorGamutSRGB,
	}
}

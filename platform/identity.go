package platform

// Source tags the provenance of a resolved value.
type Source string

const (
	// SourceStructured marks values read from structured platform data.
	SourceStructured Source = "structuredData"
	// SourceUserAgent marks values parsed from the user-agent string.
	SourceUserAgent Source = "userAgent"
	// SourceUserAgentFrozen marks a user-agent value known to be frozen by the browser.
	SourceUserAgentFrozen Source = "userAgentFrozen"
	// SourceHeuristic marks values inferred from indirect signals.
	SourceHeuristic Source = "heuristic"
	// SourceGPUHints marks values inferred from GPU adapter or renderer strings.
	SourceGPUHints Source = "gpuHints"
	// SourceUnknown marks values that could not be resolved.
	SourceUnknown Source = "unknown"
)

// Valid reports whether s is one of the provenance kinds above.
func (s Source) Valid() bool {
	switch s {
	case SourceStructured, SourceUserAgent, SourceUserAgentFrozen,
		SourceHeuristic, SourceGPUHints, SourceUnknown:
		return true
	}
	return false
}

// Device types.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

// OS names.
const (
	OSWindows  = "Windows"
	OSMacOS    = "macOS"
	OSAndroid  = "Android"
	OSIOS      = "iOS/iPadOS"
	OSChromeOS = "ChromeOS"
	OSLinux    = "Linux"
	OSUnknown  = "Unknown"
)

// Identity is the resolved browser/OS/device/CPU/engine identity.
// Every part carries the Source it was derived from.
type Identity struct {
	Browser Browser `json:"browser"`
	OS      OS      `json:"os"`
	Device  Device  `json:"device"`
	CPU     CPU     `json:"cpu"`
	Engine  Engine  `json:"engine"`
}

// Browser is the resolved browser brand.
type Browser struct {
	Name    string  `json:"name"`
	Version *string `json:"version"`
	Source  Source  `json:"source"`
}

// OS is the resolved operating system. Version is nil when the host hides it;
// Note then explains why.
type OS struct {
	Name            string  `json:"name"`
	Version         *string `json:"version"`
	Source          Source  `json:"source"`
	UAVersion       *string `json:"uaVersion,omitempty"`
	PlatformVersion *string `json:"platformVersion,omitempty"`
	Note            string  `json:"note,omitempty"`
}

// Device is the resolved device class.
type Device struct {
	Type   string  `json:"type"`
	Model  *string `json:"model"`
	Source Source  `json:"source"`
}

// CPU is the resolved processor architecture.
type CPU struct {
	Architecture   *string `json:"architecture"`
	Bitness        *string `json:"bitness"`
	WOW64          *bool   `json:"wow64,omitempty"`
	IsAppleSilicon *bool   `json:"isAppleSilicon"`
	Source         Source  `json:"source"`
	Evidence       string  `json:"evidence,omitempty"`
}

// Engine is the resolved rendering engine.
type Engine struct {
	Name   string `json:"name"`
	Source Source `json:"source"`
}

// Sources returns the provenance tag of every identity leaf.
func (id *Identity) Sources() map[string]Source {
	return map[string]Source{
		"browser": id.Browser.Source,
		"os":      id.OS.Source,
		"device":  id.Device.Source,
		"cpu":     id.CPU.Source,
		"engine":  id.Engine.Source,
	}
}

// strPtr returns nil for the empty string.
func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func boolPtr(b bool) *bool { return &b }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

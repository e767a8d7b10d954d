// Package platform resolves browser, OS, device, CPU and engine identity
// from noisy host signals.
//
// Each attribute is an ordered chain of candidate resolvers; the first
// candidate with an answer wins and its Source is recorded next to the value.
// Resolution never fails: missing evidence yields nil values tagged
// SourceUnknown.
package platform

// Resolve derives an Identity from s. A nil s resolves to an all-unknown identity.
func Resolve(s *Signals) Identity {
	if s == nil {
		s = &Signals{}
	}
	os := resolveOS(s)
	return Identity{
		Browser: resolveBrowser(s),
		OS:      os,
		Device:  resolveDevice(s),
		CPU:     resolveCPU(s, os.Name),
		Engine:  resolveEngine(s),
	}
}

// Summary renders "OS version • CPU", e.g. "macOS 14.5 • Apple Silicon (arm64)".
func Summary(id Identity) string {
	osPart := OSUnknown
	if id.OS.Name != "" {
		osPart = id.OS.Name
		if id.OS.Version != nil {
			osPart += " " + *id.OS.Version
		}
	}
	if cpu := CPULabel(id.OS.Name, id.CPU); cpu != "" {
		return osPart + " • " + cpu
	}
	return osPart
}

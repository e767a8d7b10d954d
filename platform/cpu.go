package platform

import (
	"regexp"
	"strings"
)

var (
	reUAArm64 = regexp.MustCompile(`(?i)\b(arm64|aarch64)\b`)
	reUAX64   = regexp.MustCompile(`(?i)\b(x86_64|amd64|x64|win64)\b`)
	reUAX86   = regexp.MustCompile(`(?i)\b(i686|i386|x86)\b`)
)

// Architecture designations.
const (
	ArchARM64 = "arm64"
	ArchX8664 = "x86_64"
)

// NormalizeArchitecture folds structured architecture/bitness pairs into
// one designation ("arm64", "x86_64", "arm", "x86"). Unknown values pass through.
func NormalizeArchitecture(arch, bitness string) string {
	a := strings.ToLower(strings.TrimSpace(arch))
	is64 := strings.TrimSpace(bitness) == "64"
	switch a {
	case "":
		return ""
	case "arm":
		if is64 {
			return ArchARM64
		}
		return "arm"
	case "aarch64", "arm64":
		return ArchARM64
	case "x86":
		if is64 {
			return ArchX8664
		}
		return "x86"
	case "x64", "amd64", "x86_64":
		return ArchX8664
	}
	return arch
}

func architectureFromUA(ua string) string {
	switch {
	case reUAArm64.MatchString(ua):
		return ArchARM64
	case reUAX64.MatchString(ua):
		return ArchX8664
	case reUAX86.MatchString(ua):
		return "x86"
	}
	return ""
}

func resolveCPU(s *Signals, osName string) CPU {
	he := s.highEntropy()
	var out CPU
	if he != nil {
		out.Bitness = strPtr(strings.TrimSpace(he.Bitness))
		out.WOW64 = he.WOW64
	}

	arch, src := firstOf("",
		when(SourceStructured, func() string {
			if he == nil {
				return ""
			}
			return NormalizeArchitecture(he.Architecture, he.Bitness)
		}),
		// Browsers label Apple silicon Macs as Intel for compatibility, so on
		// macOS only an explicit ARM token counts.
		when(SourceUserAgent, func() string {
			a := architectureFromUA(s.UserAgent)
			if osName == OSMacOS && a != ArchARM64 {
				return ""
			}
			return a
		}),
	)
	out.Architecture = strPtr(arch)
	out.Source = src

	if osName == OSMacOS {
		switch {
		case strings.HasPrefix(arch, "arm"):
			out.IsAppleSilicon = boolPtr(true)
		case strings.HasPrefix(arch, "x86"):
			out.IsAppleSilicon = boolPtr(false)
		}
	}
	return out
}

// CPULabel renders the processor for display, e.g. "Apple Silicon (arm64)".
func CPULabel(osName string, cpu CPU) string {
	arch := deref(cpu.Architecture)
	if osName == OSMacOS && cpu.IsAppleSilicon != nil {
		if *cpu.IsAppleSilicon {
			switch {
			case strings.HasPrefix(arch, "x86"):
				return "Apple Silicon (Rosetta " + arch + ")"
			case arch != "":
				return "Apple Silicon (" + arch + ")"
			}
			return "Apple Silicon"
		}
		if arch != "" {
			return "Intel (" + arch + ")"
		}
		return "Intel"
	}
	return arch
}

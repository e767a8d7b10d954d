// Package signals collects the identity evidence bag consumed by the
// platform resolver, either from the native host or from a recorded
// signals file.
package signals

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/gogpu/gpucaps/internal/logging"
	"github.com/gogpu/gpucaps/platform"
)

// Collector reads host facts. The zero value is not usable; call
// NewCollector.
type Collector struct {
	goos   string
	goarch string

	hostInfo      func(context.Context) (*host.InfoStat, error)
	cpuCounts     func(context.Context, bool) (int, error)
	virtualMemory func(context.Context) (*mem.VirtualMemoryStat, error)
}

// NewCollector returns a Collector backed by gopsutil for the running
// platform.
func NewCollector() *Collector {
	return &Collector{
		goos:          runtime.GOOS,
		goarch:        runtime.GOARCH,
		hostInfo:      host.InfoWithContext,
		cpuCounts:     cpu.CountsWithContext,
		virtualMemory: mem.VirtualMemoryWithContext,
	}
}

// Host collects signals from the running host with the default Collector.
func Host(ctx context.Context) (platform.Signals, error) {
	return NewCollector().Collect(ctx)
}

var reVersion = regexp.MustCompile(`^\d+(?:\.\d+)*`)

// Collect builds a signal bag describing the host. A native host has no
// user agent, so identity flows through the structured platform fields.
// Individual collection failures leave their fields unset and are joined
// into the returned error; the signal bag is always usable.
func (c *Collector) Collect(ctx context.Context) (platform.Signals, error) {
	var errs []error
	mobile := c.goos == "android" || c.goos == "ios"
	arch, bitness := hintArchitecture(c.goarch)

	he := &platform.HighEntropy{Architecture: arch, Bitness: bitness}
	s := platform.Signals{
		Platform: navigatorPlatform(c.goos, c.goarch),
		UAData: &platform.UAData{
			Mobile:      &mobile,
			Platform:    platformName(c.goos),
			HighEntropy: he,
		},
		Media:         map[string]bool{},
		SecureContext: true,
	}
	zone, _ := time.Now().Zone()
	s.TimeZone = zone

	touch := 0
	if mobile {
		touch = 5
	}
	s.MaxTouchPoints = &touch

	if info, err := c.hostInfo(ctx); err != nil {
		errs = append(errs, fmt.Errorf("host info: %w", err))
	} else {
		he.PlatformVersion = reVersion.FindString(info.PlatformVersion)
		if info.KernelArch != "" {
			if a, b := hintArchitecture(info.KernelArch); a != "" {
				he.Architecture, he.Bitness = a, b
			}
		}
	}

	if n, err := c.cpuCounts(ctx, true); err != nil {
		errs = append(errs, fmt.Errorf("cpu counts: %w", err))
	} else if n > 0 {
		s.HardwareConcurrency = &n
	}

	if vm, err := c.virtualMemory(ctx); err != nil {
		errs = append(errs, fmt.Errorf("virtual memory: %w", err))
	} else if vm.Total > 0 {
		gib := math.Round(float64(vm.Total) / (1 << 30))
		s.DeviceMemory = &gib
	}

	err := errors.Join(errs...)
	if err != nil {
		logging.Logger().Warn("signals: partial host collection", "err", err)
	}
	logging.Logger().Debug("signals: host collected", "platform", s.UAData.Platform,
		"version", he.PlatformVersion, "arch", he.Architecture)
	return s, err
}

// hintArchitecture maps a Go or uname architecture to the client-hint
// architecture/bitness pair.
func hintArchitecture(arch string) (string, string) {
	switch arch {
	case "amd64", "x86_64":
		return "x86", "64"
	case "386", "i386", "i686":
		return "x86", "32"
	case "arm64", "aarch64":
		return "arm", "64"
	case "arm", "armv7l", "armv6l":
		return "arm", "32"
	}
	return "", ""
}

func platformName(goos string) string {
	switch goos {
	case "darwin":
		return "macOS"
	case "windows":
		return "Windows"
	case "android":
		return "Android"
	case "ios":
		return "iOS"
	case "linux":
		return "Linux"
	}
	return goos
}

// navigatorPlatform returns the legacy platform string a browser on the
// same host would report.
func navigatorPlatform(goos, goarch string) string {
	switch goos {
	case "darwin":
		return "MacIntel"
	case "windows":
		return "Win32"
	case "ios":
		return "iPhone"
	case "linux", "android":
		switch goarch {
		case "arm64":
			return "Linux aarch64"
		case "amd64":
			return "Linux x86_64"
		}
		return "Linux " + goarch
	}
	return goos
}

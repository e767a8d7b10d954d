package gpucaps

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/gpucaps/gpuprobe"
	"github.com/gogpu/gpucaps/internal/logging"
	"github.com/gogpu/gpucaps/platform"
	"github.com/gogpu/gpucaps/raster"
)

// Apple GPU naming patterns, matched against folded hint text.
var appleGPUPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bapple\s*m\d+(?:\s*(?:pro|max|ultra))?\b`),
	regexp.MustCompile(`\bapple\s*gpu\b`),
	regexp.MustCompile(`\bagx\b`),
}

var fold = cases.Fold()

// gpuHints collects the adapter and renderer strings of a report, trimmed
// and without empties, in adapter, modern, legacy order.
func gpuHints(r *Report) []string {
	var raw []string
	raw = append(raw, r.WebGPU.AdapterInfo.Hints()...)
	raw = append(raw, r.WebGL2.Hints()...)
	raw = append(raw, r.WebGL1.Hints()...)
	out := raw[:0]
	for _, h := range raw {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}

// looksLikeAppleSilicon reports whether any hint names an Apple GPU.
// Hints are NFKC-normalized and case-folded before matching, so
// full-width or oddly cased driver strings still match.
func looksLikeAppleSilicon(hints []string) bool {
	text := fold.String(norm.NFKC.String(strings.Join(hints, " | ")))
	for _, re := range appleGPUPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// correctAppleSilicon infers Apple silicon on macOS from GPU strings. It
// never overrides an x86 architecture resolved from real evidence, and
// only claims the source when the CPU was unresolved. It reports whether
// the client changed.
func correctAppleSilicon(c *Client, hints []string) bool {
	cpu := &c.Identity.CPU
	if c.Identity.OS.Name != platform.OSMacOS || len(hints) == 0 || !looksLikeAppleSilicon(hints) {
		return false
	}
	arch := ""
	if cpu.Architecture != nil {
		arch = *cpu.Architecture
	}
	if strings.HasPrefix(arch, "x86") && cpu.Source != platform.SourceUnknown && cpu.Source != "" {
		logging.Logger().Debug("gpucaps: apple gpu hints contradict resolved cpu",
			"arch", arch, "source", cpu.Source)
		return false
	}

	apple := true
	cpu.IsAppleSilicon = &apple
	if arch == "" {
		a := platform.ArchARM64
		cpu.Architecture = &a
	}
	if cpu.Source == "" || cpu.Source == platform.SourceUnknown {
		cpu.Source = platform.SourceGPUHints
	}
	evidence := strings.Join(hints, " | ")
	if cpu.Evidence != "" {
		evidence = cpu.Evidence + " | " + evidence
	}
	cpu.Evidence = evidence
	c.refreshLabels()

	logging.Logger().Info("gpucaps: apple silicon inferred from gpu hints", "source", cpu.Source)
	return true
}

// upgradeASTCHDR marks every non-sRGB ASTC format as HDR when either
// raster tier confirmed the ASTC HDR profile. It returns the number of
// formats upgraded.
func upgradeASTCHDR(r *Report) int {
	confirmed := false
	for _, tier := range []*raster.Capability{&r.WebGL2, &r.WebGL1} {
		if tier.ASTC != nil && tier.ASTC.HDRProfile {
			confirmed = true
		}
	}
	if !confirmed {
		return 0
	}
	n := 0
	for i := range r.WebGPU.Formats {
		f := &r.WebGPU.Formats[i]
		if f.Kind != gpuprobe.KindCompressedASTC || f.HDR || strings.HasSuffix(f.Format, "-srgb") {
			continue
		}
		f.HDR = true
		n++
	}
	if n > 0 {
		logging.Logger().Debug("gpucaps: astc formats upgraded to hdr", "count", n)
	}
	return n
}

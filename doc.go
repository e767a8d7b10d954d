// Package gpucaps probes what GPU texture formats, color capabilities and
// platform identity a device actually supports, and assembles the results
// into one capability report.
//
// # Overview
//
// A run resolves identity from raw signals, then probes three things
// concurrently: every WebGPU texture format against the sampled,
// filterable, renderable and storage axes; the legacy raster (GL) surface
// of both context tiers; and the HDR verdict. The assembler joins the
// results, applies a correction pass and fingerprints the identity.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/gpucaps"
//	    "github.com/gogpu/gpucaps/gpuprobe"
//	    "github.com/gogpu/gpucaps/raster"
//	    "github.com/gogpu/gpucaps/signals"
//	)
//
//	s, _ := signals.Host(ctx)
//	eng := gpucaps.New(
//	    gpucaps.WithGPU(gpuprobe.Native()),
//	    gpucaps.WithRaster(raster.Native()),
//	)
//	rep, err := eng.Run(ctx, &s)
//
// # Failure model
//
// Nothing short of total failure escapes Run. Missing APIs become
// available:false, denied or failing probes are recorded in the warnings
// and errors of the sub-report, and timed out decode checks count as
// unsupported. Run returns ErrNoReport only when nothing could be probed.
//
// # Architecture
//
// The module is organized into:
//   - gpucaps: Engine, Report, correction pass
//   - platform: identity resolution with provenance tags
//   - gpuprobe: WebGPU format probe over gogpu/wgpu
//   - raster: GL capability gatherer over EGL/GLES
//   - hdr: HDR/color fusion
//   - fingerprint: identity hashing
//   - signals, submit: collection and submission boundaries
package gpucaps

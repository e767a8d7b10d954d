// Package fingerprint hashes a stable subset of a resolved identity.
//
// The subset is serialised field by field in a fixed order, so hashing an
// unchanged subset always reproduces the same pair of digests. Raw signals
// such as the user-agent string are never part of the input.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"unicode/utf16"

	"github.com/gogpu/gpucaps/platform"
)

// Input is the canonical subset of a report that feeds the hashes.
// Field order is part of the format; do not reorder.
type Input struct {
	Browser Browser `json:"browser"`
	OS      *OS     `json:"os"`
	Device  Device  `json:"device"`
	CPU     CPU     `json:"cpu"`
	HW      HW      `json:"hw"`
	Screen  Screen  `json:"screen"`
}

// Browser is the browser part of Input.
type Browser struct {
	Name    string  `json:"name"`
	Version *string `json:"version"`
}

// OS is the OS part of Input, including its provenance.
type OS struct {
	Name            *string `json:"name"`
	Version         *string `json:"version"`
	Source          *string `json:"source"`
	UAVersion       *string `json:"uaVersion"`
	PlatformVersion *string `json:"platformVersion"`
}

// Device is the device part of Input.
type Device struct {
	Type  string  `json:"type"`
	Model *string `json:"model"`
}

// CPU is the CPU part of Input.
type CPU struct {
	Architecture *string `json:"architecture"`
	Bitness      *string `json:"bitness"`
}

// HW holds the hardware counters of Input.
type HW struct {
	DeviceMemory        *float64 `json:"deviceMemory"`
	HardwareConcurrency *int     `json:"hardwareConcurrency"`
	MaxTouchPoints      *int     `json:"maxTouchPoints"`
}

// Screen holds the screen geometry of Input.
type Screen struct {
	Width            *int     `json:"width"`
	Height           *int     `json:"height"`
	DevicePixelRatio *float64 `json:"devicePixelRatio"`
}

// Hashes is the digest pair. SHA256 is nil when the strong hash was unavailable.
type Hashes struct {
	SHA256 *string `json:"sha256"`
	FNV1a  string  `json:"fnv1a"`
}

// Key returns the preferred dedupe key: "sha256:<hex>" or "fnv1a:<hex>".
func (h Hashes) Key() string {
	if h.SHA256 != nil && *h.SHA256 != "" {
		return "sha256:" + *h.SHA256
	}
	return "fnv1a:" + h.FNV1a
}

// NewInput builds the canonical subset from a resolved identity and the
// signals it came from.
func NewInput(id platform.Identity, s *platform.Signals) Input {
	if s == nil {
		s = &platform.Signals{}
	}
	nonEmpty := func(v string) *string {
		if v == "" {
			return nil
		}
		return &v
	}
	positive := func(v int) *int {
		if v <= 0 {
			return nil
		}
		return &v
	}
	src := string(id.OS.Source)
	return Input{
		Browser: Browser{Name: id.Browser.Name, Version: id.Browser.Version},
		OS: &OS{
			Name:            nonEmpty(id.OS.Name),
			Version:         id.OS.Version,
			Source:          nonEmpty(src),
			UAVersion:       id.OS.UAVersion,
			PlatformVersion: id.OS.PlatformVersion,
		},
		Device: Device{Type: id.Device.Type, Model: id.Device.Model},
		CPU:    CPU{Architecture: id.CPU.Architecture, Bitness: id.CPU.Bitness},
		HW: HW{
			DeviceMemory:        s.DeviceMemory,
			HardwareConcurrency: s.HardwareConcurrency,
			MaxTouchPoints:      s.MaxTouchPoints,
		},
		Screen: Screen{
			Width:            positive(s.Screen.Width),
			Height:           positive(s.Screen.Height),
			DevicePixelRatio: s.DevicePixelRatio,
		},
	}
}

// Canonical serialises in deterministically. The output is the plain JSON
// a browser's JSON.stringify produces for the same object: no HTML escaping,
// no trailing newline and U+2028/U+2029 left unescaped.
func Canonical(in Input) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(in); err != nil {
		return nil, fmt.Errorf("fingerprint: encode input: %w", err)
	}
	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// unescapeLineSeparators rewrites the \u2028 and \u2029 escapes that
// encoding/json always emits back to the raw characters.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 == len(b) {
			out = append(out, b[i])
			continue
		}
		if esc := b[i:min(i+6, len(b))]; string(esc) == `\u2028` || string(esc) == `\u2029` {
			out = append(out, string(rune(0x2028+int(esc[5]-'8')))...)
			i += 5
			continue
		}
		// Any other escape is copied whole so an escaped backslash is never
		// read as the start of a new escape.
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}

// StrongFunc computes the cryptographic digest of data as lowercase hex.
type StrongFunc func(data []byte) (string, error)

// SHA256Hex is the default StrongFunc.
func SHA256Hex(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// FNV1aHex returns the 32-bit FNV-1a checksum of data as 8 hex digits.
// data is read as UTF-8 and hashed one UTF-16 code unit at a time, so the
// checksum equals the one computed over the same string in a browser.
func FNV1aHex(data []byte) string {
	const (
		offset32 = 0x811c9dc5
		prime32  = 0x01000193
	)
	hash := uint32(offset32)
	for _, unit := range utf16.Encode([]rune(string(data))) {
		hash ^= uint32(unit)
		hash *= prime32
	}
	return fmt.Sprintf("%08x", hash)
}

// Hasher computes Hashes. The zero value uses SHA256Hex.
type Hasher struct {
	Strong StrongFunc
}

// Sum hashes the canonical form of in. A failing strong hash leaves
// SHA256 nil; the FNV-1a checksum is always present.
func (h Hasher) Sum(in Input) (Hashes, error) {
	data, err := Canonical(in)
	if err != nil {
		return Hashes{}, err
	}
	out := Hashes{FNV1a: FNV1aHex(data)}
	strong := h.Strong
	if strong == nil {
		strong = SHA256Hex
	}
	if hexSum, err := strong(data); err == nil && hexSum != "" {
		out.SHA256 = &hexSum
	}
	return out, nil
}

// Sum hashes in with the default Hasher.
func Sum(in Input) (Hashes, error) {
	return Hasher{}.Sum(in)
}

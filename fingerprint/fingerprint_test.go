package fingerprint

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gpucaps/platform"
)

func sampleSignals() *platform.Signals {
	cores, touch := 8, 0
	mem, dpr := 8.0, 2.0
	return &platform.Signals{
		UserAgent:           "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
		HardwareConcurrency: &cores,
		MaxTouchPoints:      &touch,
		DeviceMemory:        &mem,
		DevicePixelRatio:    &dpr,
		Screen:              platform.Screen{Width: 1512, Height: 982},
	}
}

func TestSumIdempotent(t *testing.T) {
	s := sampleSignals()
	in := NewInput(platform.Resolve(s), s)
	a, err := Sum(in)
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	b, err := Sum(NewInput(platform.Resolve(s), s))
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if a.SHA256 == nil || b.SHA256 == nil {
		t.Fatal("SHA256 missing")
	}
	if *a.SHA256 != *b.SHA256 || a.FNV1a != b.FNV1a {
		t.Errorf("hashes differ across runs: %v vs %v", a, b)
	}
	if len(*a.SHA256) != 64 || len(a.FNV1a) != 8 {
		t.Errorf("unexpected digest lengths: %d, %d", len(*a.SHA256), len(a.FNV1a))
	}
}

func TestSumChangesWithInput(t *testing.T) {
	s := sampleSignals()
	id := platform.Resolve(s)
	a, _ := Sum(NewInput(id, s))

	arm := "arm64"
	id.CPU.Architecture = &arm
	b, _ := Sum(NewInput(id, s))
	if a.FNV1a == b.FNV1a || *a.SHA256 == *b.SHA256 {
		t.Error("changing cpu.architecture must change the hashes")
	}
}

func TestCanonicalFieldOrder(t *testing.T) {
	s := sampleSignals()
	data, err := Canonical(NewInput(platform.Resolve(s), s))
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	order := []string{`"browser"`, `"os"`, `"device"`, `"cpu"`, `"hw"`, `"screen"`}
	last := -1
	for _, key := range order {
		i := strings.Index(got, key)
		if i <= last {
			t.Fatalf("key %s out of order in %s", key, got)
		}
		last = i
	}
	if strings.Contains(got, "Mozilla") {
		t.Error("raw user-agent leaked into the canonical input")
	}
	if !strings.Contains(got, `"source":"userAgentFrozen"`) {
		t.Errorf("os source chain missing from %s", got)
	}
}

func TestFNV1aHex(t *testing.T) {
	tests := map[string]string{
		"":       "811c9dc5",
		"a":      "e40c292c",
		"foobar": "bf9cf968",
		"é":      "6c0b6c44", // one code unit, not two UTF-8 bytes
		"😀":      "cb31c4b8", // surrogate pair
	}
	for in, want := range tests {
		if got := FNV1aHex([]byte(in)); got != want {
			t.Errorf("FNV1aHex(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestCanonicalMatchesStringify(t *testing.T) {
	version := `a\u2028`
	in := Input{Browser: Browser{Name: "Édge <b>&\u2028", Version: &version}}
	want := `{"browser":{"name":"Édge <b>&` + "\u2028" + `","version":"a\\u2028"},"os":null,` +
		`"device":{"type":"","model":null},"cpu":{"architecture":null,"bitness":null},` +
		`"hw":{"deviceMemory":null,"hardwareConcurrency":null,"maxTouchPoints":null},` +
		`"screen":{"width":null,"height":null,"devicePixelRatio":null}}`

	data, err := Canonical(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != want {
		t.Errorf("Canonical() =\n%s\nwant\n%s", data, want)
	}
	if got := FNV1aHex(data); got != "355eefec" {
		t.Errorf("FNV1aHex(canonical) = %s, want 355eefec", got)
	}
}

func TestStrongFallback(t *testing.T) {
	h := Hasher{Strong: func([]byte) (string, error) { return "", errors.New("digest unavailable") }}
	sums, err := h.Sum(Input{})
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if sums.SHA256 != nil {
		t.Error("SHA256 should be nil when the strong hash fails")
	}
	if sums.FNV1a == "" {
		t.Error("FNV1a must always be computed")
	}
	if !strings.HasPrefix(sums.Key(), "fnv1a:") {
		t.Errorf("Key() = %q, want fnv1a prefix", sums.Key())
	}
}

func TestKeyPrefersSHA256(t *testing.T) {
	sums, _ := Sum(Input{})
	if !strings.HasPrefix(sums.Key(), "sha256:") {
		t.Errorf("Key() = %q, want sha256 prefix", sums.Key())
	}
}

package signals

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/gogpu/gpucaps/platform"
)

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a signal bag.
func Parse(data []byte) (platform.Signals, error) {
	var s platform.Signals
	if err := json.Unmarshal(jsonc.ToJSON(data), &s); err != nil {
		return platform.Signals{}, fmt.Errorf("parsing signals: %w", err)
	}
	return s, nil
}

// LoadFile reads a JSONC signals file recorded from a browser session.
func LoadFile(path string) (platform.Signals, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return platform.Signals{}, fmt.Errorf("reading %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return platform.Signals{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatCBOR = "cbor"
)

// encMode encodes reports with Core Deterministic Encoding so the same
// report always produces the same bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("gpucaps: CBOR encoder initialization failed: " + err.Error())
	}
}

// encode renders v in the given format. The JSON field names are the
// report contract; YAML and CBOR are produced from the JSON document so
// every encoding carries the same keys.
func encode(v any, format string) ([]byte, error) {
	doc, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	switch format {
	case formatJSON:
		return append(doc, '\n'), nil
	case formatYAML:
		return jsonToYAML(doc)
	case formatCBOR:
		var generic any
		if err := json.Unmarshal(doc, &generic); err != nil {
			return nil, fmt.Errorf("encoding report: %w", err)
		}
		return encMode.Marshal(generic)
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// jsonToYAML re-encodes a JSON document as block-style YAML, keeping
// the JSON key order.
func jsonToYAML(doc []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(doc, &node); err != nil {
		return nil, fmt.Errorf("encoding report as yaml: %w", err)
	}
	blockStyle(&node)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("encoding report as yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// blockStyle clears the flow style the JSON parser leaves on
// collections, and the quoting it leaves on plain strings.
func blockStyle(n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		n.Style &^= yaml.FlowStyle
	case yaml.ScalarNode:
		if n.Tag == "!!str" {
			n.Style &^= yaml.DoubleQuotedStyle
		}
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

package gpucaps

import "errors"

// ErrNoReport is returned by Run when no report can be produced at all.
// Partial failures never produce it; they are recorded in the report.
var ErrNoReport = errors.New("gpucaps: no report")

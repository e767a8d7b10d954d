package gpuprobe

import (
	"fmt"
)

// ValidationError is a GPU validation error captured by an error scope.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "gpuprobe: validation: " + e.Message
}

// Scope is a device error-scope stack restricted to validation errors.
type Scope interface {
	PushErrorScope()
	// PopErrorScope returns the first error captured since the matching
	// push, or nil.
	PopErrorScope() error
}

// Outcome is the result of one scoped attempt. Thrown is the error raised
// locally while building the resource graph; Captured is what the scope
// reported. The attempt succeeded only if both are nil.
type Outcome struct {
	Thrown   error
	Captured error
}

// OK reports whether neither a local nor a captured error occurred.
func (o Outcome) OK() bool { return o.Thrown == nil && o.Captured == nil }

// Err returns the first non-nil error of the outcome.
func (o Outcome) Err() error {
	if o.Thrown != nil {
		return o.Thrown
	}
	return o.Captured
}

// cleanup releases resources in reverse creation order.
type cleanup struct {
	fns []func()
}

func (c *cleanup) add(r Resource) {
	if r != nil {
		c.fns = append(c.fns, r.Release)
	}
}

func (c *cleanup) run() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
	c.fns = nil
}

// withValidation runs fn inside a validation scope. Every resource fn
// registers is released before the scope is popped, whatever the outcome.
func withValidation(s Scope, fn func(*cleanup) error) (out Outcome) {
	s.PushErrorScope()
	var c cleanup
	func() {
		defer func() {
			if r := recover(); r != nil {
				out.Thrown = fmt.Errorf("gpuprobe: panic during resource construction: %v", r)
			}
		}()
		out.Thrown = fn(&c)
	}()
	c.run()
	out.Captured = s.PopErrorScope()
	return out
}

//go:build !debug

// Package debug provides the driver's logger and assertions that can be
// enabled with the debug build tag or will otherwise compile to no-ops.
//
// Assertions guard invariants the hardware can't check for us, e.g. freeing
// DMA memory twice or overrunning a planned command batch.
package debug

// Guard more complex assertions (i.e. anything that could panic) with `if
// debug.Enabled{...}`, otherwise they can't be removed in release builds.
const Enabled = false

// Assert logs and panics with the formatted message if b is false.
func Assert(b bool, format string, args ...any) {}

// AssertErrNil logs and panics if err is not nil.
func AssertErrNil(err error) {}

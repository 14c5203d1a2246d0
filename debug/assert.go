//go:build debug

package debug

// Guard more complex assertions (i.e. anything that could panic) with `if
// debug.Enabled{...}`, otherwise they can't be removed in release builds.
const Enabled = true

// Assert logs and panics with the formatted message if b is false.
func Assert(b bool, format string, args ...any) {
	if !b {
		Log.Panicf(format, args...)
	}
}

// AssertErrNil logs and panics if err is not nil.
func AssertErrNil(err error) {
	if err != nil {
		Log.WithError(err).Panic("unexpected error")
	}
}

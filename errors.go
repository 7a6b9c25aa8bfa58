package zctc

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three §7 error kinds. Callers classify a
// failure with errors.Is against these rather than matching on
// message text; DecodeError.Unwrap and the plain constructors below
// both chain to one of them.
var (
	ErrInvalidConfig = errors.New("zctc: invalid config")
	ErrShape         = errors.New("zctc: shape error")
	ErrResource      = errors.New("zctc: resource error")
)

// DecodeError reports that sample SampleIndex within a batch failed to
// decode; Err chains to one of the sentinels above. Other samples in the same
// Decode call may have completed and been written to Output even when
// this is returned, since each sample decodes independently (§4.7).
type DecodeError struct {
	SampleIndex int
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("zctc: sample %d: %v", e.SampleIndex, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// wrapErr chains sentinel into a formatted error via %w, the shared
// helper behind the three constructors below.
func wrapErr(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}

// errInvalidConfig reports a construction-time configuration problem
// (§7 Configuration error). The decoder is not usable when this is
// returned from NewDecoder.
func errInvalidConfig(format string, args ...any) error {
	return wrapErr(ErrInvalidConfig, format, args...)
}

// errShape reports a decode-entry shape mismatch (§7 Shape error).
// No decoding work is performed when this is returned.
func errShape(format string, args ...any) error {
	return wrapErr(ErrShape, format, args...)
}

// errResource reports a problem bringing up a shared resource, such as
// the worker pool or an FST file (§7 Resource error).
func errResource(format string, args ...any) error {
	return wrapErr(ErrResource, format, args...)
}

package kernel

import (
	"errors"
	"fmt"
)

// Error kinds reported by kernels and the graph adapter. They are
// programmer-contract violations: callers match them with errors.Is and
// never retry.
var (
	// ErrShape reports incompatible or non-broadcastable shapes, a wrong
	// number of inputs, or an output gradient whose shape differs from the
	// forward output.
	ErrShape = errors.New("shape error")

	// ErrContext reports a backward call with a context that was not
	// produced by the matching kernel's forward.
	ErrContext = errors.New("context error")

	// ErrIndex reports a segment index outside the declared bucket range.
	ErrIndex = errors.New("index error")

	// ErrState reports a backward call without a pending forward context.
	ErrState = errors.New("state error")

	// ErrDType reports an input whose data type the kernel cannot accept.
	ErrDType = errors.New("dtype error")
)

func errorf(kind Kind, sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", kind, fmt.Sprintf(format, args...), sentinel)
}

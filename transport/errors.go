package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOpen is returned when an I/O method is called on a socket
	// that has not been joined or has been closed.
	ErrNotOpen = errors.New("socket not open")
	// ErrTimeout is returned by a receive whose timeout elapsed without
	// inbound data.
	ErrTimeout = errors.New("receive timed out")
	// ErrCancelled is returned by a receive that was unblocked through
	// its stop channel.
	ErrCancelled = errors.New("receive cancelled")
	// ErrNoInterface is returned when a multicast join found no usable
	// interface at all.
	ErrNoInterface = errors.New("no multicast-capable interface")
)

// SetupError reports a socket setup failure (resolve, bind, setsockopt,
// join). After a SetupError the socket must be considered unusable and
// closed; no partial setup is kept alive.
type SetupError struct {
	Op  string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

func setupErr(op string, err error) *SetupError {
	return &SetupError{Op: op, Err: err}
}

package probe

import (
	"errors"
	"fmt"
)

var (
	// ErrToolNotFound indicates a required tool or compiler is not on the
	// search path. Probes fail with it before any trial runs.
	ErrToolNotFound = errors.New("tool not found")

	// ErrLinkFailed indicates a trial compile, link or tool run did not
	// succeed.
	ErrLinkFailed = errors.New("link trial failed")

	// ErrUnknownProbe indicates no probe is registered under a name.
	ErrUnknownProbe = errors.New("no such probe")

	// ErrVersionTooLow indicates a dependency was found but is older than
	// the requested minimum.
	ErrVersionTooLow = errors.New("version too low")
)

// Error wraps a probe failure with the probe and the step that failed.
type Error struct {
	Probe string // Probe name
	Op    string // Step that failed, e.g. "link" or "whereis moc"
	Err   error  // Underlying error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %v", e.Probe, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Probe, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

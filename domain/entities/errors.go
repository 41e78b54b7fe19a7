package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth is returned when the switch rejects the credentials.
	ErrAuth = errors.New("authentication failed")
	// ErrTimeout is returned when a session step does not finish in time.
	ErrTimeout = errors.New("timed out")
	// ErrConnect covers every other failure to open a session.
	ErrConnect = errors.New("connection error")
	// ErrExec is returned when a command cannot be executed on an open session.
	ErrExec = errors.New("command execution failed")
)

// ConnectFailure is the per-device outcome when no session could be opened
type ConnectFailure struct {
	Device DeviceSpec
	Reason error
}

func (c *ConnectFailure) Error() string {
	return fmt.Sprintf("connection to %s (%s) failed: %v", c.Device.DisplayName(), c.Device.IP, c.Reason)
}

func (c *ConnectFailure) Unwrap() error {
	return c.Reason
}

// Kind names the failure class for logs and metrics
func (c *ConnectFailure) Kind() string {
	switch {
	case errors.Is(c.Reason, ErrAuth):
		return "auth"
	case errors.Is(c.Reason, ErrTimeout):
		return "timeout"
	default:
		return "connect"
	}
}

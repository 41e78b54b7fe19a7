package ports

import (
	"context"

	"github.com/carlosrabelo/swhealth/domain/entities"
)

//go:generate mockgen -destination=../../internal/mock/ports/mock_ports.go -package=mock_ports . Transport,Session,DeviceInspector,ReportSink,RunHistory

// Transport opens interactive command sessions to switches
type Transport interface {
	// Open logs in and prepares the session. Failures wrap entities.ErrAuth,
	// entities.ErrTimeout or entities.ErrConnect.
	Open(ctx context.Context, spec entities.DeviceSpec) (Session, error)
}

// Session is a live command channel bound to exactly one switch
type Session interface {
	// Exec sends command and returns the output read until promptPattern matches
	// the trailing line. An empty pattern waits for the device's own prompt.
	Exec(command, promptPattern string) (string, error)
	// Close releases the session. Calling it more than once is safe.
	Close() error
}

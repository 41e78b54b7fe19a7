package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/carlosrabelo/swhealth/domain/entities"
	"github.com/carlosrabelo/swhealth/domain/ports"
	"github.com/carlosrabelo/swhealth/internal/logger"
	"github.com/carlosrabelo/swhealth/platform"
)

const (
	DefaultConnectTimeout = 20 * time.Second
	DefaultCommandTimeout = 30 * time.Second
)

// Options configures session establishment and command execution
type Options struct {
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
	Log            logger.Logger
}

// Transport opens SSH or Telnet CLI sessions depending on the device spec
type Transport struct {
	opts   Options
	dialer *net.Dialer
}

// New creates a transport, filling unset timeouts with defaults
func New(opts Options) *Transport {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = DefaultCommandTimeout
	}
	return &Transport{
		opts:   opts,
		dialer: &net.Dialer{Timeout: opts.ConnectTimeout},
	}
}

// Open connects, authenticates and prepares a session. The whole sequence,
// session preparation commands included, is bounded by the connect timeout.
func (t *Transport) Open(ctx context.Context, spec entities.DeviceSpec) (ports.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify("open", err)
	}

	driver, err := platform.Get(spec.DeviceType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrConnect, err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.opts.ConnectTimeout)
	defer cancel()

	addr := net.JoinHostPort(spec.IP, strconv.Itoa(spec.DialPort()))
	transportID := spec.TransportID()

	t.opts.Log.Debug().
		Str("switch", spec.DisplayName()).
		Str("addr", addr).
		Str("transport", transportID).
		Str("platform", driver.Name()).
		Msg("dialing")

	var conn io.ReadWriteCloser
	switch transportID {
	case entities.TransportTelnet:
		conn, err = t.dialTelnet(ctx, addr)
	case entities.TransportSSH:
		conn, err = t.dialSSH(ctx, addr, spec)
	default:
		return nil, fmt.Errorf("%w: unsupported transport %q", entities.ErrConnect, transportID)
	}
	if err != nil {
		return nil, err
	}

	session := newCLISession(conn, driver, spec.DisplayName(), t.opts.CommandTimeout, t.opts.Log)
	if err := session.login(ctx, spec, t.opts.ConnectTimeout, transportID == entities.TransportTelnet); err != nil {
		session.Close()
		return nil, err
	}

	return session, nil
}

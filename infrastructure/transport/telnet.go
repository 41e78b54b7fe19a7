package transport

import (
	"context"
	"io"

	"github.com/ziutek/telnet"
)

func (t *Transport) dialTelnet(ctx context.Context, addr string) (io.ReadWriteCloser, error) {
	rawConn, err := t.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, classify("dial "+addr, err)
	}

	conn, err := telnet.NewConn(rawConn)
	if err != nil {
		rawConn.Close()
		return nil, classify("telnet "+addr, err)
	}
	conn.SetUnixWriteMode(true)

	return conn, nil
}

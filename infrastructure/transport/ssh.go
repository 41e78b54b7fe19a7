package transport

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/carlosrabelo/swhealth/domain/entities"
)

const (
	ptyTerm   = "vt100"
	ptyWidth  = 511
	ptyHeight = 24
)

// sshStream is an interactive PTY shell on an SSH connection
type sshStream struct {
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	stdout  io.Reader
}

func (s *sshStream) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *sshStream) Write(p []byte) (int, error) {
	return s.stdin.Write(p)
}

func (s *sshStream) Close() error {
	_ = s.session.Close()
	return s.client.Close()
}

func sshClientConfig(spec entities.DeviceSpec, timeout time.Duration) *ssh.ClientConfig {
	password := string(spec.Password)

	cfg := &ssh.ClientConfig{
		User: spec.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range questions {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		// switches are addressed by inventory IP and rarely carry stable host keys
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}
	cfg.SetDefaults()
	// older IOS images only offer group14-sha1 and CBC ciphers
	cfg.KeyExchanges = append(cfg.KeyExchanges, "diffie-hellman-group14-sha1", "diffie-hellman-group1-sha1")
	cfg.Ciphers = append(cfg.Ciphers, "aes128-cbc", "3des-cbc")
	return cfg
}

func (t *Transport) dialSSH(ctx context.Context, addr string, spec entities.DeviceSpec) (io.ReadWriteCloser, error) {
	rawConn, err := t.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, classify("dial "+addr, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = rawConn.SetDeadline(deadline)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(rawConn, addr, sshClientConfig(spec, t.opts.ConnectTimeout))
	if err != nil {
		rawConn.Close()
		if strings.Contains(err.Error(), "unable to authenticate") {
			return nil, fmt.Errorf("ssh handshake with %s: %w: %v", addr, entities.ErrAuth, err)
		}
		return nil, classify("ssh handshake with "+addr, err)
	}
	_ = rawConn.SetDeadline(time.Time{})

	client := ssh.NewClient(clientConn, chans, reqs)

	session, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, classify("ssh session", err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 9600,
		ssh.TTY_OP_OSPEED: 9600,
	}
	if err := session.RequestPty(ptyTerm, ptyHeight, ptyWidth, modes); err != nil {
		session.Close()
		client.Close()
		return nil, classify("ssh pty", err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		client.Close()
		return nil, classify("ssh stdin", err)
	}

	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		client.Close()
		return nil, classify("ssh stdout", err)
	}

	if err := session.Shell(); err != nil {
		session.Close()
		client.Close()
		return nil, classify("ssh shell", err)
	}

	return &sshStream{
		client:  client,
		session: session,
		stdin:   stdin,
		stdout:  stdout,
	}, nil
}

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/carlosrabelo/swhealth/domain/entities"
	"github.com/carlosrabelo/swhealth/internal/logger"
	"github.com/carlosrabelo/swhealth/platform"
)

// cliSession implements ports.Session over any interactive byte stream
type cliSession struct {
	conn           io.ReadWriteCloser
	reader         *promptReader
	driver         platform.SwitchDriver
	device         string
	prompt         *regexp.Regexp
	commandTimeout time.Duration
	log            logger.Logger

	mu       sync.Mutex
	closed   bool
	closeErr error
	// desynced is set when a read ended before the prompt; the late output
	// must be drained before the next command is sent
	desynced bool
}

func newCLISession(conn io.ReadWriteCloser, driver platform.SwitchDriver, device string, commandTimeout time.Duration, log logger.Logger) *cliSession {
	return &cliSession{
		conn:           conn,
		reader:         newPromptReader(conn, device, log),
		driver:         driver,
		device:         device,
		prompt:         regexp.MustCompile(driver.PromptPattern()),
		commandTimeout: commandTimeout,
		log:            log,
	}
}

// Exec sends a command and returns its output without the echoed command
// line and the trailing prompt.
func (s *cliSession) Exec(command, promptPattern string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.exec(context.Background(), s.commandTimeout, command, promptPattern)
}

func (s *cliSession) exec(ctx context.Context, timeout time.Duration, command, promptPattern string) (string, error) {
	if s.closed {
		return "", fmt.Errorf("%w: %s: session closed", entities.ErrExec, command)
	}

	pattern := s.prompt
	if promptPattern != "" {
		re, err := regexp.Compile(promptPattern)
		if err != nil {
			return "", fmt.Errorf("%w: invalid prompt pattern %q: %v", entities.ErrExec, promptPattern, err)
		}
		pattern = re
	}

	if s.desynced {
		if err := s.resync(ctx, timeout); err != nil {
			return "", fmt.Errorf("%w: %s: session out of sync: %w", entities.ErrExec, command, err)
		}
	}

	s.log.Debug().Str("switch", s.device).Str("command", command).Msg("executing")

	if err := s.send(command); err != nil {
		return "", fmt.Errorf("%w: %s: %w", entities.ErrExec, command, err)
	}

	raw, _, err := s.reader.readUntil(ctx, timeout, pattern)
	if err != nil {
		s.desynced = true
		return "", fmt.Errorf("%w: %s: %w", entities.ErrExec, command, err)
	}

	return cleanOutput(raw, command), nil
}

// resync discards the output of an abandoned command up to the next prompt
func (s *cliSession) resync(ctx context.Context, timeout time.Duration) error {
	discarded, _, err := s.reader.readUntil(ctx, timeout, s.prompt)
	if err != nil {
		return err
	}
	s.desynced = false
	s.log.Debug().Str("switch", s.device).Int("bytes", len(discarded)).Msg("discarded late output")
	return nil
}

// Close releases the session. Only the first call touches the connection.
func (s *cliSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.reader.stop()
	s.closeErr = s.conn.Close()
	s.log.Debug().Str("switch", s.device).Msg("disconnected")
	return s.closeErr
}

func (s *cliSession) send(line string) error {
	_, err := s.conn.Write([]byte(line + "\n"))
	return err
}

// login drives the session from connect to a prepared privileged prompt.
// interactiveAuth is set when credentials are exchanged in-band (telnet).
func (s *cliSession) login(ctx context.Context, spec entities.DeviceSpec, timeout time.Duration, interactiveAuth bool) error {
	failure := regexp.MustCompile(s.driver.AuthFailurePattern())
	// configopaque redacts on String(), the raw value only goes on the wire
	steps := s.driver.AuthenticationSequence(spec.Username, string(spec.Password))

	var (
		output string
		err    error
	)

	if interactiveAuth && len(steps) > 0 {
		restart := regexp.MustCompile(steps[0].WaitFor)
	sequence:
		for i, step := range steps {
			patterns := []*regexp.Regexp{regexp.MustCompile(step.WaitFor), s.prompt}
			if i > 0 {
				patterns = append(patterns, restart)
			}

			var idx int
			output, idx, err = s.reader.readUntil(ctx, timeout, patterns...)
			if err != nil {
				return classify("login", err)
			}
			if failure.MatchString(output) || idx == 2 {
				return fmt.Errorf("login: %w: %s", entities.ErrAuth, lastMeaningfulLine(output))
			}
			if idx == 1 {
				// no login dialogue, already at a prompt
				break sequence
			}

			if step.Secret {
				s.log.Debug().Str("switch", s.device).Msg("sending secret")
			} else {
				s.log.Debug().Str("switch", s.device).Str("value", step.SendCmd).Msg("sending login value")
			}
			if err := s.send(step.SendCmd); err != nil {
				return classify("login", err)
			}

			if i == len(steps)-1 {
				var last int
				output, last, err = s.reader.readUntil(ctx, timeout, s.prompt, restart)
				if err != nil {
					return classify("login", err)
				}
				if failure.MatchString(output) || last == 1 {
					return fmt.Errorf("login: %w: %s", entities.ErrAuth, lastMeaningfulLine(output))
				}
			}
		}
	} else {
		output, _, err = s.reader.readUntil(ctx, timeout, s.prompt)
		if err != nil {
			return classify("login", err)
		}
	}

	current := strings.TrimSpace(trailingLine(output))
	if strings.HasSuffix(current, ">") && spec.EnablePassword != "" {
		current, err = s.enable(ctx, spec, timeout, secretPrompt(steps))
		if err != nil {
			return err
		}
	} else if strings.HasSuffix(current, ">") {
		s.log.Debug().Str("switch", s.device).Msg("no enable password, staying in user exec")
	}

	if base := basePromptPattern(current); base != nil {
		s.prompt = base
	}
	s.log.Debug().Str("switch", s.device).Str("prompt", current).Msg("logged in")

	for _, command := range s.driver.SessionPreparation() {
		if _, err := s.exec(ctx, timeout, command, ""); err != nil {
			return classify("preparing session", err)
		}
	}

	return nil
}

func (s *cliSession) enable(ctx context.Context, spec entities.DeviceSpec, timeout time.Duration, password *regexp.Regexp) (string, error) {
	s.log.Debug().Str("switch", s.device).Msg("elevating to privileged mode")

	if err := s.send(s.driver.EnableCommand()); err != nil {
		return "", classify("enable", err)
	}

	output, idx, err := s.reader.readUntil(ctx, timeout, password, s.prompt)
	if err != nil {
		return "", classify("enable", err)
	}
	if idx == 0 {
		s.log.Debug().Str("switch", s.device).Msg("sending secret")
		if err := s.send(string(spec.EnablePassword)); err != nil {
			return "", classify("enable", err)
		}
		output, idx, err = s.reader.readUntil(ctx, timeout, s.prompt, password)
		if err != nil {
			return "", classify("enable", err)
		}
		if idx == 1 {
			return "", fmt.Errorf("enable: %w: enable password rejected", entities.ErrAuth)
		}
	}

	current := strings.TrimSpace(trailingLine(output))
	if !strings.HasSuffix(current, "#") {
		return "", fmt.Errorf("enable: %w: still at %q", entities.ErrAuth, current)
	}
	return current, nil
}

// classify maps a low level failure onto the session error kinds
func classify(stage string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, entities.ErrAuth), errors.Is(err, entities.ErrTimeout), errors.Is(err, entities.ErrConnect):
		return fmt.Errorf("%s: %w", stage, err)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%s: %w: %v", stage, entities.ErrTimeout, err)
	default:
		return fmt.Errorf("%s: %w: %v", stage, entities.ErrConnect, err)
	}
}

func secretPrompt(steps []entities.AuthPrompt) *regexp.Regexp {
	for _, step := range steps {
		if step.Secret {
			return regexp.MustCompile(step.WaitFor)
		}
	}
	return regexp.MustCompile(`(?i)password:\s*$`)
}

// basePromptPattern matches the device's own prompt in any exec or config mode
func basePromptPattern(promptLine string) *regexp.Regexp {
	stem := strings.TrimRight(strings.TrimSpace(promptLine), ">#")
	if stem == "" {
		return nil
	}
	return regexp.MustCompile(regexp.QuoteMeta(stem) + `(\([^)]*\))?[>#]\s*$`)
}

func cleanOutput(raw, command string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "")
	lines := strings.Split(text, "\n")
	if len(lines) > 0 {
		lines = lines[:len(lines)-1]
	}

	// anything before the echo is not ours
	echo := strings.TrimSpace(command)
	for i, line := range lines {
		if echo != "" && strings.Contains(line, echo) {
			lines = lines[i+1:]
			break
		}
	}
	return strings.Join(lines, "\n")
}

func lastMeaningfulLine(output string) string {
	lines := strings.Split(strings.ReplaceAll(output, "\r", ""), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" && strings.HasPrefix(line, "%") {
			return line
		}
	}
	return "credentials rejected"
}

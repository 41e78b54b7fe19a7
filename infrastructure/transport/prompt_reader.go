package transport

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/carlosrabelo/swhealth/domain/entities"
	"github.com/carlosrabelo/swhealth/internal/logger"
)

const BufferSize = 4096

// promptReader pumps a session's output into a channel so reads can be bounded
// by a timer regardless of whether the underlying conn supports deadlines.
type promptReader struct {
	chunks   chan []byte
	errc     chan error
	done     chan struct{}
	stopOnce sync.Once
	device   string
	log      logger.Logger
}

func newPromptReader(r io.Reader, device string, log logger.Logger) *promptReader {
	p := &promptReader{
		chunks: make(chan []byte),
		errc:   make(chan error, 1),
		done:   make(chan struct{}),
		device: device,
		log:    log,
	}
	go p.pump(r)
	return p
}

func (p *promptReader) pump(r io.Reader) {
	buffer := make([]byte, BufferSize)
	for {
		n, err := r.Read(buffer)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buffer[:n])
			select {
			case p.chunks <- chunk:
			case <-p.done:
				return
			}
		}
		if err != nil {
			p.errc <- err
			return
		}
	}
}

// stop lets the pump exit. A Read already in flight only returns once the
// underlying conn is closed.
func (p *promptReader) stop() {
	p.stopOnce.Do(func() { close(p.done) })
}

// readUntil accumulates output until one of patterns matches the trailing line
// and returns the output with the index of the matching pattern.
func (p *promptReader) readUntil(ctx context.Context, timeout time.Duration, patterns ...*regexp.Regexp) (string, int, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var output strings.Builder
	output.Grow(BufferSize)

	for {
		select {
		case chunk := <-p.chunks:
			output.Write(chunk)
			p.log.Trace().Str("switch", p.device).Str("raw", string(chunk)).Msg("switch output")
			tail := trailingLine(output.String())
			for i, re := range patterns {
				if re.MatchString(tail) {
					return output.String(), i, nil
				}
			}
		case err := <-p.errc:
			// later reads must see the same failure
			p.errc <- err
			return output.String(), -1, fmt.Errorf("read error: %w", err)
		case <-timer.C:
			return output.String(), -1, fmt.Errorf("%w waiting for %s", entities.ErrTimeout, describePatterns(patterns))
		case <-ctx.Done():
			return output.String(), -1, ctx.Err()
		}
	}
}

func trailingLine(output string) string {
	if i := strings.LastIndexByte(output, '\n'); i >= 0 {
		output = output[i+1:]
	}
	return strings.Trim(output, "\r\x00")
}

func describePatterns(patterns []*regexp.Regexp) string {
	parts := make([]string, 0, len(patterns))
	for _, re := range patterns {
		parts = append(parts, fmt.Sprintf("%q", re.String()))
	}
	return strings.Join(parts, ", ")
}

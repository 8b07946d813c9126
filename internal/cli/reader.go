package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// ContextReader reads lines from a reader while respecting context
// cancellation, so Ctrl-C interrupts a pending prompt.
type ContextReader struct {
	reader      *bufio.Reader
	readingLock sync.Mutex
}

// NewContextReader creates a context-aware line reader.
func NewContextReader(reader io.Reader) *ContextReader {
	if reader == nil {
		panic("reader cannot be nil")
	}
	return &ContextReader{reader: bufio.NewReader(reader)}
}

// ReadLine reads one trimmed line, returning ErrInputCancelled if the
// context is canceled before input arrives. A canceled read leaves its
// goroutine running until the underlying reader unblocks.
func (r *ContextReader) ReadLine(ctx context.Context) (string, error) {
	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		r.readingLock.Lock()
		defer r.readingLock.Unlock()

		value, err := r.reader.ReadString('\n')
		resultCh <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-resultCh:
		if res.err != nil && res.err != io.EOF {
			return "", res.err
		}
		line := strings.TrimSpace(res.value)
		if res.err == io.EOF && line == "" {
			return "", io.EOF
		}
		return line, nil
	}
}

package speech

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// LineRecognizer treats every non-empty line of a reader as a final
// transcript. It is how the terminal client and external speech-to-text
// programs feed a session. Recognition ends for good at EOF.
type LineRecognizer struct {
	r     io.Reader
	once  sync.Once
	lines chan string
}

func NewLineRecognizer(r io.Reader) *LineRecognizer {
	return &LineRecognizer{r: r, lines: make(chan string)}
}

func (l *LineRecognizer) Listen(ctx context.Context) (<-chan Transcript, error) {
	l.once.Do(func() { go l.scan() })

	out := make(chan Transcript)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case line, ok := <-l.lines:
				if !ok {
					return
				}
				select {
				case out <- NewTranscript(line, true):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// scan is the only reader of r, so a restarted Listen never races a blocked
// read from the previous one.
func (l *LineRecognizer) scan() {
	defer close(l.lines)
	scanner := bufio.NewScanner(l.r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		l.lines <- line
	}
}

// CommandRecognizer runs an external speech-to-text program and reads one
// transcript per output line. Lines prefixed with "partial:" are interim
// results. Each Listen starts a fresh process.
type CommandRecognizer struct {
	Command string
	Args    []string
}

func (c *CommandRecognizer) Listen(ctx context.Context) (<-chan Transcript, error) {
	if strings.TrimSpace(c.Command) == "" {
		return nil, ErrRecognitionUnavailable
	}

	cmd := exec.CommandContext(ctx, c.Command, c.Args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("recognizer stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start recognizer %q: %w", c.Command, err)
	}

	out := make(chan Transcript, 16)
	go func() {
		defer close(out)
		defer func() { _ = cmd.Wait() }()

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			final := true
			if rest, ok := strings.CutPrefix(line, "partial:"); ok {
				line, final = strings.TrimSpace(rest), false
			}
			select {
			case out <- NewTranscript(line, final):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

package speech

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Console "speaks" by printing each utterance on its own line.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	prefix string
}

func NewConsole(w io.Writer, prefix string) *Console {
	return &Console{w: w, prefix: prefix}
}

func (c *Console) Speak(ctx context.Context, text string, _ Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "%s%s\n", c.prefix, text)
	return err
}

func (c *Console) Stop() {}

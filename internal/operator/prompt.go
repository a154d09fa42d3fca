// Package operator provides the human-in-the-loop confirmation hook used when
// the crawl hits an anti-automation challenge it cannot clear on its own.
package operator

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// Confirmer blocks until an external actor confirms it is safe to proceed.
type Confirmer interface {
	// AwaitConfirmation prints the message and returns once confirmation
	// arrives, or with ctx.Err() if the run is canceled while waiting.
	AwaitConfirmation(ctx context.Context, message string) error
}

// Prompt is a Confirmer that writes the message to out and waits for a line
// on in. The wait itself is intentionally unbounded; only ctx cancels it.
type Prompt struct {
	in  io.Reader
	out io.Writer
}

// NewPrompt builds a Prompt over the given reader and writer, typically
// os.Stdin and os.Stderr.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: in, out: out}
}

// AwaitConfirmation implements Confirmer.
func (p *Prompt) AwaitConfirmation(ctx context.Context, message string) error {
	if _, err := fmt.Fprintf(p.out, "%s\nPress Enter to continue...\n", message); err != nil {
		return fmt.Errorf("write prompt: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(p.in)
		_, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			done <- fmt.Errorf("read confirmation: %w", err)
			return
		}
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("confirmation wait canceled: %w", ctx.Err())
	}
}

// AutoConfirm is a Confirmer that returns immediately. Used in tests and in
// unattended runs where a challenge should not halt the process.
type AutoConfirm struct{}

// AwaitConfirmation implements Confirmer.
func (AutoConfirm) AwaitConfirmation(ctx context.Context, _ string) error {
	return ctx.Err()
}

package operator

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPrompt_AwaitConfirmation_ReturnsOnEnter(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewPrompt(strings.NewReader("\n"), &out)

	err := p.AwaitConfirmation(context.Background(), "solve the challenge")
	require.NoError(t, err)
	require.Contains(t, out.String(), "solve the challenge")
}

func TestPrompt_AwaitConfirmation_ReturnsOnEOF(t *testing.T) {
	t.Parallel()

	p := NewPrompt(strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, p.AwaitConfirmation(context.Background(), "msg"))
}

func TestPrompt_AwaitConfirmation_CanceledContext(t *testing.T) {
	t.Parallel()

	// A pipe with no writer keeps the prompt blocked until the context
	// cancels it.
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	p := NewPrompt(r, &bytes.Buffer{})
	err := p.AwaitConfirmation(ctx, "msg")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAutoConfirm_ReturnsImmediately(t *testing.T) {
	t.Parallel()

	require.NoError(t, AutoConfirm{}.AwaitConfirmation(context.Background(), "msg"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, AutoConfirm{}.AwaitConfirmation(ctx, "msg"))
}

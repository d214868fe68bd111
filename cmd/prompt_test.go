package cmd

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsYes(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"y", "Y", "yes", " YES \n", "Yes\r\n"} {
		assert.True(t, isYes(in), in)
	}
	for _, in := range []string{"", "n", "no", "yep", "ja", "y es"} {
		assert.False(t, isYes(in), in)
	}
}

func TestPrompterConfirm(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("yes\nnope\ny"), &out)

	first, err := p.confirm(ctx, questionDryRun)
	require.NoError(t, err)
	second, err := p.confirm(ctx, questionDownload)
	require.NoError(t, err)
	third, err := p.confirm(ctx, questionSaveJSON)
	require.NoError(t, err)
	fourth, err := p.confirm(ctx, "again?")
	require.NoError(t, err)

	assert.Equal(t, []bool{true, false, true, false}, []bool{first, second, third, fourth})
	assert.Contains(t, out.String(), "Do you want to do a dry run? (y/n): ")
}

func TestPrompterConfirmReturnsOnCancel(t *testing.T) {
	t.Parallel()

	stdin, writer := io.Pipe()
	t.Cleanup(func() { _ = writer.Close() })
	p := newPrompter(stdin, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.confirm(ctx, questionDryRun)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("confirm still blocked after cancel")
	}
}

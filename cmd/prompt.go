package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompt questions, asked in this order.
const (
	questionDryRun   = "Do you want to do a dry run?"
	questionDownload = "Do you want to download images?"
	questionSaveJSON = "Do you want to save the data to JSON?"
)

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// confirm asks a yes/no question. Only y or yes (any case) count as yes; an
// empty answer or closed input counts as no. It returns ctx.Err() as soon as
// ctx is done, even while the read is still blocked.
func (p *prompter) confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := fmt.Fprintf(p.out, "%s (y/n): ", question); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}

	type answer struct {
		line string
		err  error
	}
	read := make(chan answer, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		read <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-read:
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return false, fmt.Errorf("read answer: %w", a.err)
		}
		return isYes(a.line), nil
	}
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

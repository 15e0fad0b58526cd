package notify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks the user to approve an action.
type Confirmer interface {
	RequestConfirmation(ctx context.Context, prompt string) (bool, error)
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmerFunc) RequestConfirmation(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Static answers every request the same way.
type Static bool

func (s Static) RequestConfirmation(context.Context, string) (bool, error) {
	return bool(s), nil
}

// Prompt asks on a terminal: it writes the prompt to Out and reads one
// line from In. Only "y" and "yes" (any case) confirm.
type Prompt struct {
	In  io.Reader
	Out io.Writer
}

// RequestConfirmation implements Confirmer. A closed input counts as "no".
func (p Prompt) RequestConfirmation(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprintf(p.Out, "%s [y/N]: ", prompt)

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		ch <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && a.err != io.EOF {
			return false, a.err
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

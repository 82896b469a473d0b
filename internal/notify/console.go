package notify

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Console writes notifications to a writer instead of a channel. Used when
// no webhook is configured, and by tests.
type Console struct {
	out io.Writer
}

// NewConsole creates a console notifier writing to w; nil means stdout.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{out: w}
}

// SendNotice prints the formatted notice. Printing cannot meaningfully
// fail to deliver, so it always confirms.
func (c *Console) SendNotice(_ context.Context, n Notice) bool {
	fmt.Fprintln(c.out, FormatNotice(n))
	return true
}

// SendGeneral prints run narration.
func (c *Console) SendGeneral(_ context.Context, message string) bool {
	fmt.Fprintln(c.out, message)
	return true
}

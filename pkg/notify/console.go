package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var severityStyles = map[Severity]lipgloss.Style{
	SeverityInfo:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	SeveritySuccess: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
	SeverityWarning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
	SeverityError:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
}

// Console prints notifications as one styled line each.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Notify implements Notifier.
func (c *Console) Notify(_ context.Context, n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	style, ok := severityStyles[n.Severity]
	if !ok {
		style = severityStyles[SeverityInfo]
	}
	label := n.Title
	if label == "" {
		label = string(n.Severity)
	}
	fmt.Fprintf(c.out, "%s %s\n", style.Render(label+":"), n.Message)
}

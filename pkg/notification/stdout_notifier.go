package notification

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	linkStyle   = lipgloss.NewStyle().Faint(true)
)

// StdoutNotifier prints notifications to a terminal
type StdoutNotifier struct {
	out io.Writer
}

// NewStdoutNotifier creates a notifier writing to stdout
func NewStdoutNotifier() *StdoutNotifier {
	return NewWriterNotifier(os.Stdout)
}

// NewWriterNotifier creates a notifier writing to w
func NewWriterNotifier(w io.Writer) *StdoutNotifier {
	return &StdoutNotifier{out: w}
}

// Send prints the notification
func (n *StdoutNotifier) Send(p Payload) error {
	_, err := fmt.Fprintf(n.out, "[NOTIFICATION] %s\n%s\n%s\n",
		headerStyle.Render(p.Header),
		p.Body,
		linkStyle.Render(p.Link))
	return err
}

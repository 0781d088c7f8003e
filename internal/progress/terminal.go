package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	barWidth   = 40
	clearLine  = "\r\x1b[2K"
	brandColor = "#1a73e8"
)

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(brandColor))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#188038"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d93025"))
)

// Terminal reports run progress on a writer. On a TTY it redraws a single
// bar line; elsewhere it prints one line per update. Safe for use from the
// run goroutine.
type Terminal struct {
	mu    sync.Mutex
	out   io.Writer
	tty   bool
	bar   progress.Model
	drawn bool
}

// New detects whether out is a terminal.
func New(out io.Writer) *Terminal {
	return NewWithMode(out, isTerminal(out))
}

// NewWithMode forces bar (tty) or line output.
func NewWithMode(out io.Writer, tty bool) *Terminal {
	return &Terminal{
		out: out,
		tty: tty,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Progress draws percent (0-100) and status.
func (t *Terminal) Progress(percent int, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}

	if !t.tty {
		fmt.Fprintf(t.out, "[%3d%%] %s\n", percent, status)
		return
	}
	fmt.Fprintf(t.out, "%s%s %s", clearLine, t.bar.ViewAs(float64(percent)/100), statusStyle.Render(status))
	t.drawn = true
}

// Clear removes the bar so the next output starts on a clean line.
func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tty && t.drawn {
		fmt.Fprint(t.out, clearLine)
	}
	t.drawn = false
}

// Success formats the closing line of a successful run.
func Success(msg string) string {
	return successStyle.Render(msg)
}

// Failure formats the closing line of a failed run.
func Failure(title, msg string) string {
	return errorStyle.Render(title+":") + " " + msg
}

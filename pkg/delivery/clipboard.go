// Package delivery places a formatted transcript where the user asked for it:
// the system clipboard by default, or any io.Writer.
package delivery

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	mserrors "github.com/otherjamesbrown/meetscribe-cli/pkg/errors"
)

// Runner executes a clipboard command, feeding it input on stdin.
// It exists so tests can substitute a fake without shelling out.
type Runner func(name string, args []string, stdin io.Reader) error

// execRunner is the production Runner backed by os/exec.
func execRunner(name string, args []string, stdin io.Reader) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	out, err := cmd.CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%s: %s: %w", name, strings.TrimSpace(string(out)), err)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Clipboard writes text to the system clipboard via a platform command.
type Clipboard struct {
	command string
	args    []string
	runner  Runner
}

// Option configures a Clipboard.
type Option func(*Clipboard)

// WithCommand overrides the platform default clipboard command.
func WithCommand(command string, args ...string) Option {
	return func(c *Clipboard) {
		c.command = command
		c.args = args
	}
}

// WithRunner substitutes the command runner (used in tests).
func WithRunner(r Runner) Option {
	return func(c *Clipboard) {
		c.runner = r
	}
}

// NewClipboard creates a Clipboard for the current platform. The default
// command is pbcopy on macOS, clip.exe on Windows, and the first of wl-copy
// or xclip found on PATH elsewhere.
func NewClipboard(opts ...Option) *Clipboard {
	c := &Clipboard{runner: execRunner}
	c.command, c.args = defaultCommand(runtime.GOOS, exec.LookPath)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// defaultCommand picks the clipboard command for an OS. lookPath is injected
// so the Linux probe is testable.
func defaultCommand(goos string, lookPath func(string) (string, error)) (string, []string) {
	switch goos {
	case "darwin":
		return "pbcopy", nil
	case "windows":
		return "clip.exe", nil
	default:
		if _, err := lookPath("wl-copy"); err == nil {
			return "wl-copy", nil
		}
		return "xclip", []string{"-selection", "clipboard"}
	}
}

// Write places text on the clipboard. Failures wrap ErrDelivery so callers
// can signal the user rather than fail silently.
func (c *Clipboard) Write(text string) error {
	if err := c.runner(c.command, c.args, strings.NewReader(text)); err != nil {
		return fmt.Errorf("copy to clipboard: %v: %w", err, mserrors.ErrDelivery)
	}
	return nil
}

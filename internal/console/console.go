// Package console provides the interactive prompts used when flags are
// missing. All prompt text is written to stderr so stdout stays reserved
// for extraction output.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/term"
)

// Console prompts the user for input.
type Console struct {
	in  *bufio.Reader
	out io.Writer

	// readSecret reads a key without echo. Nil falls back to a plain line
	// read, which keeps tests and non-terminal stdin working.
	readSecret func() (string, error)
}

// New returns a Console on stdin/stderr. Secret entry is no-echo when stdin
// is a terminal.
func New() *Console {
	c := &Console{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stderr,
	}
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		c.readSecret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			return string(b), err
		}
	}
	return c
}

// NewWith returns a Console on the given reader and writer.
func NewWith(r io.Reader, w io.Writer) *Console {
	return &Console{in: bufio.NewReader(r), out: w}
}

// Ask prompts for a line of input. When the answer is empty, def is
// returned.
func (c *Console) Ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(c.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(c.out, "%s: ", label)
	}

	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// AskSecret prompts for a key without echoing it back.
func (c *Console) AskSecret(label string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", label)

	if c.readSecret != nil {
		s, err := c.readSecret()
		fmt.Fprintln(c.out)
		if err != nil {
			return "", eris.Wrap(err, "console: read secret")
		}
		return strings.TrimSpace(s), nil
	}
	return c.readLine()
}

// Select prints a numbered menu and returns the index of the chosen option.
// Invalid answers re-prompt.
func (c *Console) Select(label string, options []string) (int, error) {
	fmt.Fprintf(c.out, "%s:\n", label)
	for i, opt := range options {
		fmt.Fprintf(c.out, "  %d. %s\n", i+1, opt)
	}

	for {
		fmt.Fprintf(c.out, "Enter the number of your choice: ")
		line, err := c.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(c.out, "Please enter a number between 1 and %d.\n", len(options))
	}
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", eris.Wrap(err, "console: read input")
	}
	return strings.TrimSpace(line), nil
}

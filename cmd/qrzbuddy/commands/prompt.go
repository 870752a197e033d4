package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"qrzbuddy/internal/lookup"

	"golang.org/x/term"
)

// terminalPrompter asks for credentials on the controlling terminal. It
// declines when stdin is not a terminal.
type terminalPrompter struct {
	in  *os.File
	out io.Writer
}

func newTerminalPrompter() terminalPrompter {
	return terminalPrompter{in: os.Stdin, out: os.Stderr}
}

func (p terminalPrompter) interactive() bool {
	return term.IsTerminal(int(p.in.Fd()))
}

func (p terminalPrompter) PromptUsername(ctx context.Context) (string, error) {
	if !p.interactive() {
		return "", lookup.ErrPromptDeclined
	}
	fmt.Fprint(p.out, "QRZ username: ")
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("%w: %w", lookup.ErrPromptDeclined, err)
	}
	username := strings.TrimSpace(line)
	if username == "" {
		return "", lookup.ErrPromptDeclined
	}
	return username, nil
}

func (p terminalPrompter) PromptPassword(ctx context.Context, username string) (string, error) {
	if !p.interactive() {
		return "", lookup.ErrPromptDeclined
	}
	fmt.Fprintf(p.out, "QRZ password for %s: ", username)
	password, err := term.ReadPassword(int(p.in.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("%w: %w", lookup.ErrPromptDeclined, err)
	}
	if len(password) == 0 {
		return "", lookup.ErrPromptDeclined
	}
	return string(password), nil
}

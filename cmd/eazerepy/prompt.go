package eazerepy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers from the terminal. Passwords are read without echo when the input is a TTY.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

// NewPrompter creates a prompter over in and out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.tty = true
	}
	return p
}

// Interactive reports whether input comes from a terminal.
func (p *Prompter) Interactive() bool { return p.tty }

// Line prints label and reads one trimmed line. EOF with no data returns io.EOF.
func (p *Prompter) Line(label string) (string, error) {
	if label != "" {
		fmt.Fprint(p.out, label)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Password reads a secret without echo on a terminal.
func (p *Prompter) Password(label string) (string, error) {
	if !p.tty {
		return p.Line(label)
	}
	fmt.Fprint(p.out, label)
	data, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Lines reads entries until a blank line or EOF.
func (p *Prompter) Lines(label string) ([]string, error) {
	if label != "" {
		fmt.Fprintln(p.out, label)
	}
	var out []string
	for {
		line, err := p.Line("  > ")
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if line == "" {
			return out, nil
		}
		out = append(out, line)
	}
}

// Confirm asks a yes/no question; anything but y/yes declines.
func (p *Prompter) Confirm(prompt string) (bool, error) {
	line, err := p.Line(prompt + " [y/N] ")
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

package iocli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio reads lines from in and writes to out.
// Passwords are read without echo when in is a terminal.
type Stdio struct {
	reader *bufio.Reader
	out    io.Writer
	fd     int
	tty    bool
}

// NewStdio uses the process stdin and stdout
func NewStdio() IO {
	fd := int(os.Stdin.Fd())
	return &Stdio{
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		fd:     fd,
		tty:    term.IsTerminal(fd),
	}
}

// New uses the given streams; it is never interactive
func New(in io.Reader, out io.Writer) IO {
	return &Stdio{reader: bufio.NewReader(in), out: out, fd: -1}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *Stdio) Interactive() bool {
	return s.tty
}

// ReadInput prints prompt and returns the next line without surrounding space.
// A final line without newline is returned before io.EOF.
func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	input, err := s.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && input != "" {
			return strings.TrimSpace(input), nil
		}
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func (s *Stdio) ReadPassword(prompt string) (string, error) {
	if !s.tty {
		return s.ReadInput(prompt)
	}
	s.Printf("%s", prompt)
	pwBytes, err := term.ReadPassword(s.fd)
	s.Println("")
	if err != nil {
		return "", err
	}
	return string(pwBytes), nil
}

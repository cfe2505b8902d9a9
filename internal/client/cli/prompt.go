package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// errQuit ends the wizard, keeping the draft
var errQuit = errors.New("quit")

// clearValue empties a field in edit prompts
const clearValue = "-"

// edit shows current in brackets. Enter keeps it, "-" clears it.
// It reports whether the value changed.
func (c *Cli) edit(label, current string) (string, bool, error) {
	prompt := label + ": "
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]: ", label, preview(current))
	}
	in, err := c.read(prompt)
	if err != nil {
		return current, false, err
	}
	switch in {
	case "":
		return current, false, nil
	case clearValue:
		return "", current != "", nil
	default:
		return in, in != current, nil
	}
}

// editInt asks for an integer in [lo, hi] until one is given or the user keeps current
func (c *Cli) editInt(label string, current, lo, hi int) (int, bool, error) {
	for {
		in, err := c.read(fmt.Sprintf("%s (%d-%d) [%d]: ", label, lo, hi, current))
		if err != nil {
			return current, false, err
		}
		if in == "" {
			return current, false, nil
		}
		v, err := strconv.Atoi(in)
		if err != nil || v < lo || v > hi {
			c.io.Printf("Enter a number from %d to %d.\n", lo, hi)
			continue
		}
		return v, v != current, nil
	}
}

// confirm asks a yes/no question
func (c *Cli) confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	in, err := c.read(fmt.Sprintf("%s [%s]: ", question, hint))
	if err != nil {
		return def, err
	}
	switch strings.ToLower(in) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// read maps end of input to errQuit
func (c *Cli) read(prompt string) (string, error) {
	in, err := c.io.ReadInput(prompt)
	if errors.Is(err, io.EOF) {
		return "", errQuit
	}
	return in, err
}

func preview(s string) string {
	const maxPreview = 40
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > maxPreview {
		return string(r[:maxPreview-1]) + "…"
	}
	return s
}

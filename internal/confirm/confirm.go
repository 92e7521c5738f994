// Package confirm asks the user before an existing output file is replaced.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrNoAnswer = errors.New("input closed before an answer was given")

// Prompt asks on Out and reads answers from In. An empty answer or "y"
// accepts, "n" declines and anything else asks again.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// Confirm implements storage.Confirmer.
func (p *Prompt) Confirm(path string) (bool, error) {
	fmt.Fprintf(p.out, "Data file already exists: %s\n", path)
	for {
		fmt.Fprint(p.out, "Would you like to overwrite the file (y/n): ")

		line, err := p.in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			if errors.Is(err, io.EOF) {
				return false, ErrNoAnswer
			}
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(p.out, "Invalid Response")
		}
	}
}

// Always answers every confirmation with the same decision.
type Always bool

func (a Always) Confirm(string) (bool, error) {
	return bool(a), nil
}

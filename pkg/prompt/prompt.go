// Package prompt reads the answers of the interactive session.  Every
// read failure, including end of input, is fatal to the session: nothing
// is ever re-asked.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/pkg/errors"
)

var ErrInput = errors.New("error reading input")

// MaxToken bounds device paths and labels.
const MaxToken = 255

var (
	Blue  = color.New(color.FgBlue)
	Green = color.New(color.FgGreen)
	Red   = color.New(color.FgRed)
)

type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Out is where questions and session output are written.
func (p *Prompter) Out() io.Writer {
	return p.out
}

func (p *Prompter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *Prompter) ask(question string) {
	if question != "" {
		fmt.Fprintf(p.out, "%s ", question)
	}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.Wrapf(ErrInput, "%v", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *Prompter) nextNonBlank() (string, error) {
	for {
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) != "" {
			return line, nil
		}
	}
}

// Confirm returns true when the first character answered is y or Y.
func (p *Prompter) Confirm(question string) (bool, error) {
	p.ask(question)
	line, err := p.nextNonBlank()
	if err != nil {
		return false, err
	}
	c := []rune(strings.TrimSpace(line))[0]
	return unicode.ToLower(c) == 'y', nil
}

// Token returns the first whitespace-delimited word answered.
func (p *Prompter) Token(question string) (string, error) {
	p.ask(question)
	line, err := p.nextNonBlank()
	if err != nil {
		return "", err
	}
	fields := strings.Fields(line)
	if len(fields) > 1 {
		log.Debugf("Ignoring %q after %q", strings.Join(fields[1:], " "), fields[0])
	}
	if len(fields[0]) > MaxToken {
		return "", errors.Wrapf(ErrInput, "answer longer than %d characters", MaxToken)
	}
	return fields[0], nil
}

// Line returns the whole answered line, which may be empty.
func (p *Prompter) Line(question string) (string, error) {
	p.ask(question)
	return p.readLine()
}

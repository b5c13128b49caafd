package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter reads answers from in and writes prompts to out. The zero value
// uses stdin and stdout.
type Prompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

func (p *Prompter) line() string {
	if p.reader == nil {
		in := p.In
		if in == nil {
			in = os.Stdin
		}
		p.reader = bufio.NewReader(in)
	}
	s, _ := p.reader.ReadString('\n')
	return strings.TrimSpace(s)
}

func (p *Prompter) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

// Confirm asks a yes/no question. Returns true for yes.
func (p *Prompter) Confirm(prompt string) bool {
	fmt.Fprintf(p.out(), "%s [y/N]: ", StyleWarning.Render(prompt))
	ans := strings.ToLower(p.line())
	return ans == "y" || ans == "yes"
}

// ConfirmDanger is like Confirm but styled with the error color (for destructive actions).
func (p *Prompter) ConfirmDanger(prompt string) bool {
	fmt.Fprintf(p.out(), "%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	ans := strings.ToLower(p.line())
	return ans == "y" || ans == "yes"
}

// Input asks for a line of text, returning def when the answer is empty.
func (p *Prompter) Input(prompt, def string) string {
	if def != "" {
		fmt.Fprintf(p.out(), "%s %s: ", StyleInfo.Render(prompt), StyleMeta.Render("["+def+"]"))
	} else {
		fmt.Fprintf(p.out(), "%s: ", StyleInfo.Render(prompt))
	}
	if ans := p.line(); ans != "" {
		return ans
	}
	return def
}

var stdPrompter = &Prompter{}

// Confirm prompts on the terminal.
func Confirm(prompt string) bool { return stdPrompter.Confirm(prompt) }

// ConfirmDanger prompts on the terminal with danger styling.
func ConfirmDanger(prompt string) bool { return stdPrompter.ConfirmDanger(prompt) }

// PromptInput reads a line from the terminal.
func PromptInput(prompt, def string) string { return stdPrompter.Input(prompt, def) }

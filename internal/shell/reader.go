package shell

import (
	"bufio"
	"fmt"
	"io"

	"github.com/abiosoft/readline"
)

// LineReader supplies input lines. It returns io.EOF when input is closed.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

type plainReader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPlainReader reads newline terminated lines from in, writing the prompt to out.
func NewPlainReader(in io.Reader, out io.Writer) LineReader {
	return &plainReader{in: bufio.NewReader(in), out: out}
}

func (r *plainReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)

	line, err := r.in.ReadString('\n')
	if err == io.EOF && line != "" {
		return line, nil
	}
	return line, err
}

func (r *plainReader) Close() error {
	return nil
}

type editorReader struct {
	rl *readline.Instance
}

// NewEditorReader reads lines with an interactive line editor.
func NewEditorReader(historyFile string) (LineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return nil, err
	}
	return &editorReader{rl: rl}, nil
}

func (r *editorReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)

	line, err := r.rl.Readline()
	if err == readline.ErrInterrupt {
		// Discard the line and prompt again.
		return "", nil
	}
	return line, err
}

func (r *editorReader) Close() error {
	return r.rl.Close()
}

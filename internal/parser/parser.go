package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	PidMarker        = "$$"
	BackgroundMarker = "&"
	InputOperator    = "<"
	OutputOperator   = ">"
	CommentPrefix    = "#"

	DefaultMaxLine = 2048
	DefaultMaxArgs = 512
)

var (
	ErrLineTooLong   = errors.New("line too long")
	ErrTooManyArgs   = errors.New("too many arguments")
	ErrMissingTarget = errors.New("missing redirection target")
)

// Limits bounds the size of a single input line.
type Limits struct {
	MaxLine int
	MaxArgs int
}

func DefaultLimits() Limits {
	return Limits{MaxLine: DefaultMaxLine, MaxArgs: DefaultMaxArgs}
}

// Command is one parsed input line.
type Command struct {
	Args            []string
	InFile, OutFile string
	// Background is set when the line ended with the background marker. The
	// caller decides whether the marker is honored.
	Background bool
}

// Empty reports whether the line is blank or a comment.
func (c Command) Empty() bool {
	return len(c.Args) == 0 || strings.HasPrefix(c.Args[0], CommentPrefix)
}

func (c Command) Name() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// Tokenize splits a line on whitespace after dropping the trailing newline.
func Tokenize(line string, limits Limits) ([]string, error) {
	line = strings.TrimRight(line, "\r\n")

	if limits.MaxLine > 0 && len(line) > limits.MaxLine {
		return nil, fmt.Errorf("%w (max %d characters)", ErrLineTooLong, limits.MaxLine)
	}

	tokens := strings.Fields(line)
	if limits.MaxArgs > 0 && len(tokens) > limits.MaxArgs {
		return nil, fmt.Errorf("%w (max %d)", ErrTooManyArgs, limits.MaxArgs)
	}

	return tokens, nil
}

// Expand returns a copy of args with every PidMarker replaced by pid.
func Expand(args []string, pid int) []string {
	res := make([]string, len(args))
	id := strconv.Itoa(pid)

	for i, arg := range args {
		res[i] = strings.ReplaceAll(arg, PidMarker, id)
	}

	return res
}

// StripBackground removes a trailing background marker.
func StripBackground(args []string) ([]string, bool) {
	if len(args) > 0 && args[len(args)-1] == BackgroundMarker {
		return args[:len(args)-1], true
	}
	return args, false
}

// Parse tokenizes and expands a line. Redirection is left in Args, see Redirect.
func Parse(line string, pid int, limits Limits) (Command, error) {
	tokens, err := Tokenize(line, limits)
	if err != nil {
		return Command{}, err
	}

	if len(tokens) == 0 || strings.HasPrefix(tokens[0], CommentPrefix) {
		return Command{Args: tokens}, nil
	}

	var cmd Command
	cmd.Args, cmd.Background = StripBackground(Expand(tokens, pid))

	return cmd, nil
}

// Redirect extracts the input and output redirections of cmd. The last
// occurrence of each operator wins.
func Redirect(cmd Command) (Command, error) {
	res := Command{Background: cmd.Background}

	for i := 0; i < len(cmd.Args); i++ {
		switch cmd.Args[i] {
		case InputOperator, OutputOperator:
			if i+1 == len(cmd.Args) {
				return Command{}, fmt.Errorf("%w after '%s'", ErrMissingTarget, cmd.Args[i])
			}

			if cmd.Args[i] == InputOperator {
				res.InFile = cmd.Args[i+1]
			} else {
				res.OutFile = cmd.Args[i+1]
			}
			i++
		default:
			res.Args = append(res.Args, cmd.Args[i])
		}
	}

	if len(res.Args) == 0 {
		return Command{}, errors.New("missing command before redirection")
	}

	return res, nil
}

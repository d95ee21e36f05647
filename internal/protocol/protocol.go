// Package protocol defines the newline-delimited command protocol spoken
// between the controller and the generator.
package protocol

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Command is one request line understood by the generator.
type Command string

const (
	CommandGreet     Command = "Hi"
	CommandGetRandom Command = "GetRandom"
	CommandShutdown  Command = "Shutdown"
	// CommandUnknown is any line that does not name a known command.
	CommandUnknown Command = ""
)

// GreetReply is the literal line the generator answers a greeting with.
const GreetReply = "Hi"

// Closed range of integers produced for CommandGetRandom.
const (
	RandomMin = 0
	RandomMax = 1000
)

var knownCommands = map[Command]struct{}{
	CommandGreet:     {},
	CommandGetRandom: {},
	CommandShutdown:  {},
}

// ParseCommand maps a raw line (with or without its terminator) to a Command.
func ParseCommand(line string) Command {
	cmd := Command(strings.TrimSpace(line))
	if _, ok := knownCommands[cmd]; !ok {
		return CommandUnknown
	}
	return cmd
}

// ExpectsReply reports whether the generator answers cmd with exactly one line.
func (c Command) ExpectsReply() bool {
	return c == CommandGreet || c == CommandGetRandom
}

func (c Command) String() string {
	if c == CommandUnknown {
		return "<unknown>"
	}
	return string(c)
}

// WriteLine writes text plus the line terminator and flushes w.
func WriteLine(w *bufio.Writer, text string) error {
	if _, err := w.WriteString(text + "\n"); err != nil {
		return err
	}
	return w.Flush()
}

// ReadLine reads one line and strips the terminator and surrounding
// whitespace. A final unterminated line is returned with a nil error;
// io.EOF is only returned when nothing was read.
func ReadLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Package payload builds the multiline shell commands written during a probe.
package payload

import (
	"fmt"
	"strings"
)

// DefaultLineLength is the number of filler characters per line.
const DefaultLineLength = 50

// Command is a fully rendered probe command.
type Command struct {
	// Text is the exact byte sequence written to the terminal, including
	// the trailing newline that submits the command.
	Text string

	// Lines is the number of payload lines the command contains.
	Lines int

	// Bytes is len(Text). The report shows this measured size, never the
	// nominal one.
	Bytes int
}

// Build renders a command of the form
//
//	echo '<content>' | wc -c
//
// where content is lines rows of "Lnn " followed by lineLength filler
// characters, joined with newlines. Row labels are 1-based. The content sits
// inside single quotes, so the filler must never contain a quote character.
func Build(lines, lineLength int) Command {
	rows := make([]string, 0, lines)
	filler := strings.Repeat("a", lineLength)
	for i := 1; i <= lines; i++ {
		rows = append(rows, fmt.Sprintf("L%02d %s", i, filler))
	}
	content := strings.Join(rows, "\n")
	text := fmt.Sprintf("echo '%s' | wc -c\n", content)

	return Command{
		Text:  text,
		Lines: lines,
		Bytes: len(text),
	}
}

// Package report renders the probe banner, result table, and conclusion.
// Everything here goes to stdout; diagnostics stay on stderr.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jcansdale/macos-pty-multiline-bug/internal/probe"
)

// ruleWidth is the width of the framing rules around the banner and
// conclusion.
const ruleWidth = 60

var (
	okStatus      = color.New(color.FgGreen)
	blockedStatus = color.New(color.FgRed)
)

// Banner prints the report header naming the platform, the shell under
// test, and the per-write deadline.
func Banner(w io.Writer, platform, shell string, timeout time.Duration) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "macOS PTY + zsh Multiline Buffer Bug Reproducer")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Platform: %s\n", platform)
	fmt.Fprintf(w, "Shell: %s\n", shell)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Testing multiline commands of increasing size...")
	fmt.Fprintf(w, "(Each test has %s timeout)\n", timeout)
	fmt.Fprintln(w)
}

// Table renders one row per result, in suite order. Bytes is the measured
// command size, not the nominal one.
func Table(w io.Writer, results []probe.Result) {
	tableWriter := table.NewWriter()
	tableWriter.SetStyle(table.StyleLight)
	tableWriter.Style().Options.SeparateColumns = false
	tableWriter.AppendHeader(table.Row{"Lines", "Bytes", "Status"})
	for _, res := range results {
		tableWriter.AppendRow(table.Row{res.Lines, res.Bytes, statusCell(res.Completed)})
	}
	fmt.Fprintln(w, tableWriter.Render())
}

func statusCell(completed bool) string {
	if completed {
		return okStatus.Sprint("OK")
	}
	return blockedStatus.Sprint("BLOCKED")
}

// Conclusion prints the framed verdict for a finished suite.
func Conclusion(w io.Writer, blocked int) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "CONCLUSION:")
	if blocked > 0 {
		fmt.Fprintf(w, "  %d test(s) BLOCKED - bug is present on this system\n", blocked)
		fmt.Fprintln(w, "  Multiline commands >~1024 bytes block on macOS PTY")
	} else {
		fmt.Fprintln(w, "  All tests passed - bug not present on this system")
	}
	fmt.Fprintln(w, rule)
}

// Unsupported prints the explanation shown instead of a probe run on
// platforms without Unix pseudo-terminals.
func Unsupported(w io.Writer) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "PTY test not supported on this platform")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "This probe uses Unix pseudo-terminals, which are not")
	fmt.Fprintln(w, "available on Windows. The bug under test is macOS-specific.")
}

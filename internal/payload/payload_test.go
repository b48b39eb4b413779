package payload

import (
	"fmt"
	"strings"
	"testing"
)

func TestBuildExactSizes(t *testing.T) {
	// Sizes the default suite reports. Each line is 4 label characters plus
	// 50 fillers, lines are newline-joined, and the echo wrapper adds 16
	// bytes including the trailing newline.
	tests := []struct {
		lines int
		bytes int
	}{
		{10, 565},
		{15, 840},
		{18, 1005},
		{20, 1115},
		{25, 1390},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_lines", tt.lines), func(t *testing.T) {
			cmd := Build(tt.lines, DefaultLineLength)
			if cmd.Bytes != tt.bytes {
				t.Errorf("Build(%d, 50).Bytes = %d, want %d", tt.lines, cmd.Bytes, tt.bytes)
			}
			if cmd.Bytes != len(cmd.Text) {
				t.Errorf("Bytes = %d but len(Text) = %d", cmd.Bytes, len(cmd.Text))
			}
			if cmd.Lines != tt.lines {
				t.Errorf("Lines = %d, want %d", cmd.Lines, tt.lines)
			}
		})
	}
}

func TestBuildShape(t *testing.T) {
	cmd := Build(3, 5)

	if !strings.HasPrefix(cmd.Text, "echo '") {
		t.Errorf("command does not start with echo wrapper: %q", cmd.Text)
	}
	if !strings.HasSuffix(cmd.Text, "' | wc -c\n") {
		t.Errorf("command does not end with wc pipe and newline: %q", cmd.Text)
	}

	content := strings.TrimSuffix(strings.TrimPrefix(cmd.Text, "echo '"), "' | wc -c\n")
	rows := strings.Split(content, "\n")
	if len(rows) != 3 {
		t.Fatalf("expected 3 payload lines, got %d: %q", len(rows), content)
	}
	for i, row := range rows {
		want := fmt.Sprintf("L%02d aaaaa", i+1)
		if row != want {
			t.Errorf("row %d = %q, want %q", i, row, want)
		}
	}
}

func TestBuildLabelsAreOneBased(t *testing.T) {
	cmd := Build(1, 1)
	want := "echo 'L01 a' | wc -c\n"
	if cmd.Text != want {
		t.Errorf("Build(1, 1).Text = %q, want %q", cmd.Text, want)
	}
}

func TestBuildContentIsQuoteSafe(t *testing.T) {
	// The content rides inside single quotes; a quote in the payload would
	// change what the shell parses and invalidate the measurement.
	cmd := Build(25, DefaultLineLength)
	content := strings.TrimSuffix(strings.TrimPrefix(cmd.Text, "echo '"), "' | wc -c\n")
	if strings.Contains(content, "'") {
		t.Error("payload content contains a single quote")
	}
}

func TestBuildSizeGrowsWithLines(t *testing.T) {
	prev := Build(1, DefaultLineLength).Bytes
	for lines := 2; lines <= 30; lines++ {
		cur := Build(lines, DefaultLineLength).Bytes
		if cur <= prev {
			t.Fatalf("Bytes did not grow from %d to %d lines: %d <= %d", lines-1, lines, cur, prev)
		}
		prev = cur
	}
}

package cmd

import (
	"strings"
	"unicode/utf8"
)

// tile is one labelled box of a report banner, drawn in its status color.
type tile struct {
	label string
	color string
}

// block is a rectangle of painted lines. width is the visible width, which
// every line shares.
type block struct {
	lines []string
	width int
}

const tilePadding = 2

func boxLines(color string, inner int, content ...string) []string {
	lines := make([]string, 0, len(content)+2)
	lines = append(lines, paint(color, "╭"+strings.Repeat("─", inner)+"╮"))
	for _, text := range content {
		lines = append(lines, paint(color, "│"+center(text, inner)+"│"))
	}
	lines = append(lines, paint(color, "╰"+strings.Repeat("─", inner)+"╯"))
	return lines
}

func newTile(t tile, width int) block {
	return block{lines: boxLines(t.color, width-2, t.label), width: width}
}

// gradeBlock is the tall tile holding the overall letter grade.
func gradeBlock(grade, color string) block {
	const inner = 19
	lines := boxLines(color, inner, "", "", "GRADE", "", strings.ToUpper(grade), "", "")
	return block{lines: lines, width: inner + 2}
}

// stack places blocks on top of each other.
func stack(blocks ...block) block {
	var out block
	for _, b := range blocks {
		out.lines = append(out.lines, b.lines...)
		if b.width > out.width {
			out.width = b.width
		}
	}
	return out
}

// columns places blocks side by side, top aligned, separated by one space.
func columns(blocks ...block) []string {
	height := 0
	for _, b := range blocks {
		if len(b.lines) > height {
			height = len(b.lines)
		}
	}

	out := make([]string, 0, height)
	for i := 0; i < height; i++ {
		parts := make([]string, 0, len(blocks))
		for _, b := range blocks {
			if i < len(b.lines) {
				parts = append(parts, b.lines[i])
			} else {
				parts = append(parts, strings.Repeat(" ", b.width))
			}
		}
		out = append(out, strings.TrimRight(strings.Join(parts, " "), " "))
	}
	return out
}

// tileGrid lays tiles out in rows. Tiles in the same column share a width.
func tileGrid(rows [][]tile) []string {
	var widths []int
	for _, row := range rows {
		for j, t := range row {
			w := utf8.RuneCountInString(t.label) + 2*tilePadding + 2
			if j >= len(widths) {
				widths = append(widths, w)
			} else if w > widths[j] {
				widths[j] = w
			}
		}
	}

	var out []string
	for _, row := range rows {
		blocks := make([]block, 0, len(row))
		for j, t := range row {
			blocks = append(blocks, newTile(t, widths[j]))
		}
		out = append(out, columns(blocks...)...)
	}
	return out
}

func center(text string, width int) string {
	pad := width - utf8.RuneCountInString(text)
	if pad <= 0 {
		return text
	}
	left := pad / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", pad-left)
}

func padLeft(text string, width int) string {
	if n := utf8.RuneCountInString(text); n < width {
		return strings.Repeat(" ", width-n) + text
	}
	return text
}

func padRight(text string, width int) string {
	if n := utf8.RuneCountInString(text); n < width {
		return text + strings.Repeat(" ", width-n)
	}
	return text
}

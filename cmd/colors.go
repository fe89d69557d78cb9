package cmd

import (
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgBlue).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
	colorBold    = color.New(color.Bold).SprintFunc()
)

var namedColors = map[string]color.Attribute{
	"black":   color.FgBlack,
	"grey":    color.FgBlack,
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"cyan":    color.FgCyan,
	"white":   color.FgWhite,
}

// paint colors text by a vendor or palette color name. Empty and unknown names
// leave the text plain.
func paint(name, text string) string {
	attr, ok := namedColors[name]
	if !ok {
		return text
	}
	return color.New(attr).Sprint(text)
}

// paintBold is paint plus the bold attribute.
func paintBold(name, text string) string {
	attrs := []color.Attribute{color.Bold}
	if attr, ok := namedColors[name]; ok {
		attrs = append(attrs, attr)
	}
	return color.New(attrs...).Sprint(text)
}

// colorTable rewrites vendor color names that the terminal palette lacks.
// Every service keeps its own table since the vendor evolves them separately.
type colorTable map[string]string

func (t colorTable) normalize(name string) string {
	if mapped, ok := t[name]; ok {
		return mapped
	}
	return name
}

var (
	websecColors  = colorTable{"orange": "yellow"}
	sslColors     = colorTable{"orange": "yellow"}
	darkwebColors = colorTable{"orange": "yellow"}
	emailColors   = colorTable{"orange": "yellow"}
	mobileColors  = colorTable{"orange": "yellow"}
)

// gradeColor picks the tile color of a lower-cased letter grade.
func gradeColor(grade string) string {
	switch strings.ToLower(grade) {
	case "a+", "a", "a-":
		return "green"
	case "b+", "b", "b-":
		return "yellow"
	case "c+", "c", "f":
		return "red"
	}
	return "blue"
}

func formatCheckStatus(passed bool) string {
	if passed {
		return colorSuccess("passed")
	}
	return colorError("failed")
}

// titleCase upper-cases the first letter of every word, lower-casing the rest.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

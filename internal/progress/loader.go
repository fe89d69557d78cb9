package progress

import (
	"math"
	"strings"
)

const (
	barPadding    = 4
	subBarLength  = 5
	minLoaderSize = barPadding + subBarLength + 1
)

// Loader builds the frames of a bouncing ASCII progress bar. Frames depend only
// on the width, the step sequence, and the stored direction bit.
type Loader struct {
	length    int
	direction int
}

// NewLoader returns a loader whose frames are length characters wide.
func NewLoader(length int) *Loader {
	if length < minLoaderSize {
		length = minLoaderSize
	}
	return &Loader{length: length, direction: 1}
}

// Width is the frame width in characters.
func (l *Loader) Width() int {
	return l.length
}

// Reset restores the initial direction so a replay from step 0 reproduces the
// same frames.
func (l *Loader) Reset() {
	l.direction = 1
}

// Frame renders the bar for step.
func (l *Loader) Frame(step int) string {
	barLength := l.length - barPadding
	free := barLength - subBarLength

	fill := step % free
	if fill < 0 {
		fill += free
	}
	eased := int(math.RoundToEven(easeInOut(float64(fill)/float64(free), 0, float64(free), 1)))

	left := eased
	if l.direction < 0 {
		left = free - eased
	}
	right := barLength - (left + subBarLength)

	if fill == free-1 {
		l.direction = -l.direction
	}

	var b strings.Builder
	b.Grow(l.length)
	b.WriteString(" [")
	b.WriteString(strings.Repeat(" ", left))
	b.WriteString(strings.Repeat("=", subBarLength))
	b.WriteString(strings.Repeat(" ", right))
	b.WriteString("] ")
	return b.String()
}

// easeInOut is the quadratic ease-in-out curve.
func easeInOut(t, start, end, duration float64) float64 {
	t /= duration / 2
	if t < 1 {
		return end/2*t*t + start
	}
	t--
	return -end/2*(t*(t-2)-1) + start
}

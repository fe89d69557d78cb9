package progress

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	consts "github.com/khanhnv2901/iwtools/internal/shared/constants"
)

const (
	rowUp    = "\x1B[3A"
	rowClear = "\x1B[0K"
)

// Indicator renders an animated status line until its context is cancelled.
// It never touches the network and shares no state with the poll loop.
type Indicator struct {
	out   io.Writer
	tick  time.Duration
	paint func(a ...interface{}) string
}

// IndicatorOption configures an Indicator.
type IndicatorOption func(*Indicator)

// WithTick overrides the redraw interval.
func WithTick(d time.Duration) IndicatorOption {
	return func(i *Indicator) {
		if d > 0 {
			i.tick = d
		}
	}
}

// NewIndicator returns an indicator drawing to out.
func NewIndicator(out io.Writer, opts ...IndicatorOption) *Indicator {
	i := &Indicator{
		out:   out,
		tick:  consts.IndicatorTick,
		paint: color.New(color.FgBlue).SprintFunc(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run draws frames until ctx is done, then clears the animation and prints
// doneMessage. Cancellation is observed only between frames.
func (i *Indicator) Run(ctx context.Context, startMessage, doneMessage string) {
	loader := NewLoader(len(startMessage))
	ticker := time.NewTicker(i.tick)
	defer ticker.Stop()

	fmt.Fprintln(i.out, i.paint(startMessage))
	fmt.Fprint(i.out, "\n\n\n\n")

	for step := 0; ; step++ {
		fmt.Fprintln(i.out, rowUp+loader.Frame(step)+rowClear)
		fmt.Fprintln(i.out, "\n"+rowClear)

		select {
		case <-ctx.Done():
			fmt.Fprintln(i.out, i.paint(rowUp+rowClear+rowUp+rowClear+"\n"+rowClear+doneMessage+"\n"))
			return
		case <-ticker.C:
		}
	}
}

// Package progressbar implements functionality of printing a progress
// bar to a terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ProgressBar implements a progress bar that must be manually managed.
// That is, Display must be called whenever an updated progress bar
// should be printed. Each call redraws the bar on the current line.
type ProgressBar struct {
	out             io.Writer
	width           float64
	maxProgress     float64
	currentProgress float64
	description     string
	startTime       time.Time
	now             func() time.Time
}

// New returns a new ProgressBar that is width characters wide, reaches
// 100% after max calls to Increment, and prints to out
func New(out io.Writer, width, max int) *ProgressBar {
	if width < 1 || max < 1 {
		panic(fmt.Sprintf("new: width and max must be positive, have "+
			"(%d, %d)", width, max))
	}
	return &ProgressBar{
		out:         out,
		width:       float64(width),
		maxProgress: float64(max),
		startTime:   time.Now(),
		now:         time.Now,
	}
}

// Increment increments the internal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ProgressBar) Increment() {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// Describe sets the text printed after the bar, such as the current
// value of a training metric
func (p *ProgressBar) Describe(format string, args ...interface{}) {
	p.description = fmt.Sprintf(format, args...)
}

// String returns the progress bar as it would be displayed
func (p *ProgressBar) String() string {
	var bar strings.Builder
	bar.WriteString("|")

	currentProg := p.currentProgress / p.maxProgress * p.width
	for i := 0.0; i < currentProg; i++ {
		bar.WriteString("█")
	}
	for i := currentProg; i < p.width; i++ {
		bar.WriteString(" ")
	}
	fmt.Fprintf(&bar, "| [%.2f%% | %v/%v | elapsed: %v]",
		p.currentProgress/p.maxProgress*100, p.currentProgress,
		p.maxProgress, p.now().Sub(p.startTime).Truncate(time.Second))

	if p.description != "" {
		bar.WriteString(" ")
		bar.WriteString(p.description)
	}
	return bar.String()
}

// Display prints the progress bar over the current line
func (p *ProgressBar) Display() {
	fmt.Fprintf(p.out, "\r\033[K%v", p.String())
}

// Close prints the final state of the progress bar and moves to the
// next line
func (p *ProgressBar) Close() {
	p.Display()
	fmt.Fprintln(p.out)
}

package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/havonz/file-split-packer/internal/model"
)

// progressPrinter renders progress events as one rewritten line per
// phase. Events arrive on a single goroutine, so it holds no lock.
type progressPrinter struct {
	w     io.Writer
	phase model.Phase
	open  bool
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w}
}

// Print renders ev, ending the previous line when the phase changes.
func (p *progressPrinter) Print(ev model.ProgressEvent) {
	if p.open && ev.Phase != p.phase {
		fmt.Fprintln(p.w)
	}
	p.phase = ev.Phase
	p.open = true

	fmt.Fprintf(p.w, "\r%-9s %s / %s (%3.0f%%)%s",
		ev.Phase,
		humanize.IBytes(ev.ProcessedBytes),
		humanize.IBytes(ev.TotalBytes),
		ev.Fraction()*100,
		statusSuffix(ev))
}

// Finish terminates the current line, if any.
func (p *progressPrinter) Finish() {
	if p.open {
		fmt.Fprintln(p.w)
		p.open = false
	}
}

// statusSuffix prefers the event message, which already names the part.
func statusSuffix(ev model.ProgressEvent) string {
	if ev.Message != "" {
		return "  " + ev.Message
	}
	if ev.PartTotal <= 0 || ev.PartIndex <= 0 {
		return ""
	}
	return fmt.Sprintf(" part %d/%d", ev.PartIndex, ev.PartTotal)
}

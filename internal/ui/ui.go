// Package ui provides stderr status output and table rendering for kundali.
package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/papapumpkin/kundali/internal/birth"
	"github.com/papapumpkin/kundali/internal/dasha"
	"github.com/papapumpkin/kundali/internal/horoscope"
	"github.com/papapumpkin/kundali/internal/profile"
	"github.com/papapumpkin/kundali/internal/vedic"
)

// ANSI color codes.
const (
	reset   = "\033[0m"
	bold    = "\033[1m"
	dim     = "\033[2m"
	blue    = "\033[34m"
	yellow  = "\033[33m"
	green   = "\033[32m"
	red     = "\033[31m"
	cyan    = "\033[36m"
	magenta = "\033[35m"
)

// Printer writes human-oriented status lines. Tables go to stdout through
// the render functions; everything here goes to stderr.
type Printer struct {
	w       io.Writer
	verbose bool
}

func New() *Printer {
	return &Printer{w: os.Stderr}
}

// NewWriter returns a Printer writing to w.
func NewWriter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// SetVerbose enables Debug output.
func (p *Printer) SetVerbose(v bool) { p.verbose = v }

func (p *Printer) Banner() {
	fmt.Fprintln(p.w, bold+magenta+"  ╔═══════════════════════════════════╗"+reset)
	fmt.Fprintln(p.w, bold+magenta+"  ║"+reset+bold+"   KUNDALI  "+dim+"vedic natal horoscope"+reset+bold+magenta+"  ║"+reset)
	fmt.Fprintln(p.w, bold+magenta+"  ╚═══════════════════════════════════╝"+reset)
	fmt.Fprintln(p.w)
}

func (p *Printer) Info(msg string) {
	fmt.Fprintf(p.w, dim+"%s"+reset+"\n", msg)
}

func (p *Printer) Debug(format string, args ...any) {
	if !p.verbose {
		return
	}
	fmt.Fprintf(p.w, dim+"· "+format+reset+"\n", args...)
}

func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.w, green+bold+"✓ "+reset+msg)
}

func (p *Printer) Warn(msg string) {
	fmt.Fprintf(p.w, yellow+bold+"⚠ "+reset+"%s\n", msg)
}

func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, red+bold+"error: "+reset+"%s\n", msg)
}

// ChartHeader summarizes who and when before the tables are printed.
func (p *Printer) ChartHeader(h *horoscope.Horoscope, now time.Time) {
	fmt.Fprintf(p.w, "\n"+bold+cyan+"── %s ──"+reset+"\n", h.Birth.Name)
	fmt.Fprintf(p.w, "  born:      %s (UTC%s) at %s\n", h.Birth.Local.Format("2006-01-02 15:04:05"), h.Zone, h.Place)
	fmt.Fprintf(p.w, "  utc:       %s\n", h.UTC.Format(time.RFC3339))
	fmt.Fprintf(p.w, "  ayanamsa:  %s %s\n", h.Mode, dim+vedic.FormatDMS(h.Ayanamsa)+reset)
	fmt.Fprintf(p.w, "  lagna:     %s (D9 %s)\n", h.Rasi.Lagna, h.Navamsa.Lagna)
	if cur, ok := h.Current(now); ok {
		fmt.Fprintf(p.w, "  running:   "+blue+bold+"%s"+reset+dim+" until %s"+reset+"\n",
			LordPath(cur.Lords), cur.End.Format("2006-01-02"))
	}
	fmt.Fprintln(p.w)
}

// ValidationResult reports the outcome of checking one birth file.
func (p *Printer) ValidationResult(file string, err error) {
	if err == nil {
		fmt.Fprintf(p.w, green+bold+"✓ %s"+reset+" — valid\n", file)
		return
	}
	var verrs birth.ValidationErrors
	if !errors.As(err, &verrs) {
		fmt.Fprintf(p.w, red+bold+"✗ %s"+reset+" — %v\n", file, err)
		return
	}
	fmt.Fprintf(p.w, red+bold+"✗ %s"+reset+" — %d error(s):\n", file, len(verrs))
	for _, e := range verrs {
		fmt.Fprintf(p.w, "  "+red+"• "+reset+"%s\n", e)
	}
}

// WatchChange reports a change seen by the birth file watcher.
func (p *Printer) WatchChange(c birth.Change) {
	switch c.Kind {
	case birth.ChangeModified:
		fmt.Fprintf(p.w, cyan+"◆ %s"+reset+dim+" changed, recomputing"+reset+"\n", c.File)
	case birth.ChangeRemoved:
		fmt.Fprintf(p.w, dim+"◇ %s removed"+reset+"\n", c.File)
	case birth.ChangeInvalid:
		fmt.Fprintf(p.w, yellow+bold+"⚠ %s"+reset+" — %v\n", c.File, c.Err)
	}
}

// ProfileSaved reports a newly stored profile.
func (p *Printer) ProfileSaved(pr profile.Profile) {
	fmt.Fprintf(p.w, green+bold+"✓ saved"+reset+" %s "+dim+"(%s)"+reset+"\n", pr.Record.Name, pr.ID)
}

// WindowSummary reports how many dasha rows a window query produced.
func (p *Printer) WindowSummary(n int, days float64, depth dasha.Level) {
	if n == 0 {
		fmt.Fprintf(p.w, dim+"no %s periods in the next %g days"+reset+"\n", depth, days)
		return
	}
	fmt.Fprintf(p.w, dim+"%d %s period(s) in the next %g days"+reset+"\n", n, depth, days)
}

// LordPath joins lords as "Venus / Saturn / Mercury".
func LordPath[T fmt.Stringer](lords []T) string {
	parts := make([]string, len(lords))
	for i, l := range lords {
		parts[i] = l.String()
	}
	return strings.Join(parts, " / ")
}

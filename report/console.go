package report

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// hit rates at or above goodRate are green, below poorRate red.
const (
	goodRate = 0.9
	poorRate = 0.5
)

// WriteConsole writes a human-readable table of the report followed by a
// per-family summary. Colors are emitted only when colored is set.
func WriteConsole(w io.Writer, r *Report, colored bool) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := color.New(color.Bold)
	good := color.New(color.FgGreen)
	poor := color.New(color.FgRed)
	for _, c := range []*color.Color{header, good, poor} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	fmt.Fprintln(tw, header.Sprint("MODEL\tHITS\tTOTAL\tHIT RATE\tEVICTIONS"))
	for _, e := range r.Entries {
		rate := fmt.Sprintf("%6.2f%%", e.HitRate*100)
		switch {
		case e.HitRate >= goodRate:
			rate = good.Sprint(rate)
		case e.HitRate < poorRate:
			rate = poor.Sprint(rate)
		}
		p.Fprintf(tw, "%s\t%d\t%d\t%s\t%d\n",
			e.Name, e.Hits, e.Total, rate, e.Evictions)
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "failed to write console table")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(tw, header.Sprint("FAMILY\tMODELS\tMEAN\tSTDDEV\tBEST"))
	for _, s := range r.Families {
		fmt.Fprintf(tw, "%s\t%d\t%6.2f%%\t%6.2f%%\t%s\n",
			s.Family, s.Models, s.MeanHitRate*100, s.StdHitRate*100, s.Best)
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "failed to write family summary")
	}

	p.Fprintf(w, "\n%d references, %d models, %s\n",
		r.Total, len(r.Entries), r.Elapsed)
	return nil
}

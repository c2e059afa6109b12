package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/sarchlab/cachesim/sim"
)

// WriteText writes one line per family with "<hits>,<total>;" entries
// separated by single spaces, in the order the models were simulated.
func WriteText(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)

	for _, group := range sim.GroupByFamily(r.results) {
		for i, res := range group {
			sep := " "
			if i == len(group)-1 {
				sep = "\n"
			}
			if _, err := fmt.Fprintf(bw, "%d,%d;%s", res.Hits, res.Total, sep); err != nil {
				return errors.Wrap(err, "failed to write text report")
			}
		}
	}

	return errors.Wrap(bw.Flush(), "failed to flush text report")
}

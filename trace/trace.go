// Package trace reads memory reference traces. Each line holds an
// operation flag, L for a load or S for a store, followed by a hexadecimal
// address.
package trace

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/cachesim/cache"
)

// Record is one memory reference.
type Record struct {
	Op   cache.Op
	Addr uint32
}

// String formats the record the way it appears in a trace file.
func (r Record) String() string {
	return fmt.Sprintf("%s 0x%08x", r.Op, r.Addr)
}

// ErrSkip is returned by ParseLine for blank and comment lines.
var ErrSkip = errors.New("no record on line")

// ParseError reports a malformed trace line.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseLine parses a single trace line. Fields after the address are
// ignored. Addresses wider than 32 bits are rejected rather than truncated.
func ParseLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return Record{}, ErrSkip
	}
	if len(fields) < 2 {
		return Record{}, errors.New("missing address")
	}

	var rec Record
	switch strings.ToUpper(fields[0]) {
	case "L":
		rec.Op = cache.Load
	case "S":
		rec.Op = cache.Store
	default:
		return Record{}, fmt.Errorf("unknown operation %q", fields[0])
	}

	text := strings.TrimPrefix(strings.TrimPrefix(fields[1], "0x"), "0X")
	addr, err := strconv.ParseUint(text, 16, cache.AddressBits)
	if err != nil {
		return Record{}, fmt.Errorf("invalid address %q: %w", fields[1], err)
	}
	rec.Addr = uint32(addr)

	return rec, nil
}

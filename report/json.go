package report

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, "failed to encode json report")
	}
	return nil
}

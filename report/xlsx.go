package report

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Results"

var xlsxHeader = []string{
	"Family", "Model", "Param", "Hits", "Total", "Hit Rate",
	"Loads", "Stores", "Misses", "Evictions", "Prefetches",
}

func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(err)
	}
	return name
}

// WriteXLSX writes every model as one row of a single worksheet. Derived
// metrics follow the fixed columns.
func WriteXLSX(w io.Writer, r *Report) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "failed to close workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return errors.Wrap(err, "failed to name sheet")
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "failed to create header style")
	}

	header := append(append([]string{}, xlsxHeader...), r.Metrics...)
	for col, title := range header {
		if err := f.SetCellValue(xlsxSheet, cellName(col+1, 1), title); err != nil {
			return errors.Wrap(err, "failed to write header")
		}
	}
	if err := f.SetCellStyle(xlsxSheet, cellName(1, 1), cellName(len(header), 1), bold); err != nil {
		return errors.Wrap(err, "failed to style header")
	}

	for i, e := range r.Entries {
		row := i + 2
		values := []interface{}{
			e.Family, e.Name, e.Param, e.Hits, e.Total, e.HitRate,
			e.Loads, e.Stores, e.Misses, e.Evictions, e.Prefetches,
		}
		for _, m := range r.Metrics {
			values = append(values, e.Derived[m])
		}
		for col, v := range values {
			if err := f.SetCellValue(xlsxSheet, cellName(col+1, row), v); err != nil {
				return errors.Wrapf(err, "failed to write row for %s", e.Name)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

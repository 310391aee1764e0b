package plugin

import (
	"fmt"
	"io"
	"time"

	Nt "github.com/kalin91/nvmonitor/types"
	"github.com/xuri/excelize/v2"
)

const XLSXSheet = "samples"

// ExportXLSX writes samples as one sheet, one row per sample.
// Columns are received, ts, then one per name in series.
func ExportXLSX(w io.Writer, samples []Nt.Sample, series []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", XLSXSheet); err != nil {
		return fmt.Errorf("sheet setup: %w", err)
	}

	header := []any{"received", "ts"}
	for _, name := range series {
		header = append(header, name)
	}
	if err := f.SetSheetRow(XLSXSheet, "A1", &header); err != nil {
		return fmt.Errorf("header row: %w", err)
	}

	for i, s := range samples {
		row := make([]any, 0, len(header))
		row = append(row, s.Received.Format(time.RFC3339Nano), s.TS)
		for _, name := range series {
			row = append(row, s.Values[name])
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(XLSXSheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is a single worksheet: a header row followed by data rows. Rows
// whose index is in Highlight are painted red.
type Sheet struct {
	Name      string
	Headers   []string
	Widths    []float64
	Rows      [][]any
	Highlight map[int]bool
}

// Write renders the sheets into an in-memory workbook.
func Write(sheets ...Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}
	alertStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#C00000"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FDE9E7"}},
	})
	if err != nil {
		return nil, err
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, sheet, headerStyle, alertStyle); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet.Name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet Sheet, headerStyle, alertStyle int) error {
	for i, h := range sheet.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet.Name, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet.Name, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for r, values := range sheet.Rows {
		for c, value := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet.Name, cell, value); err != nil {
				return err
			}
		}
		if sheet.Highlight[r] && len(values) > 0 {
			from, _ := excelize.CoordinatesToCellName(1, r+2)
			to, _ := excelize.CoordinatesToCellName(len(values), r+2)
			if err := f.SetCellStyle(sheet.Name, from, to, alertStyle); err != nil {
				return err
			}
		}
	}

	for i, w := range sheet.Widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.Name, col, col, w); err != nil {
			return err
		}
	}

	if len(sheet.Headers) > 0 {
		return f.SetPanes(sheet.Name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}
	return nil
}

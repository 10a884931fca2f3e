package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Report"

// WriteXLSX writes v as a single-sheet workbook: a title, then one titled
// group of label/value rows per block.
func WriteXLSX(w io.Writer, v View, now time.Time) error {
	f, err := createWorkbook(v, now)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func createWorkbook(v View, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 16,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4472C4"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border: []excelize.Border{
			{Type: "left", Color: "CCCCCC", Style: 1},
			{Type: "right", Color: "CCCCCC", Style: 1},
			{Type: "top", Color: "CCCCCC", Style: 1},
			{Type: "bottom", Color: "CCCCCC", Style: 1},
		},
	})

	f.SetColWidth(sheetName, "A", "A", 32)
	f.SetColWidth(sheetName, "B", "B", 60)

	f.SetCellValue(sheetName, "A1", v.Title)
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetRowHeight(sheetName, 1, 30)
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Report %s (%s)", v.ReportID, v.Status))
	f.SetCellValue(sheetName, "A3", GeneratedLine(v, now))

	row := 5
	put := func(label, value string, style int) {
		a, _ := excelize.CoordinatesToCellName(1, row)
		b, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(sheetName, a, label)
		f.SetCellValue(sheetName, b, value)
		f.SetCellStyle(sheetName, a, b, style)
		row++
	}

	for _, blk := range v.Blocks {
		put(blk.Title, blk.Badge, headerStyle)
		for _, r := range blk.Rows {
			put(r.Label, r.Value, dataStyle)
		}
		for _, c := range blk.Checks {
			put(c.Label, yesNo(c.Passed, "✓", "✗"), dataStyle)
		}
		for _, n := range blk.Notes {
			put("Notes", n, dataStyle)
		}
		if len(blk.Photos) > 0 {
			put("Photos", strings.Join(blk.Photos, "\n"), dataStyle)
		}
		row++
	}

	put("Inspector Signature", v.InspectorName, dataStyle)
	put("Date", v.InspectionDate, dataStyle)

	// Delete default Sheet1 now that Report exists
	f.DeleteSheet("Sheet1")

	return f, nil
}

// ExportFilename is the download name for a report export.
func ExportFilename(v View) string {
	return sanitizeFilename(v.ReportID) + ".xlsx"
}

func sanitizeFilename(filename string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	if filename = replacer.Replace(filename); filename == "" {
		return "report"
	}
	return filename
}

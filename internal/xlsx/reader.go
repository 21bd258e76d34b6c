// Package xlsx reads Excel workbooks into the raw cell model used by the
// ingestion pipeline.
package xlsx

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Achyut2001/Data-provider-Service/internal/core"
	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned for a workbook without any worksheet.
var ErrNoSheets = errors.New("workbook has no sheets")

// Reader reads .xlsx workbooks. The zero value is ready to use.
type Reader struct {
	// Columns is the number of leading columns read from each row.
	// Zero reads core.ColumnCount columns.
	Columns int
}

// NewReader returns a Reader for the ingestion column layout.
func NewReader() *Reader {
	return &Reader{Columns: core.ColumnCount}
}

var _ core.WorkbookReader = (*Reader)(nil)

// ReadRows returns the data rows of every sheet, in sheet order. Row 1 of each
// sheet is a header and is skipped, as are rows with no cells at all.
func (r *Reader) ReadRows(data []byte) ([][]*core.Cell, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	sr := &sheetReader{f: f, date1904: date1904, columns: r.Columns, styles: make(map[int]bool)}
	if sr.columns <= 0 {
		sr.columns = core.ColumnCount
	}

	var out [][]*core.Cell
	for _, sheet := range sheets {
		rows, err := sr.read(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		out = append(out, rows...)
	}
	return out, nil
}

type sheetReader struct {
	f        *excelize.File
	date1904 bool
	columns  int

	// styles caches whether a style index carries a date/time number format.
	styles map[int]bool
}

func (sr *sheetReader) read(sheet string) ([][]*core.Cell, error) {
	raw, err := sr.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	var rows [][]*core.Cell
	for i := 1; i < len(raw); i++ {
		if len(raw[i]) == 0 {
			continue
		}
		n := len(raw[i])
		if n > sr.columns {
			n = sr.columns
		}
		cells := make([]*core.Cell, n)
		for col := 0; col < n; col++ {
			axis, err := excelize.CoordinatesToCellName(col+1, i+1)
			if err != nil {
				return nil, err
			}
			cells[col] = sr.cell(sheet, axis, raw[i][col])
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// cell classifies one cell from its stored type, formula and number format.
func (sr *sheetReader) cell(sheet, axis, value string) *core.Cell {
	typ, err := sr.f.GetCellType(sheet, axis)
	if err != nil {
		return &core.Cell{Kind: core.CellUnknown}
	}

	if formula, _ := sr.f.GetCellFormula(sheet, axis); formula != "" {
		c := &core.Cell{Kind: core.CellFormula, Text: value}
		if typ != excelize.CellTypeFormula && typ != excelize.CellTypeSharedString && typ != excelize.CellTypeInlineString {
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				c.Number, c.HasNumber = v, true
			}
		}
		return c
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return core.TextCell(value)
	case excelize.CellTypeBool:
		return &core.Cell{Kind: core.CellBool, Bool: value == "1" || strings.EqualFold(value, "true")}
	case excelize.CellTypeDate:
		if t, ok := parseISODate(value); ok {
			return core.DateCell(t)
		}
		return core.TextCell(value)
	case excelize.CellTypeError:
		return &core.Cell{Kind: core.CellUnknown}
	}

	if value == "" {
		return &core.Cell{Kind: core.CellBlank}
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return core.TextCell(value)
	}
	if sr.isDateStyled(sheet, axis) {
		if t, err := excelize.ExcelDateToTime(v, sr.date1904); err == nil {
			return core.DateCell(t)
		}
	}
	return core.NumberCell(v)
}

func (sr *sheetReader) isDateStyled(sheet, axis string) bool {
	idx, err := sr.f.GetCellStyle(sheet, axis)
	if err != nil || idx == 0 {
		return false
	}
	if isDate, ok := sr.styles[idx]; ok {
		return isDate
	}

	isDate := false
	if style, err := sr.f.GetStyle(idx); err == nil {
		isDate = isDateNumFmt(style.NumFmt)
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	sr.styles[idx] = isDate
	return isDate
}

// isDateNumFmt reports whether a built-in number format id renders dates or times.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 45 && id <= 47, id >= 50 && id <= 58:
		return true
	}
	return false
}

var (
	quotedSection  = regexp.MustCompile(`"[^"]*"`)
	bracketSection = regexp.MustCompile(`\[[^\]]*\]`)
)

// isDateFormatCode reports whether a custom format code contains date or
// time tokens outside quoted literals and bracketed modifiers.
func isDateFormatCode(code string) bool {
	code = quotedSection.ReplaceAllString(code, "")
	code = bracketSection.ReplaceAllString(code, "")
	code = strings.ToLower(code)
	return strings.ContainsAny(code, "ydhs") || strings.Contains(code, "m")
}

func parseISODate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

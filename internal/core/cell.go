package core

// cell.go provides canonical text rendering of raw spreadsheet cells.
//
// Workbook readers translate their native cell model into a Cell; everything
// downstream of NormalizeCell only ever sees text or nil.

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// CellKind identifies how a raw cell stores its value.
type CellKind int

const (
	CellUnknown CellKind = iota
	CellText
	CellNumeric
	CellBool
	CellFormula
	CellBlank
)

// Cell is one raw spreadsheet cell.
type Cell struct {
	Kind CellKind

	// Text holds the value of a text cell, or the cached text result of a formula.
	Text string

	// Number holds a numeric value, or the cached numeric result of a formula
	// when HasNumber is set.
	Number    float64
	HasNumber bool

	// DateFormatted marks a numeric cell displayed with a date/time format.
	// Time is its resolved value.
	DateFormatted bool
	Time          time.Time

	Bool bool
}

// TextCell returns a text cell holding s.
func TextCell(s string) *Cell { return &Cell{Kind: CellText, Text: s} }

// NumberCell returns a plain numeric cell.
func NumberCell(v float64) *Cell { return &Cell{Kind: CellNumeric, Number: v, HasNumber: true} }

// DateCell returns a date-formatted numeric cell.
func DateCell(t time.Time) *Cell {
	return &Cell{Kind: CellNumeric, DateFormatted: true, Time: t}
}

// NormalizeCell renders a cell as canonical text. It returns nil only for an
// absent cell; blank and unrecognized cells yield "".
func NormalizeCell(c *Cell) *string {
	if c == nil {
		return nil
	}

	var s string
	switch c.Kind {
	case CellText:
		s = strings.TrimSpace(c.Text)
	case CellBool:
		s = strconv.FormatBool(c.Bool)
	case CellNumeric:
		if c.DateFormatted {
			s = c.Time.Format(TimestampLayout)
		} else {
			s = formatNumber(c.Number)
		}
	case CellFormula:
		if c.HasNumber {
			s = formatNumber(c.Number)
		} else {
			s = strings.TrimSpace(c.Text)
		}
	}
	return &s
}

// formatNumber drops the fractional part of integer-valued numbers and
// otherwise renders the shortest exact decimal.
func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if v == math.Floor(v) && math.Abs(v) < 1<<63 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

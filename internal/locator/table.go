package locator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/a3tai/mcp-docx-filler/internal/intelligence"
)

// Directions understood by table-relative targets.
const (
	DirRight = "right"
	DirLeft  = "left"
	DirBelow = "below"
	DirAbove = "above"
)

var targetPattern = regexp.MustCompile(`^([a-zA-Z]+)(?:\((\d+)\))?$`)

// ParseTarget splits a "direction(step)" spec. A bare direction means step
// 1; anything unparsable means right(1).
func ParseTarget(target string) (string, int) {
	m := targetPattern.FindStringSubmatch(strings.TrimSpace(target))
	if m == nil {
		return DirRight, 1
	}
	step := 1
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return DirRight, 1
		}
		step = n
	}
	return strings.ToLower(m[1]), step
}

// offset turns a direction and step into a row/column delta. Unknown
// directions move right.
func offset(direction string, step int) (dr, dc int) {
	switch direction {
	case DirLeft:
		return 0, -step
	case DirBelow:
		return step, 0
	case DirAbove:
		return -step, 0
	default:
		return 0, step
	}
}

// TableLabel scans every table cell in row-major order for label and
// returns the cell target points to from there, for the occur-th label
// whose target lies inside its table.
func (l *Locator) TableLabel(label, target string, occur int) (*Result, error) {
	lbl := intelligence.Fold(label)
	if lbl == "" {
		return nil, fmt.Errorf("%w: table label is empty", ErrMalformed)
	}
	occur, err := occurrence(occur)
	if err != nil {
		return nil, err
	}
	dr, dc := offset(ParseTarget(target))

	count := 0
	for _, tbl := range l.doc.Tables() {
		rows := tbl.Rows()
		for r, row := range rows {
			for c, cell := range row.Cells() {
				if !strings.Contains(intelligence.Fold(cell.Text()), lbl) {
					continue
				}
				rr, cc := r+dr, c+dc
				if rr < 0 || rr >= len(rows) || cc < 0 || cc >= len(rows[rr].Cells()) {
					continue
				}
				count++
				if count == occur {
					return &Result{Table: tbl, Cell: tbl.Cell(rr, cc), Row: rr, Col: cc}, nil
				}
			}
		}
	}
	return nil, nil
}

// CellRef addresses a cell by 1-based table, row and column.
func (l *Locator) CellRef(table, row, col int) (*Result, error) {
	tables := l.doc.Tables()
	if table < 1 || table > len(tables) {
		return nil, nil
	}
	tbl := tables[table-1]
	cell := tbl.Cell(row-1, col-1)
	if row < 1 || col < 1 || cell == nil {
		return nil, nil
	}
	return &Result{Table: tbl, Cell: cell, Row: row - 1, Col: col - 1}, nil
}

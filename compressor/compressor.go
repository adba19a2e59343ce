// Package compressor shrinks sparse predictive tables. Rows that are identical are stored once, and
// the remaining rows are overlapped by row displacement.
package compressor

import (
	"fmt"
	"sort"

	"github.com/cnf/structhash"
)

type Matrix struct {
	entries  []int
	rowCount int
	colCount int
}

func NewMatrix(entries []int, colCount int) (*Matrix, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("entries is empty")
	}
	if colCount <= 0 {
		return nil, fmt.Errorf("colCount must be >=1")
	}
	if len(entries)%colCount != 0 {
		return nil, fmt.Errorf("entries length or column count are incorrect; entries length: %v, column count: %v", len(entries), colCount)
	}

	return &Matrix{
		entries:  entries,
		rowCount: len(entries) / colCount,
		colCount: colCount,
	}, nil
}

func (m *Matrix) row(r int) []int {
	return m.entries[r*m.colCount : (r+1)*m.colCount]
}

type Compressor interface {
	Compress(m *Matrix) error
	Lookup(row, col int) (int, error)
	OriginalTableSize() (int, int)
}

var (
	_ Compressor = &UniqueRowTable{}
	_ Compressor = &RowDisplacementTable{}
	_ Compressor = &PredictTable{}
)

// UniqueRowTable keeps one copy of each distinct row. RowNums maps an original row to its copy.
type UniqueRowTable struct {
	UniqueRows       []int
	RowNums          []int
	OriginalRowCount int
	OriginalColCount int
}

func NewUniqueRowTable() *UniqueRowTable {
	return &UniqueRowTable{}
}

func (tab *UniqueRowTable) Lookup(row, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return 0, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	return tab.UniqueRows[tab.RowNums[row]*tab.OriginalColCount+col], nil
}

func (tab *UniqueRowTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

func (tab *UniqueRowTable) Compress(m *Matrix) error {
	var uniqueRows []int
	rowNums := make([]int, m.rowCount)
	hash2RowNum := map[string]int{}
	nextRowNum := 0
	for r := 0; r < m.rowCount; r++ {
		row := m.row(r)
		h, err := structhash.Hash(row, 1)
		if err != nil {
			return fmt.Errorf("cannot hash row %v: %w", r, err)
		}
		rowNum, ok := hash2RowNum[h]
		if !ok {
			rowNum = nextRowNum
			nextRowNum++
			hash2RowNum[h] = rowNum
			uniqueRows = append(uniqueRows, row...)
		}
		rowNums[r] = rowNum
	}

	tab.UniqueRows = uniqueRows
	tab.RowNums = rowNums
	tab.OriginalRowCount = m.rowCount
	tab.OriginalColCount = m.colCount

	return nil
}

// ForbiddenValue marks a slot of Bounds that no row owns.
const ForbiddenValue = -1

// RowDisplacementTable overlaps rows so that the non-empty entries of different rows share one
// array. Bounds records which row owns each slot.
type RowDisplacementTable struct {
	OriginalRowCount int
	OriginalColCount int
	EmptyValue       int
	Entries          []int
	Bounds           []int
	RowDisplacement  []int
}

func NewRowDisplacementTable(emptyValue int) *RowDisplacementTable {
	return &RowDisplacementTable{
		EmptyValue: emptyValue,
	}
}

func (tab *RowDisplacementTable) Lookup(row int, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return tab.EmptyValue, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	d := tab.RowDisplacement[row]
	if tab.Bounds[d+col] != row {
		return tab.EmptyValue, nil
	}
	return tab.Entries[d+col], nil
}

func (tab *RowDisplacementTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

type occupancy struct {
	row  int
	cols []int
}

func (tab *RowDisplacementTable) Compress(m *Matrix) error {
	occs := make([]occupancy, m.rowCount)
	for r := 0; r < m.rowCount; r++ {
		occs[r].row = r
		for c, v := range m.row(r) {
			if v == tab.EmptyValue {
				continue
			}
			occs[r].cols = append(occs[r].cols, c)
		}
	}
	// Placing dense rows first leaves small gaps that sparse rows can fill.
	sort.SliceStable(occs, func(i, j int) bool {
		return len(occs[i].cols) > len(occs[j].cols)
	})

	size := len(m.entries)
	entries := make([]int, size)
	bounds := make([]int, size)
	for i := range entries {
		entries[i] = tab.EmptyValue
		bounds[i] = ForbiddenValue
	}
	displacement := make([]int, m.rowCount)
	bottom := m.colCount
	for _, occ := range occs {
		if len(occ.cols) == 0 {
			continue
		}

		d := 0
		for !fits(bounds, d, occ.cols) {
			d++
		}
		displacement[occ.row] = d
		for _, c := range occ.cols {
			entries[d+c] = m.entries[occ.row*m.colCount+c]
			bounds[d+c] = occ.row
		}
		if d+m.colCount > bottom {
			bottom = d + m.colCount
		}
	}

	tab.OriginalRowCount = m.rowCount
	tab.OriginalColCount = m.colCount
	tab.Entries = entries[:bottom]
	tab.Bounds = bounds[:bottom]
	tab.RowDisplacement = displacement

	return nil
}

func fits(bounds []int, d int, cols []int) bool {
	for _, c := range cols {
		if bounds[d+c] != ForbiddenValue {
			return false
		}
	}
	return true
}

// PredictTable removes duplicate rows first and then displaces the remaining unique rows.
type PredictTable struct {
	RowNums []int
	Rows    *RowDisplacementTable
}

func NewPredictTable(emptyValue int) *PredictTable {
	return &PredictTable{
		Rows: NewRowDisplacementTable(emptyValue),
	}
}

func (tab *PredictTable) Compress(m *Matrix) error {
	u := NewUniqueRowTable()
	err := u.Compress(m)
	if err != nil {
		return err
	}
	unique, err := NewMatrix(u.UniqueRows, m.colCount)
	if err != nil {
		return err
	}
	err = tab.Rows.Compress(unique)
	if err != nil {
		return err
	}
	tab.RowNums = u.RowNums
	return nil
}

func (tab *PredictTable) Lookup(row, col int) (int, error) {
	if row < 0 || row >= len(tab.RowNums) {
		return tab.Rows.EmptyValue, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	return tab.Rows.Lookup(tab.RowNums[row], col)
}

func (tab *PredictTable) OriginalTableSize() (int, int) {
	return len(tab.RowNums), tab.Rows.OriginalColCount
}

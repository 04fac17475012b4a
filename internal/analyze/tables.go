package analyze

import (
	"sort"
	"strings"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

type tableCell struct {
	row  int
	col  int
	text string
}

// ExtractTables reconstructs one grid per TABLE block, in appearance order.
// Cells are grouped by row index and sorted by column index within a row.
// The grid spans rows 1..max(row index); a row with no source cells appears
// as an empty slice. Tables with zero CELL children are dropped entirely.
func ExtractTables(blocks []entity.Block, index BlockIndex) []entity.Table {
	tables := make([]entity.Table, 0)
	for _, b := range blocks {
		if b.BlockType != constants.BlockTypeTable {
			continue
		}
		cells := collectCells(b, index)
		if len(cells) == 0 {
			continue
		}

		maxRow := 0
		for _, c := range cells {
			if c.row > maxRow {
				maxRow = c.row
			}
		}

		rows := make([][]string, 0, maxRow)
		for r := 1; r <= maxRow; r++ {
			rowCells := make([]tableCell, 0)
			for _, c := range cells {
				if c.row == r {
					rowCells = append(rowCells, c)
				}
			}
			sort.SliceStable(rowCells, func(i, j int) bool { return rowCells[i].col < rowCells[j].col })
			texts := make([]string, 0, len(rowCells))
			for _, c := range rowCells {
				texts = append(texts, c.text)
			}
			rows = append(rows, texts)
		}

		tables = append(tables, entity.Table{Page: b.PageOrDefault(), Rows: rows})
	}
	return tables
}

func collectCells(table entity.Block, index BlockIndex) []tableCell {
	var cells []tableCell
	for _, rel := range table.Relationships {
		if rel.Type != constants.RelationshipChild {
			continue
		}
		for _, id := range rel.IDs {
			cell, ok := index.Lookup(id)
			if !ok || cell.BlockType != constants.BlockTypeCell {
				continue
			}
			var text strings.Builder
			for _, crel := range cell.Relationships {
				if crel.Type != constants.RelationshipChild {
					continue
				}
				for _, wid := range crel.IDs {
					word, ok := index.Lookup(wid)
					if ok && word.BlockType == constants.BlockTypeWord {
						text.WriteString(word.Text)
						text.WriteString(" ")
					}
				}
			}
			row, col := cell.RowIndex, cell.ColumnIndex
			if row < 1 {
				row = 1
			}
			if col < 1 {
				col = 1
			}
			cells = append(cells, tableCell{row: row, col: col, text: strings.TrimSpace(text.String())})
		}
	}
	return cells
}

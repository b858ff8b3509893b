package normalizer

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxSpan caps colspan/rowspan so a malformed page cannot allocate without bound
const maxSpan = 1000

// grid is a table expanded into rows of cell texts. Header rows come first.
type grid struct {
	header [][]string
	body   [][]string
	width  int
}

// extractFirstTable finds the first <table> in document order and expands it
func extractFirstTable(doc *goquery.Document) (*grid, bool) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, false
	}

	// Rows of nested tables belong to those tables, not this one.
	rows := table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})

	headerCount := countHeaderRows(rows)
	cells, carried := expandSpans(rows)

	// A header cell spanning several rows names one level, not several.
	for r := 0; r < headerCount && r < len(cells); r++ {
		for c := range carried[r] {
			cells[r][c] = ""
		}
	}

	g := &grid{}
	for _, row := range cells {
		if len(row) > g.width {
			g.width = len(row)
		}
	}
	for i := range cells {
		for len(cells[i]) < g.width {
			cells[i] = append(cells[i], "")
		}
	}

	if headerCount > len(cells) {
		headerCount = len(cells)
	}
	g.header = cells[:headerCount]
	g.body = cells[headerCount:]

	return g, true
}

// countHeaderRows returns how many leading rows form the header: the <thead>
// rows when the table has any, otherwise the leading rows made only of <th> cells.
func countHeaderRows(rows *goquery.Selection) int {
	inHead := 0
	rows.Each(func(_ int, tr *goquery.Selection) {
		if goquery.NodeName(tr.Parent()) == "thead" {
			inHead++
		}
	})
	if inHead > 0 {
		return inHead
	}

	count := 0
	for i := 0; i < rows.Length(); i++ {
		tr := rows.Eq(i)
		cells := tr.ChildrenFiltered("th, td")
		if cells.Length() == 0 || cells.Length() != tr.ChildrenFiltered("th").Length() {
			break
		}
		count++
	}
	return count
}

// expandSpans lays rows out on a rectangular grid, repeating a spanning cell's
// text in every slot it covers. It also reports, per row, the columns filled
// by a rowspan from an earlier row.
func expandSpans(rows *goquery.Selection) ([][]string, []map[int]bool) {
	out := make([][]string, rows.Length())
	fromAbove := make([]map[int]bool, rows.Length())
	// carried[r][c] holds text pushed down into row r by a rowspan above it
	carried := make(map[int]map[int]string)

	rows.Each(func(r int, tr *goquery.Selection) {
		row := make([]string, 0)
		col := 0
		fromAbove[r] = make(map[int]bool)

		place := func() {
			for {
				text, ok := carried[r][col]
				if !ok {
					return
				}
				row = setCell(row, col, text)
				fromAbove[r][col] = true
				col++
			}
		}

		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			place()

			text := cellText(cell)
			colspan := spanAttr(cell, "colspan")
			rowspan := spanAttr(cell, "rowspan")

			for dc := 0; dc < colspan; dc++ {
				row = setCell(row, col+dc, text)
				for dr := 1; dr < rowspan; dr++ {
					if carried[r+dr] == nil {
						carried[r+dr] = make(map[int]string)
					}
					carried[r+dr][col+dc] = text
				}
			}
			col += colspan
		})

		// Rowspans from above may extend past the last cell of this row.
		for c, text := range carried[r] {
			if c >= len(row) || row[c] == "" {
				row = setCell(row, c, text)
				fromAbove[r][c] = true
			}
		}
		delete(carried, r)

		out[r] = row
	})

	return out, fromAbove
}

func setCell(row []string, col int, text string) []string {
	for len(row) <= col {
		row = append(row, "")
	}
	row[col] = text
	return row
}

func cellText(cell *goquery.Selection) string {
	return strings.Join(strings.Fields(cell.Text()), " ")
}

func spanAttr(cell *goquery.Selection, name string) int {
	raw, ok := cell.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	if n > maxSpan {
		return maxSpan
	}
	return n
}

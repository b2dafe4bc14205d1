package parse

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-lute/internal/ast"
)

var reTableDelimiterCell = regexp.MustCompile(`^:?-+:?$`)

// splitTableRow splits a row into trimmed cell sources. Leading and trailing
// pipes are optional and "\|" is a literal pipe inside a cell.
func splitTableRow(line string) []string {
	line = strings.Trim(line, " \t")
	line = strings.TrimPrefix(line, "|")

	var cells []string
	var b strings.Builder
	pipeLast := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line) && line[i+1] == '|':
			b.WriteByte('|')
			i++
			pipeLast = false
		case c == '\\' && i+1 < len(line):
			b.WriteByte(c)
			b.WriteByte(line[i+1])
			i++
			pipeLast = false
		case c == '|':
			cells = append(cells, strings.Trim(b.String(), " \t"))
			b.Reset()
			pipeLast = true
		default:
			b.WriteByte(c)
			pipeLast = false
		}
	}
	if !pipeLast {
		cells = append(cells, strings.Trim(b.String(), " \t"))
	}
	return cells
}

// parseDelimiterRow reads the alignment row under a table header.
func parseDelimiterRow(line string) ([]ast.CellAlign, bool) {
	if strings.IndexByte(line, '-') < 0 {
		return nil, false
	}
	cells := splitTableRow(line)
	if len(cells) == 0 {
		return nil, false
	}
	aligns := make([]ast.CellAlign, len(cells))
	for i, cell := range cells {
		if !reTableDelimiterCell.MatchString(cell) {
			return nil, false
		}
		left, right := cell[0] == ':', cell[len(cell)-1] == ':'
		switch {
		case left && right:
			aligns[i] = ast.AlignCenter
		case left:
			aligns[i] = ast.AlignLeft
		case right:
			aligns[i] = ast.AlignRight
		}
	}
	return aligns, true
}

// tableStart finds the first header and delimiter row pair in lines and
// returns the header index.
func tableStart(lines []string) (int, []ast.CellAlign, bool) {
	for i := 1; i < len(lines); i++ {
		if strings.IndexByte(lines[i], '|') < 0 && strings.IndexByte(lines[i-1], '|') < 0 {
			continue
		}
		aligns, ok := parseDelimiterRow(lines[i])
		if !ok {
			continue
		}
		if len(splitTableRow(lines[i-1])) == len(aligns) {
			return i - 1, aligns, true
		}
	}
	return 0, nil, false
}

// paragraphToTable replaces the tail of a paragraph with a table when the
// paragraph holds a header row followed by a delimiter row. Lines before the
// header stay in the paragraph.
func (p *blockParser) paragraphToTable(paragraph *ast.Node, st *blockState) {
	lines := strings.Split(strings.TrimRight(string(st.content), "\n"), "\n")
	header, aligns, ok := tableStart(lines)
	if !ok {
		return
	}

	table := ast.NewNode(ast.NodeTable)
	p.states[table] = &blockState{startLine: st.startLine + header, endLine: st.endLine}
	head := ast.NewNode(ast.NodeTableHead)
	table.AppendChild(head)
	p.appendTableCells(head, splitTableRow(lines[header]), aligns)
	for _, line := range lines[header+2:] {
		row := ast.NewNode(ast.NodeTableRow)
		table.AppendChild(row)
		p.appendTableCells(row, splitTableRow(line), aligns)
	}

	paragraph.InsertAfter(table)
	if header == 0 {
		paragraph.Unlink()
		delete(p.states, paragraph)
		return
	}
	st.content = []byte(strings.Join(lines[:header], "\n") + "\n")
	st.endLine = st.startLine + header - 1
}

// appendTableCells adds one cell per column; extra cells are dropped and
// missing ones are left empty.
func (p *blockParser) appendTableCells(row *ast.Node, cells []string, aligns []ast.CellAlign) {
	for i, align := range aligns {
		cell := ast.NewNode(ast.NodeTableCell)
		cell.Align = align
		content := ""
		if i < len(cells) {
			content = cells[i]
		}
		p.states[cell] = &blockState{content: []byte(content)}
		row.AppendChild(cell)
	}
}

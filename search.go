package vtscreen

// Text search over the page and scrollback. Match positions use page
// coordinates; negative lines address history, -1 being the most recent
// scrollback line. Matching is exact: codepoints compare as written.

// lineRunes returns one rune per column, blanks for empty cells and spacers,
// without inflating trivial lines.
func (s *Screen) lineRunes(row int) []rune {
	line := s.grid.LineAt(row)
	runes := make([]rune, 0, line.Columns())
	line.EachCell(func(col int, cell Cell) {
		switch {
		case cell.IsWideSpacer(), cell.Char == 0:
			runes = append(runes, ' ')
		default:
			runes = append(runes, cell.Char)
		}
	})
	return runes
}

func matchAt(haystack, needle []rune, col int) bool {
	if col+len(needle) > len(haystack) {
		return false
	}
	for i, r := range needle {
		if haystack[col+i] != r {
			return false
		}
	}
	return true
}

// Search finds the next occurrence of needle at or after from, scanning
// forward line by line through the remaining page. Returns the match start
// and true, or false if nothing matches.
func (s *Screen) Search(needle string, from CellLocation) (CellLocation, bool) {
	if needle == "" {
		return CellLocation{}, false
	}
	want := []rune(needle)
	lines := s.grid.PageSize().Lines

	for row := from.Line; row < lines; row++ {
		haystack := s.lineRunes(row)
		startCol := 0
		if row == from.Line {
			startCol = from.Column
		}
		for col := startCol; col+len(want) <= len(haystack); col++ {
			if matchAt(haystack, want, col) {
				return CellLocation{Line: row, Column: col}, true
			}
		}
	}
	return CellLocation{}, false
}

// SearchReverse finds the closest occurrence of needle at or before from,
// scanning backward through the page and then the scrollback.
func (s *Screen) SearchReverse(needle string, from CellLocation) (CellLocation, bool) {
	if needle == "" {
		return CellLocation{}, false
	}
	want := []rune(needle)
	oldest := -s.grid.HistoryLineCount()

	for row := from.Line; row >= oldest; row-- {
		haystack := s.lineRunes(row)
		lastCol := len(haystack) - len(want)
		if row == from.Line && from.Column < lastCol {
			lastCol = from.Column
		}
		for col := lastCol; col >= 0; col-- {
			if matchAt(haystack, want, col) {
				return CellLocation{Line: row, Column: col}, true
			}
		}
	}
	return CellLocation{}, false
}

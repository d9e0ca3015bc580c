package sheets

import (
	"fmt"
	"strings"
)

// ColumnLetter converts a 1-based column index to its A1 letters (1 → A, 28 → AB).
func ColumnLetter(idx int) string {
	if idx <= 0 {
		return ""
	}
	var b []byte
	for idx > 0 {
		idx--
		b = append([]byte{byte('A' + idx%26)}, b...)
		idx /= 26
	}
	return string(b)
}

// ColumnIndex converts A1 column letters to a 1-based index.
func ColumnIndex(letters string) (int, error) {
	letters = strings.ToUpper(strings.TrimSpace(letters))
	if letters == "" {
		return 0, fmt.Errorf("empty column")
	}
	idx := 0
	for _, r := range letters {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column %q", letters)
		}
		idx = idx*26 + int(r-'A'+1)
	}
	return idx, nil
}

// quoteSheet quotes a worksheet title for use in an A1 range.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// cellRange builds 'Sheet'!C1R1:C2R2.
func cellRange(sheet string, col1, row1, col2, row2 int) string {
	return fmt.Sprintf("%s!%s%d:%s%d", quoteSheet(sheet), ColumnLetter(col1), row1, ColumnLetter(col2), row2)
}

// columnFrom builds 'Sheet'!C{row}:C, the open-ended rest of a column.
func columnFrom(sheet string, col, row int) string {
	letter := ColumnLetter(col)
	return fmt.Sprintf("%s!%s%d:%s", quoteSheet(sheet), letter, row, letter)
}

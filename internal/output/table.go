package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table outputs aligned key/value rows in text mode.
type Table struct {
	rows  [][2]string
	width int
}

// Row appends a row.
func (t *Table) Row(key, value string) *Table {
	t.rows = append(t.rows, [2]string{key, value})
	if w := runewidth.StringWidth(key); w > t.width {
		t.width = w
	}
	return t
}

// Render writes the table.
func (t *Table) Render(w io.Writer) error {
	for _, r := range t.rows {
		pad := strings.Repeat(" ", t.width-runewidth.StringWidth(r[0]))
		if _, err := fmt.Fprintf(w, "%s%s  %s\n", r[0], pad, r[1]); err != nil {
			return err
		}
	}
	return nil
}

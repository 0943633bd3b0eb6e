// Package cli presents console page state on a terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/user/crawler-console/internal/delivery/page"
	"github.com/user/crawler-console/internal/entity"
	"github.com/user/crawler-console/internal/repository"
)

const defaultTerminalRows = 24

// Heading is the rendered extent of the table heading: the column titles and the
// summary line below the table.
var Heading = entity.Box{Height: 1, MarginBottom: 2}

// ViewportHeight is the terminal's height in rows, or a default when f is not a
// terminal.
func ViewportHeight(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return defaultTerminalRows
	}
	_, rows, err := term.GetSize(int(f.Fd()))
	if err != nil || rows <= 0 {
		return defaultTerminalRows
	}
	return rows
}

// Terminal writes page state as aligned text, or as JSON when JSON is set.
type Terminal struct {
	Out  io.Writer
	Err  io.Writer
	JSON bool
}

var (
	_ repository.Alerter   = (*Terminal)(nil)
	_ repository.Navigator = (*Terminal)(nil)
)

func (t *Terminal) Alert(message string) {
	fmt.Fprintf(t.Err, "Error: %s\n", message)
}

func (t *Terminal) Open(location string) {
	fmt.Fprintln(t.Out, location)
}

// PrintJSON writes v as indented JSON.
func (t *Terminal) PrintJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(t.Out, string(data))
	return err
}

// PrintTable writes the table. A positive height limits the number of rows shown.
func (t *Terminal) PrintTable(tbl page.Table, total int64) error {
	if t.JSON {
		return t.PrintJSON(tbl)
	}

	rows := tbl.Rows
	hidden := 0
	if tbl.Height > 0 && len(rows) > tbl.Height {
		hidden = len(rows) - tbl.Height
		rows = rows[:tbl.Height]
	}

	w := tabwriter.NewWriter(t.Out, 0, 0, 2, ' ', 0)
	titles := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		titles[i] = strings.ToUpper(c)
	}
	fmt.Fprintln(w, "#\t"+strings.Join(titles, "\t"))
	for i, cells := range rows {
		fmt.Fprintf(w, "%d\t%s\n", i, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if hidden > 0 {
		fmt.Fprintf(t.Out, "\n%d crawlers (%d not shown, %d total)\n", len(tbl.Rows), hidden, total)
		return nil
	}
	fmt.Fprintf(t.Out, "\n%d crawlers (%d total)\n", len(tbl.Rows), total)
	return nil
}

// PrintDetail writes a row detail, turning the pane's <br> breaks back into lines.
func (t *Terminal) PrintDetail(index int, detail string) error {
	if t.JSON {
		return t.PrintJSON(map[string]any{"index": index, "html": detail})
	}
	text := html.UnescapeString(strings.ReplaceAll(detail, "<br>", "\n"))
	_, err := fmt.Fprintln(t.Out, text)
	return err
}

// PrintEditor writes the editor state: its indicator line, then the form value.
func (t *Terminal) PrintEditor(mode string, value json.RawMessage, ind *page.IndicatorState) error {
	if t.JSON {
		return t.PrintJSON(map[string]any{"mode": mode, "value": value, "indicator": ind})
	}
	if ind != nil {
		mark := "ok"
		if !ind.OK {
			mark = "error"
		}
		fmt.Fprintf(t.Out, "[%s] %s\n", mark, ind.Text)
	}
	if len(value) > 0 {
		return t.PrintTree(value)
	}
	return nil
}

// PrintTree writes a JSON document indented two spaces per level.
func (t *Terminal) PrintTree(doc json.RawMessage) error {
	if t.JSON {
		_, err := fmt.Fprintln(t.Out, string(doc))
		return err
	}
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		_, err = fmt.Fprintln(t.Out, string(doc))
		return err
	}
	return t.PrintJSON(v)
}

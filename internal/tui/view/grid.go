package view

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/dmdash/internal/store"
	"github.com/Iron-Ham/dmdash/internal/tui/styles"
	"github.com/Iron-Ham/dmdash/internal/util"
)

// Fixed grid columns; data columns follow, one per key in the tasks' data.
var fixedColumns = []struct {
	key   string
	title string
	width int
}{
	{"id", "ID", 6},
	{"completed", "Done", 5},
	{"annotations", "Annotations", 11},
	{"predictions", "Predictions", 11},
}

const minDataColumnWidth = 12

// Grid is the data grid, a bubbles table over the visible tasks.
type Grid struct {
	table   table.Model
	columns []string
	tasks   []store.Task
	width   int
	height  int
}

// NewGrid creates an empty, focused grid.
func NewGrid() *Grid {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(5),
	)
	g := &Grid{table: t}
	g.ApplyStyles()
	return g
}

// ApplyStyles copies the active theme into the table.
func (g *Grid) ApplyStyles() {
	g.table.SetStyles(table.Styles{
		Header:   styles.GridHeader.Padding(0, 1),
		Cell:     styles.GridCell.Padding(0, 1),
		Selected: styles.GridSelected,
	})
}

// SetSize resizes the grid and recomputes column widths.
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.table.SetWidth(width)
	g.table.SetHeight(max(height-2, 1))
	g.rebuild()
}

// SetTasks replaces the rows. hidden lists column keys the selected view
// hides.
func (g *Grid) SetTasks(tasks []store.Task, hidden []string) {
	g.tasks = tasks

	var dataKeys []string
	for _, t := range tasks {
		for k := range t.Data {
			col := "data." + k
			if !slices.Contains(dataKeys, col) {
				dataKeys = append(dataKeys, col)
			}
		}
	}
	slices.Sort(dataKeys)

	cols := make([]string, 0, len(fixedColumns)+len(dataKeys))
	for _, c := range fixedColumns {
		if !slices.Contains(hidden, c.key) {
			cols = append(cols, c.key)
		}
	}
	for _, c := range dataKeys {
		if !slices.Contains(hidden, c) {
			cols = append(cols, c)
		}
	}
	g.columns = cols
	g.rebuild()
}

// Columns returns the keys of the shown columns.
func (g *Grid) Columns() []string { return g.columns }

// Len returns the number of rows.
func (g *Grid) Len() int { return len(g.tasks) }

func (g *Grid) rebuild() {
	// Columns must be set before rows; the table indexes rows by column.
	g.table.SetRows(nil)
	g.table.SetColumns(g.tableColumns())

	rows := make([]table.Row, 0, len(g.tasks))
	for _, t := range g.tasks {
		row := make(table.Row, 0, len(g.columns))
		for _, col := range g.columns {
			v, _ := t.Field(col)
			row = append(row, util.Flatten(v))
		}
		rows = append(rows, row)
	}
	g.table.SetRows(rows)
	if c := g.table.Cursor(); c < 0 || c >= len(rows) {
		g.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (g *Grid) tableColumns() []table.Column {
	fixedWidth := 0
	dataCols := 0
	for _, col := range g.columns {
		if w, ok := fixedWidthOf(col); ok {
			fixedWidth += w + 2
		} else {
			dataCols++
		}
	}

	dataWidth := minDataColumnWidth
	if dataCols > 0 && g.width > 0 {
		dataWidth = max((g.width-fixedWidth)/dataCols-2, minDataColumnWidth)
	}

	out := make([]table.Column, 0, len(g.columns))
	for _, col := range g.columns {
		if w, ok := fixedWidthOf(col); ok {
			out = append(out, table.Column{Title: titleOf(col), Width: w})
			continue
		}
		out = append(out, table.Column{Title: titleOf(col), Width: dataWidth})
	}
	return out
}

func fixedWidthOf(col string) (int, bool) {
	for _, c := range fixedColumns {
		if c.key == col {
			return c.width, true
		}
	}
	return 0, false
}

func titleOf(col string) string {
	for _, c := range fixedColumns {
		if c.key == col {
			return c.title
		}
	}
	return col[len("data."):]
}

// Selected returns the task under the cursor.
func (g *Grid) Selected() (store.Task, bool) {
	i := g.table.Cursor()
	if i < 0 || i >= len(g.tasks) {
		return store.Task{}, false
	}
	return g.tasks[i], true
}

// MoveCursor moves the row cursor by delta.
func (g *Grid) MoveCursor(delta int) {
	if len(g.tasks) == 0 {
		return
	}
	if delta > 0 {
		g.table.MoveDown(delta)
	} else if delta < 0 {
		g.table.MoveUp(-delta)
	}
}

// Update forwards msg to the table.
func (g *Grid) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	g.table, cmd = g.table.Update(msg)
	return cmd
}

// View renders the grid, or a placeholder when there are no rows.
func (g *Grid) View(loading bool) string {
	if len(g.tasks) == 0 {
		msg := "No tasks match this view"
		if loading {
			msg = "Loading tasks…"
		}
		return styles.Muted.Render(msg)
	}
	return g.table.View()
}

// Footer describes the cursor position, e.g. "row 3 of 30 (42 found)".
func (g *Grid) Footer(found int) string {
	if len(g.tasks) == 0 {
		return ""
	}
	s := fmt.Sprintf("row %d of %d", g.table.Cursor()+1, len(g.tasks))
	if found > len(g.tasks) {
		s += " (" + strconv.Itoa(found) + " found)"
	}
	return styles.Muted.Render(s)
}

package authors

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/msx/internal/display"
)

const (
	rowPrefix     = "auth-"
	controlPrefix = "rem-"
)

// Row is one author + affiliation input pair.
type Row struct {
	ID               int    // stable for the row's lifetime
	ElementID        string // auth-{position}
	ControlID        string // rem-{position}
	AuthorLabel      string
	AffiliationLabel string
	Removable        bool
}

// AuthorTarget is the surface target of the row's author label.
func (r Row) AuthorTarget() string { return r.ElementID + ".author" }

// AffiliationTarget is the surface target of the row's affiliation label.
func (r Row) AffiliationTarget() string { return r.ElementID + ".affiliation" }

// Editor maintains the ordered collection of author rows.
type Editor struct {
	rows    []Row
	nextID  int
	surface display.Surface
}

// NewEditor creates an editor holding the single row present at page load.
func NewEditor(surface display.Surface) *Editor {
	if surface == nil {
		surface = display.Discard{}
	}
	e := &Editor{surface: surface}
	e.AddRow()
	return e
}

// AddRow appends a row with a fresh ID and re-derives labels and identifiers.
func (e *Editor) AddRow() Row {
	e.nextID++
	e.rows = append(e.rows, Row{ID: e.nextID})
	e.refresh()
	return e.rows[len(e.rows)-1]
}

// RemoveRow removes the row with the given ID.
//
// Returns false without changing anything when the ID is unknown or the row is the last one left.
func (e *Editor) RemoveRow(id int) bool {
	if len(e.rows) <= 1 {
		return false
	}

	idx := e.Index(id)
	if idx < 0 {
		return false
	}

	e.rows = append(e.rows[:idx], e.rows[idx+1:]...)
	e.refresh()
	return true
}

// RemoveByControl removes the row paired with a remove control identifier (rem-{i}).
func (e *Editor) RemoveByControl(controlID string) bool {
	pos, ok := parsePosition(controlID, controlPrefix)
	if !ok || pos >= len(e.rows) {
		return false
	}
	return e.RemoveRow(e.rows[pos].ID)
}

// Renumber rewrites the labels and removable flag of every row and pushes them to the surface.
func (e *Editor) Renumber() {
	removable := len(e.rows) > 1
	for i := range e.rows {
		row := &e.rows[i]
		row.AuthorLabel = fmt.Sprintf("Author %d", i+1)
		row.AffiliationLabel = fmt.Sprintf("Affiliation %d", i+1)
		row.Removable = removable
	}

	for _, row := range e.rows {
		if row.ElementID == "" {
			continue
		}
		e.surface.SetText(row.AuthorTarget(), row.AuthorLabel)
		e.surface.SetText(row.AffiliationTarget(), row.AffiliationLabel)
		e.surface.SetControl(row.ControlID, row.Removable, row.Removable)
	}
}

// SyncIdentifiers assigns auth-{i} and rem-{i} to the row at position i.
func (e *Editor) SyncIdentifiers() {
	for i := range e.rows {
		e.rows[i].ElementID = rowPrefix + strconv.Itoa(i)
		e.rows[i].ControlID = controlPrefix + strconv.Itoa(i)
	}
}

// Rows returns a copy of the rows in display order.
func (e *Editor) Rows() []Row {
	return append([]Row(nil), e.rows...)
}

// Len returns the number of rows.
func (e *Editor) Len() int { return len(e.rows) }

// Index returns the position of the row with the given ID, or -1.
func (e *Editor) Index(id int) int {
	for i, row := range e.rows {
		if row.ID == id {
			return i
		}
	}
	return -1
}

// At returns the row at position i.
func (e *Editor) At(i int) (Row, bool) {
	if i < 0 || i >= len(e.rows) {
		return Row{}, false
	}
	return e.rows[i], true
}

func (e *Editor) refresh() {
	e.SyncIdentifiers()
	e.Renumber()
}

func parsePosition(id, prefix string) (int, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

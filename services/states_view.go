package services

import (
	"html/template"
	"time"

	"any-democrat/models"
)

// FirstStateRowID marks the first row of the states table.
const FirstStateRowID = "first-state"

// detailLinkText labels the per-race detail link.
const detailLinkText = "Ballotpedia"

// Cell is one column of a states table row.
type Cell struct {
	Text   string
	Href   string
	Struck bool
}

// HTML renders the cell contents with text escaped.
func (c Cell) HTML() template.HTML {
	text := template.HTMLEscapeString(c.Text)
	switch {
	case c.Href != "":
		return template.HTML(`<a href="` + template.HTMLEscapeString(c.Href) + `">` + text + `</a>`)
	case c.Struck:
		return template.HTML("<strike>" + text + "</strike>")
	default:
		return template.HTML(text)
	}
}

// StateRow is one rendered row of the states table.
type StateRow struct {
	ID    string
	Cells [6]Cell
}

// RenderStates produces a row per race. Deadlines and primaries already
// before now are struck through.
func RenderStates(states []*models.StateRecord, now time.Time) []StateRow {
	rows := make([]StateRow, 0, len(states))
	for i, s := range states {
		row := StateRow{
			Cells: [6]Cell{
				{Text: s.State},
				{Text: s.Chamber},
				{Text: s.Reason},
				dateCell(s.FilingDeadline, now),
				dateCell(s.PrimaryElection, now),
			},
		}
		if i == 0 {
			row.ID = FirstStateRowID
		}
		if isWebURL(s.DetailURL) {
			row.Cells[5] = Cell{Text: detailLinkText, Href: s.DetailURL}
		}
		rows = append(rows, row)
	}
	return rows
}

func dateCell(t, now time.Time) Cell {
	return Cell{Text: t.Format(displayDateLayout), Struck: t.Before(now)}
}

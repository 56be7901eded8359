package services

import (
	"testing"
	"time"

	"any-democrat/models"
)

func TestRenderStatesStrikesPastDates(t *testing.T) {
	states := []*models.StateRecord{
		{
			State:           "Texas",
			Chamber:         "House of Representatives",
			Reason:          "Redistricting",
			FilingDeadline:  day(2019, time.December, 9),
			PrimaryElection: day(2020, time.March, 3),
			DetailURL:       "https://ballotpedia.org/Texas_House_of_Representatives_elections,_2020",
		},
		{
			State:           "North Carolina",
			Chamber:         "U.S. Senate",
			Reason:          "Senate Control",
			FilingDeadline:  day(2019, time.December, 20),
			PrimaryElection: day(2020, time.March, 3),
		},
	}

	rows := RenderStates(states, day(2019, time.December, 15))
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	if rows[0].ID != FirstStateRowID || rows[1].ID != "" {
		t.Errorf("row ids: got %q, %q", rows[0].ID, rows[1].ID)
	}

	tx := rows[0].Cells
	if tx[0].Text != "Texas" || tx[1].Text != "House of Representatives" || tx[2].Text != "Redistricting" {
		t.Errorf("text cells: got %+v", tx[:3])
	}
	if got := tx[3].HTML(); got != "<strike>12/9/2019</strike>" {
		t.Errorf("past filing deadline: got %q", got)
	}
	if got := tx[4].HTML(); got != "3/3/2020" {
		t.Errorf("future primary: got %q", got)
	}
	if got := tx[5].HTML(); got != `<a href="https://ballotpedia.org/Texas_House_of_Representatives_elections,_2020">Ballotpedia</a>` {
		t.Errorf("detail link: got %q", got)
	}

	nc := rows[1].Cells
	if got := nc[3].HTML(); got != "12/20/2019" {
		t.Errorf("future filing deadline: got %q", got)
	}
	if got := nc[5].HTML(); got != "" {
		t.Errorf("missing detail link should be empty, got %q", got)
	}
}

func TestCellHTMLEscapes(t *testing.T) {
	c := Cell{Text: "<script>x</script>", Struck: true}
	if got := c.HTML(); got != "<strike>&lt;script&gt;x&lt;/script&gt;</strike>" {
		t.Errorf("got %q", got)
	}
}

func TestRenderStatesEmpty(t *testing.T) {
	if rows := RenderStates(nil, time.Now()); len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

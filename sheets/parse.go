package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"any-democrat/models"
)

// incumbentMark is appended to incumbent names in the candidates sheet.
const incumbentMark = " (i)"

// dateLayout is how the sheets spell dates, e.g. "March 3, 2020".
const dateLayout = "January 2, 2006"

// DeadlineZone is the westernmost timezone (UTC-12). Calendar dates are
// anchored here so a deadline only counts as past once it has passed everywhere.
var DeadlineZone = time.FixedZone("UTC-12", -12*60*60)

// ParsePersons splits a candidate cell into one Person per non-blank line.
func ParsePersons(cell string) []models.Person {
	var persons []models.Person
	for _, line := range strings.Split(cell, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		persons = append(persons, models.Person{
			Name:      strings.TrimSpace(strings.ReplaceAll(line, incumbentMark, "")),
			Incumbent: strings.Contains(line, incumbentMark),
		})
	}
	return persons
}

// ParseDate parses a sheet date such as "December 9, 2019".
func ParseDate(cell string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(cell), DeadlineZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("sheets: parse date %q: %w", cell, err)
	}
	return t, nil
}

// ParseNumber parses a thousands-separated integer; an empty cell is 0.
func ParseNumber(cell string) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if cleaned == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("sheets: parse number %q: %w", cell, err)
	}
	return n, nil
}

package services

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"any-democrat/models"
	"any-democrat/sheets"
	"any-democrat/utils"
)

//go:embed feed.schema.json
var feedSchemaSource string

var feedSchema = jsonschema.MustCompileString("feed.schema.json", feedSchemaSource)

// Loader fetches {head, rows} feeds over HTTP.
type Loader struct {
	http    *http.Client
	logger  *utils.Logger
	maxBody int64
}

// NewLoader creates a Loader with the given per-request timeout.
func NewLoader(timeout time.Duration, logger *utils.Logger) *Loader {
	return &Loader{http: &http.Client{Timeout: timeout}, logger: logger, maxBody: sheets.MaxBodyBytes}
}

// Fetch issues a single GET for url and decodes the feed. Non-2xx responses
// are errors; there is no retry.
func (l *Loader) Fetch(ctx context.Context, url string) (*models.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("loader: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loader: get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("loader: get %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := sheets.ReadBody(resp.Body, l.maxBody)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", url, err)
	}

	feed, err := DecodeFeed(body)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("[loader] Fetched %d rows from %s", len(feed.Rows), url)
	return feed, nil
}

// DecodeFeed validates body against the feed schema and decodes it.
func DecodeFeed(body []byte) (*models.Feed, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("loader: decode feed: %w", err)
	}
	if err := feedSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("loader: invalid feed: %w", err)
	}

	var feed models.Feed
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&feed); err != nil {
		return nil, fmt.Errorf("loader: decode feed: %w", err)
	}
	return &feed, nil
}

// ParseCandidates converts feed rows into candidate records keyed by the
// feed's head. Derived weights are left at zero.
func ParseCandidates(feed *models.Feed) ([]*models.CandidateRecord, error) {
	records := make([]*models.CandidateRecord, 0, len(feed.Rows))
	for i := range feed.Rows {
		row, err := rowFields(feed, i)
		if err != nil {
			return nil, err
		}

		rec := &models.CandidateRecord{}
		if rec.Name, err = row.requiredString(models.FieldName); err != nil {
			return nil, err
		}
		if rec.State, err = row.requiredString(models.FieldState); err != nil {
			return nil, err
		}
		if rec.Chamber, err = row.requiredString(models.FieldChamber); err != nil {
			return nil, err
		}
		if rec.District, err = row.district(); err != nil {
			return nil, err
		}
		if rec.Incumbent, err = row.boolean(models.FieldIncumbent); err != nil {
			return nil, err
		}
		if rec.Pronouns, err = row.optionalString(models.FieldPronouns); err != nil {
			return nil, err
		}
		if rec.Reason, err = row.optionalString(models.FieldReason); err != nil {
			return nil, err
		}
		if rec.DonationURL, err = row.optionalString(models.FieldDonationURL); err != nil {
			return nil, err
		}
		if rec.DetailURL, err = row.optionalString(models.FieldDetailURL); err != nil {
			return nil, err
		}
		if rec.FilingDeadline, err = row.date(models.FieldFilingDeadline); err != nil {
			return nil, err
		}
		if rec.PrimaryElection, err = row.date(models.FieldPrimaryElection); err != nil {
			return nil, err
		}
		if rec.RawWeight, err = row.number(models.FieldWeight); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseStates converts feed rows into state records keyed by the feed's head.
// A missing weight column is treated as zero.
func ParseStates(feed *models.Feed) ([]*models.StateRecord, error) {
	records := make([]*models.StateRecord, 0, len(feed.Rows))
	for i := range feed.Rows {
		row, err := rowFields(feed, i)
		if err != nil {
			return nil, err
		}

		rec := &models.StateRecord{}
		if rec.State, err = row.requiredString(models.FieldState); err != nil {
			return nil, err
		}
		if rec.Chamber, err = row.requiredString(models.FieldChamber); err != nil {
			return nil, err
		}
		if rec.Reason, err = row.optionalString(models.FieldReason); err != nil {
			return nil, err
		}
		if rec.DetailURL, err = row.optionalString(models.FieldDetailURL); err != nil {
			return nil, err
		}
		if rec.FilingDeadline, err = row.date(models.FieldFilingDeadline); err != nil {
			return nil, err
		}
		if rec.PrimaryElection, err = row.date(models.FieldPrimaryElection); err != nil {
			return nil, err
		}
		if _, present := row.values[models.FieldWeight]; present {
			if rec.Weight, err = row.number(models.FieldWeight); err != nil {
				return nil, err
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// fields is one feed row keyed by head name.
type fields struct {
	index  int
	values map[string]any
}

func rowFields(feed *models.Feed, i int) (*fields, error) {
	row := feed.Rows[i]
	if len(row) != len(feed.Head) {
		return nil, &models.ValidationError{
			Row:    i,
			Reason: fmt.Sprintf("has %d values, head has %d", len(row), len(feed.Head)),
		}
	}
	values := make(map[string]any, len(feed.Head))
	for j, name := range feed.Head {
		values[name] = row[j]
	}
	return &fields{index: i, values: values}, nil
}

func (f *fields) invalid(field, reason string) error {
	return &models.ValidationError{Row: f.index, Field: field, Reason: reason}
}

func (f *fields) requiredString(name string) (string, error) {
	v, ok := f.values[name]
	if !ok || v == nil {
		return "", f.invalid(name, "is required")
	}
	s, ok := v.(string)
	if !ok {
		return "", f.invalid(name, "must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return "", f.invalid(name, "must not be empty")
	}
	return s, nil
}

func (f *fields) optionalString(name string) (string, error) {
	v := f.values[name]
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", f.invalid(name, "must be a string")
	}
	return s, nil
}

// district accepts a number, a string or null. Feeds decoded from JSON carry
// float64 numbers; feeds built in-process carry int64.
func (f *fields) district() (string, error) {
	switch v := f.values[models.FieldDistrict].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	default:
		return "", f.invalid(models.FieldDistrict, "must be a number or string")
	}
}

// boolean accepts true/false, null, or the spreadsheet spellings yes/no.
func (f *fields) boolean(name string) (bool, error) {
	switch v := f.values[name].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes":
			return true, nil
		case "false", "no", "":
			return false, nil
		}
	}
	return false, f.invalid(name, "must be a boolean")
}

func (f *fields) number(name string) (float64, error) {
	v, ok := f.values[name]
	if !ok || v == nil {
		return 0, f.invalid(name, "is required")
	}

	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case int64:
		n = float64(x)
	case int:
		n = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(x), ",", ""), 64)
		if err != nil {
			return 0, f.invalid(name, "must be numeric")
		}
		n = parsed
	default:
		return 0, f.invalid(name, "must be numeric")
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, f.invalid(name, "must be finite")
	}
	return n, nil
}

func (f *fields) date(name string) (time.Time, error) {
	v, ok := f.values[name]
	if !ok || v == nil {
		return time.Time{}, f.invalid(name, "is required")
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, f.invalid(name, "must be a date string")
	}
	t, err := ParseFeedDate(s)
	if err != nil {
		return time.Time{}, f.invalid(name, err.Error())
	}
	return t, nil
}

// ParseFeedDate accepts ISO dates, RFC 3339 and RFC 1123 timestamps, and the
// spreadsheet spelling "January 2, 2006". Calendar dates are anchored to
// sheets.DeadlineZone.
func ParseFeedDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "January 2, 2006"} {
		if t, err := time.ParseInLocation(layout, s, sheets.DeadlineZone); err == nil {
			return t, nil
		}
	}
	for _, layout := range []string{time.RFC3339, time.RFC1123, time.RFC1123Z} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

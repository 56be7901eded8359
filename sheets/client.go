package sheets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"any-democrat/models"
	"any-democrat/utils"
)

// Column names of the published spreadsheets.
const (
	colState           = "State"
	colChamber         = "Chamber"
	colReason          = "Reason"
	colFilingDeadline  = "Filing Deadline"
	colPrimaryElection = "Primary Election"
	colWeight          = "Weight"
	colRaceDetail      = "Race Detail"
	colDistrict        = "District"
	colCandidates      = "Democratic Candidate(s)"
	colPronouns        = "Pronouns"
	colDonationURL     = "Donation URL"
)

// MaxBodyBytes caps how much of a response body is read into memory.
const MaxBodyBytes = 32 << 20

// ErrBodyTooLarge is returned when a response body exceeds the read cap.
var ErrBodyTooLarge = errors.New("response body too large")

// ReadBody reads at most limit bytes from r and fails with ErrBodyTooLarge
// when there is more.
func ReadBody(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w (limit %d bytes)", ErrBodyTooLarge, limit)
	}
	return body, nil
}

// Client downloads and parses the states and candidates CSV sheets.
type Client struct {
	http    *http.Client
	logger  *utils.Logger
	retry   *utils.RetryConfig
	maxBody int64
}

// NewClient creates a Client with the given per-request timeout and retry budget.
func NewClient(timeout time.Duration, maxRetries int, logger *utils.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		maxBody: MaxBodyBytes,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
	}
}

// LoadAll fetches both sheets concurrently.
func (c *Client) LoadAll(ctx context.Context, statesURL, candidatesURL string) (map[models.StateKey]*models.SourceState, []*models.SourceCandidate, error) {
	var (
		states     map[models.StateKey]*models.SourceState
		candidates []*models.SourceCandidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		states, err = c.LoadStates(gctx, statesURL)
		return err
	})
	g.Go(func() error {
		var err error
		candidates, err = c.LoadCandidates(gctx, candidatesURL)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return states, candidates, nil
}

// LoadStates fetches the states sheet, keyed by state and chamber.
func (c *Client) LoadStates(ctx context.Context, url string) (map[models.StateKey]*models.SourceState, error) {
	rows, err := c.fetchRows(ctx, "states", url)
	if err != nil {
		return nil, err
	}

	states := make(map[models.StateKey]*models.SourceState, len(rows))
	for i, row := range rows {
		filing, err := ParseDate(row[colFilingDeadline])
		if err != nil {
			return nil, fmt.Errorf("sheets: states row %d: %w", i+1, err)
		}
		primary, err := ParseDate(row[colPrimaryElection])
		if err != nil {
			return nil, fmt.Errorf("sheets: states row %d: %w", i+1, err)
		}
		weight, err := ParseNumber(row[colWeight])
		if err != nil {
			return nil, fmt.Errorf("sheets: states row %d: %w", i+1, err)
		}

		s := &models.SourceState{
			State:           row[colState],
			Chamber:         row[colChamber],
			Reason:          row[colReason],
			FilingDeadline:  filing,
			PrimaryElection: primary,
			Weight:          weight,
			DetailURL:       row[colRaceDetail],
		}
		states[s.Key()] = s
	}

	c.logger.Info("[sheets] Loaded %d states from %s", len(states), url)
	return states, nil
}

// LoadCandidates fetches the candidates sheet; a cell naming several people
// yields one SourceCandidate per person.
func (c *Client) LoadCandidates(ctx context.Context, url string) ([]*models.SourceCandidate, error) {
	rows, err := c.fetchRows(ctx, "candidates", url)
	if err != nil {
		return nil, err
	}

	var candidates []*models.SourceCandidate
	for i, row := range rows {
		var district *int64
		if strings.TrimSpace(row[colDistrict]) != "" {
			n, err := ParseNumber(row[colDistrict])
			if err != nil {
				return nil, fmt.Errorf("sheets: candidates row %d: %w", i+1, err)
			}
			district = &n
		}

		persons := ParsePersons(row[colCandidates])
		for _, p := range persons {
			cand := &models.SourceCandidate{
				State:     row[colState],
				Chamber:   row[colChamber],
				District:  district,
				Name:      p.Name,
				Incumbent: p.Incumbent,
			}
			// Per-row extras only make sense when the row names one person.
			if len(persons) == 1 {
				cand.Pronouns = row[colPronouns]
				cand.DonationURL = row[colDonationURL]
			}
			candidates = append(candidates, cand)
		}
	}

	c.logger.Info("[sheets] Loaded %d candidates from %s", len(candidates), url)
	return candidates, nil
}

// fetchRows downloads a CSV sheet and returns its rows keyed by header name.
// Short rows are padded with empty strings.
func (c *Client) fetchRows(ctx context.Context, name, url string) ([]map[string]string, error) {
	var body []byte
	err := c.retry.Do(ctx, "fetch-"+name, func(ctx context.Context) error {
		var err error
		body, err = c.get(ctx, url)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("sheets: fetch %s: %w", name, err)
	}

	r := csv.NewReader(strings.NewReader(string(body)))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("sheets: parse %s csv: %w", name, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for j, col := range header {
			if j < len(rec) {
				row[col] = rec[j]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return ReadBody(resp.Body, c.maxBody)
}

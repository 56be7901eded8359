package services

import (
	"net/url"
	"strings"
	"time"

	"any-democrat/models"
)

// Element ids the candidate panel is rendered into.
const (
	ElemName1     = "name1"
	ElemName2     = "name2"
	ElemVerb      = "verb"
	ElemElection  = "election"
	ElemReason    = "reason"
	ElemLink      = "link"
	ElemRace      = "race"
	ElemCandidate = "candidate"
)

const senateChamber = "U.S. Senate"

// displayDateLayout matches the US short locale date, e.g. 3/1/2024.
const displayDateLayout = "1/2/2006"

// Document is a set of output targets addressed by element id.
type Document interface {
	SetText(id, text string)
	SetHref(id, href string)
	SetVisible(id string, visible bool)
}

// CandidateView is the rendered content of the candidate panel.
type CandidateView struct {
	Name1    string
	Name2    string
	Verb     string
	Election string
	Reason   string
	// ReasonVisible is false when the race's reason has no explanation.
	ReasonVisible bool
	Race          string
	Link          string
	Visible       bool
}

// Apply writes the view into doc. The election notice is only written when
// there is one, leaving any existing content untouched otherwise.
func (v *CandidateView) Apply(doc Document) {
	doc.SetText(ElemName1, v.Name1)
	doc.SetText(ElemName2, v.Name2)
	doc.SetText(ElemVerb, v.Verb)
	if v.Election != "" {
		doc.SetText(ElemElection, v.Election)
	}
	if v.ReasonVisible {
		doc.SetText(ElemReason, v.Reason)
	} else {
		doc.SetVisible(ElemReason, false)
	}
	doc.SetHref(ElemLink, v.Link)
	doc.SetText(ElemRace, v.Race)
	doc.SetVisible(ElemCandidate, v.Visible)
}

// Renderer turns a selected candidate into a CandidateView.
type Renderer struct {
	reasons       *ReasonCatalog
	searchBaseURL string
}

// NewRenderer creates a Renderer. searchBaseURL is prefixed to the escaped
// search phrase when a candidate has no donation link.
func NewRenderer(reasons *ReasonCatalog, searchBaseURL string) *Renderer {
	return &Renderer{reasons: reasons, searchBaseURL: searchBaseURL}
}

// RenderCandidate builds the panel for c as of now.
func (r *Renderer) RenderCandidate(c *models.CandidateRecord, now time.Time) *CandidateView {
	v := &CandidateView{
		Name1:   c.Name,
		Name2:   c.Name,
		Verb:    verbPhrase(c),
		Visible: true,
	}

	if now.Before(c.PrimaryElection) {
		v.Election = strings.Join([]string{
			c.State, "primary election is coming up",
			c.PrimaryElection.Format(displayDateLayout),
		}, " ")
	}

	v.Reason, v.ReasonVisible = r.reasons.Explain(c)

	phrase, search := racePhrases(c)
	v.Race = phrase
	if isWebURL(c.DonationURL) {
		v.Link = c.DonationURL
	} else {
		v.Link = r.searchBaseURL + url.QueryEscape(search)
	}
	return v
}

// isWebURL reports whether s is an absolute http or https URL.
func isWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func verbPhrase(c *models.CandidateRecord) string {
	if c.Incumbent {
		return "running as an incumbent"
	}
	if parts := strings.Split(c.Pronouns, "/"); len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		return "seeking " + strings.TrimSpace(parts[1]) + " first term"
	}
	return "seeking their first term"
}

// racePhrases returns the displayed race description and the search phrase
// used for the fallback support link.
func racePhrases(c *models.CandidateRecord) (phrase, search string) {
	if c.Chamber == senateChamber {
		return strings.Join([]string{"the", c.Chamber, "in", c.State}, " "),
			strings.Join([]string{c.Name, c.Chamber, c.State}, " ")
	}
	return strings.Join([]string{"the", c.State, c.Chamber, "in District", c.District}, " "),
		strings.Join([]string{c.Name, c.State, c.Chamber, "District", c.District}, " ")
}

// Element is the accumulated state of one output target.
type Element struct {
	Text    *string `json:"text,omitempty"`
	Href    *string `json:"href,omitempty"`
	Visible *bool   `json:"visible,omitempty"`
}

// ElementSet is an in-memory Document, keyed by element id.
type ElementSet map[string]*Element

func (s ElementSet) elem(id string) *Element {
	e, ok := s[id]
	if !ok {
		e = &Element{}
		s[id] = e
	}
	return e
}

func (s ElementSet) SetText(id, text string) {
	s.elem(id).Text = &text
}

func (s ElementSet) SetHref(id, href string) {
	s.elem(id).Href = &href
}

func (s ElementSet) SetVisible(id string, visible bool) {
	s.elem(id).Visible = &visible
}

package services

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"any-democrat/models"
)

//go:embed reasons.yaml
var defaultReasons []byte

// ReasonCatalog maps a race reason to its explanation template.
type ReasonCatalog struct {
	Reasons map[string]string `yaml:"reasons"`
}

// DefaultReasonCatalog returns the built-in catalog.
func DefaultReasonCatalog() (*ReasonCatalog, error) {
	return ParseReasonCatalog(defaultReasons)
}

// ParseReasonCatalog decodes a YAML catalog.
func ParseReasonCatalog(data []byte) (*ReasonCatalog, error) {
	var cat ReasonCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("reasons: parse catalog: %w", err)
	}
	if cat.Reasons == nil {
		cat.Reasons = map[string]string{}
	}
	return &cat, nil
}

// Explain fills the template for c's reason. ok is false for reasons the
// catalog doesn't know.
func (r *ReasonCatalog) Explain(c *models.CandidateRecord) (text string, ok bool) {
	tmpl, ok := r.Reasons[c.Reason]
	if !ok {
		return "", false
	}
	return strings.NewReplacer(
		"{name}", c.Name,
		"{state}", c.State,
		"{chamber}", c.Chamber,
	).Replace(strings.TrimSpace(tmpl)), true
}

package common

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// DeletedAuthor is the sentinel for removed or unknown authors. It is never
// materialized as a User node in the graph.
const DeletedAuthor = "deleted"

// EntityTypePolitical is the coarse type tag assigned to extracted entities.
const EntityTypePolitical = "POLITICAL"

// StanceLabel is the closed set of stance polarities a text can hold
// toward a political entity.
type StanceLabel string

const (
	StanceFavorable StanceLabel = "FAVORABLE"
	StanceAgainst   StanceLabel = "AGAINST"
	StanceNeutral   StanceLabel = "NEUTRAL"
)

// ParseStanceLabel normalizes and validates a raw label string.
func ParseStanceLabel(raw string) (StanceLabel, error) {
	label := StanceLabel(strings.ToUpper(strings.TrimSpace(raw)))
	switch label {
	case StanceFavorable, StanceAgainst, StanceNeutral:
		return label, nil
	}
	return "", fmt.Errorf("invalid stance label: %q", raw)
}

func (l StanceLabel) Valid() bool {
	switch l {
	case StanceFavorable, StanceAgainst, StanceNeutral:
		return true
	}
	return false
}

// PoliticalEntity is a named political figure, organization or concept
// extracted from a text. Name is the graph-unique key.
type PoliticalEntity struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required"`
}

// Stance is a confidence-scored opinion polarity held by one text toward
// one entity. Sentence records the exact source text the classification
// was made from; the enrichment pipeline uses it to re-associate batched
// classification results with their originating item.
type Stance struct {
	TargetEntity string      `json:"target_entity_name" validate:"required"`
	Label        StanceLabel `json:"stance"`
	Confidence   float64     `json:"confidence" validate:"gte=0,lte=1"`
	Sentence     string      `json:"sentence"`
}

// NewStance builds a validated Stance. Label and confidence bounds are
// enforced here, at construction, not at storage time.
func NewStance(target, rawLabel string, confidence float64, sentence string) (Stance, error) {
	label, err := ParseStanceLabel(rawLabel)
	if err != nil {
		return Stance{}, err
	}
	s := Stance{
		TargetEntity: target,
		Label:        label,
		Confidence:   confidence,
		Sentence:     sentence,
	}
	if err := validate.Struct(s); err != nil {
		return Stance{}, &ValidationError{Kind: "stance", Err: err}
	}
	return s, nil
}

// Post is an enriched discussion-thread post ready for graph loading.
type Post struct {
	ID             string            `json:"id" validate:"required"`
	Author         string            `json:"author" validate:"required"`
	Content        string            `json:"content"`
	CleanedContent string            `json:"cleaned_content"`
	Timestamp      int64             `json:"timestamp" validate:"required"`
	Score          int               `json:"score"`
	Channel        string            `json:"channel" validate:"required"`
	Entities       []PoliticalEntity `json:"entities" validate:"dive"`
	Stances        []Stance          `json:"stances" validate:"dive"`
	Embedding      []float32         `json:"embedding"`
}

// Comment is an enriched reply to a Post. PostID must reference an existing
// Post before the reply edge can be created.
type Comment struct {
	ID             string            `json:"id" validate:"required"`
	PostID         string            `json:"post_id" validate:"required"`
	Author         string            `json:"author" validate:"required"`
	Content        string            `json:"content"`
	CleanedContent string            `json:"cleaned_content"`
	Timestamp      int64             `json:"timestamp" validate:"required"`
	Score          int               `json:"score"`
	Entities       []PoliticalEntity `json:"entities" validate:"dive"`
	Stances        []Stance          `json:"stances" validate:"dive"`
	Embedding      []float32         `json:"embedding"`
}

// ValidationError reports a record that failed structural validation during
// assembly. Callers route these to the failure sink instead of loading.
type ValidationError struct {
	Kind string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %v", e.Kind, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var validate = validator.New()

// ValidatePost checks a fully assembled Post. Empty authors collapse to the
// deleted sentinel before validation.
func ValidatePost(p *Post) error {
	if p.Author == "" {
		p.Author = DeletedAuthor
	}
	for _, s := range p.Stances {
		if !s.Label.Valid() {
			return &ValidationError{Kind: "post", Err: fmt.Errorf("invalid stance label %q", s.Label)}
		}
	}
	if err := validate.Struct(p); err != nil {
		return &ValidationError{Kind: "post", Err: err}
	}
	return nil
}

// ValidateComment checks a fully assembled Comment.
func ValidateComment(c *Comment) error {
	if c.Author == "" {
		c.Author = DeletedAuthor
	}
	for _, s := range c.Stances {
		if !s.Label.Valid() {
			return &ValidationError{Kind: "comment", Err: fmt.Errorf("invalid stance label %q", s.Label)}
		}
	}
	if err := validate.Struct(c); err != nil {
		return &ValidationError{Kind: "comment", Err: err}
	}
	return nil
}

package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Contract represents a managed agreement loaded from the contracts document
type Contract struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Parties    []string   `json:"parties"`
	StartDate  Date       `json:"startDate"`
	ExpiryDate Date       `json:"expiryDate"`
	Status     string     `json:"status"` // active, pending, expired, expiring_soon
	RiskScore  float64    `json:"riskScore"`
	Value      float64    `json:"value"` // 0 means unspecified
	Type       string     `json:"type"`
	Clauses    []Clause   `json:"clauses,omitempty"`
	Insights   []Insight  `json:"insights,omitempty"`
	Evidence   []Evidence `json:"evidence,omitempty"`
}

// Clause is an extracted clause summary
type Clause struct {
	ID         string  `json:"id,omitempty"`
	Title      string  `json:"title"`
	Summary    string  `json:"summary"`
	Confidence float64 `json:"confidence"`
	RiskLevel  string  `json:"riskLevel"`
}

// Insight is a derived risk or recommendation
type Insight struct {
	Type        string `json:"type"` // risk, recommendation
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Evidence is a snippet of source text cited by an insight or clause
type Evidence struct {
	Snippet   string  `json:"snippet"`
	Relevance float64 `json:"relevance"`
	Page      int     `json:"page"`
	Section   string  `json:"section"`
}

// Contract status constants
const (
	StatusActive       = "active"
	StatusPending      = "pending"
	StatusExpired      = "expired"
	StatusExpiringSoon = "expiring_soon"
)

// Insight type constants
const (
	InsightRisk           = "risk"
	InsightRecommendation = "recommendation"
)

// Severity and clause risk levels share the low/medium/high scale
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// MaxRiskScore is the upper bound of the risk score scale
const MaxRiskScore = 5.0

// ErrInvalidContract is wrapped by every Validate failure
var ErrInvalidContract = errors.New("invalid contract")

// ValidStatus reports whether s is one of the contract statuses
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusPending, StatusExpired, StatusExpiringSoon:
		return true
	}
	return false
}

func validLevel(s string) bool {
	return s == LevelLow || s == LevelMedium || s == LevelHigh
}

// Validate checks the record against the contracts document schema
func (c *Contract) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return invalid("id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name is required")
	}
	if len(c.Parties) == 0 {
		return invalid("at least one party is required")
	}
	for i, p := range c.Parties {
		if strings.TrimSpace(p) == "" {
			return invalid("party %d is empty", i)
		}
	}
	if c.StartDate.IsZero() || c.ExpiryDate.IsZero() {
		return invalid("startDate and expiryDate are required")
	}
	if c.ExpiryDate.Before(c.StartDate.Time) {
		return invalid("expiryDate %s is before startDate %s", c.ExpiryDate, c.StartDate)
	}
	if !ValidStatus(c.Status) {
		return invalid("unknown status %q", c.Status)
	}
	if c.RiskScore < 0 || c.RiskScore > MaxRiskScore {
		return invalid("riskScore %v out of range [0,%v]", c.RiskScore, MaxRiskScore)
	}
	if c.Value < 0 {
		return invalid("value %v is negative", c.Value)
	}

	for i, cl := range c.Clauses {
		if cl.Confidence < 0 || cl.Confidence > 1 {
			return invalid("clause %d confidence %v out of range [0,1]", i, cl.Confidence)
		}
		if !validLevel(cl.RiskLevel) {
			return invalid("clause %d has unknown riskLevel %q", i, cl.RiskLevel)
		}
	}
	for i, in := range c.Insights {
		if in.Type != InsightRisk && in.Type != InsightRecommendation {
			return invalid("insight %d has unknown type %q", i, in.Type)
		}
		if !validLevel(in.Severity) {
			return invalid("insight %d has unknown severity %q", i, in.Severity)
		}
	}
	for i, ev := range c.Evidence {
		if ev.Relevance < 0 || ev.Relevance > 1 {
			return invalid("evidence %d relevance %v out of range [0,1]", i, ev.Relevance)
		}
		if ev.Page < 1 {
			return invalid("evidence %d page %d must be positive", i, ev.Page)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidContract, fmt.Sprintf(format, args...))
}

// DateLayout is the calendar date format used in the contracts document
const DateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	t = t.UTC()
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Package model defines the core domain types for the retreat status service.
//
// Retreats and pricing tiers are owned by the external backend; the JSON names
// below mirror its payloads so records can be decoded without translation.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// RetreatStatus is the author-set lifecycle value stored on a retreat.
type RetreatStatus string

const (
	RetreatStatusDraft     RetreatStatus = "draft"
	RetreatStatusActive    RetreatStatus = "active"
	RetreatStatusCompleted RetreatStatus = "completed"
	RetreatStatusCancelled RetreatStatus = "cancelled"
)

// DefaultCurrency is used when a retreat does not declare one.
const DefaultCurrency = "ARS"

// Retreat is a read-only snapshot of a retreat as served by the backend.
type Retreat struct {
	ID                  string        `json:"_id"`
	Title               string        `json:"title"`
	Description         string        `json:"description,omitempty"`
	Location            string        `json:"location,omitempty"`
	StartDate           *Timestamp    `json:"startDate,omitempty"`
	EndDate             *Timestamp    `json:"endDate,omitempty"`
	Status              RetreatStatus `json:"status,omitempty"`
	ComputedStatus      string        `json:"computedStatus,omitempty"`
	AvailableSpots      *int          `json:"availableSpots,omitempty"`
	IsFull              bool          `json:"isFull,omitempty"`
	MaxParticipants     int           `json:"maxParticipants,omitempty"`
	CurrentParticipants int           `json:"currentParticipants,omitempty"`
	Price               float64       `json:"price"`
	Currency            string        `json:"currency,omitempty"`
	PricingTiers        []PricingTier `json:"pricingTiers,omitempty"`
}

// CurrencyOrDefault returns the declared currency or DefaultCurrency.
func (r *Retreat) CurrencyOrDefault() string {
	if r.Currency == "" {
		return DefaultCurrency
	}
	return r.Currency
}

// HasDates reports whether both start and end dates are set.
func (r *Retreat) HasDates() bool {
	return !r.StartDate.IsZero() && !r.EndDate.IsZero()
}

// PricingTier is a time-bound price override, eligible while now <= ValidUntil.
type PricingTier struct {
	Name           string     `json:"name"`
	Price          float64    `json:"price"`
	ValidUntil     *Timestamp `json:"validUntil,omitempty"`
	PaymentOptions []string   `json:"paymentOptions,omitempty"`
}

// Timestamp decodes the date formats the backend emits: RFC 3339 timestamps,
// zone-less ISO timestamps and bare calendar dates, all without a zone read as
// UTC. Empty or unparseable strings decode to the zero time so one bad record
// degrades to its author-set status instead of failing a whole listing.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses s using the accepted layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	if s == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t.UTC()}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

// IsZero is nil-safe so optional dates can be checked without guarding.
func (t *Timestamp) IsZero() bool {
	return t == nil || t.Time.IsZero()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		*t = Timestamp{}
		return nil
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}

// LeadInterest is what the visitor wants from the enquiry.
type LeadInterest string

const (
	LeadInterestBook    LeadInterest = "reservar"
	LeadInterestInfo    LeadInterest = "info"
	LeadInterestInquiry LeadInterest = "consulta"
)

// Valid reports whether i is one of the known interests.
func (i LeadInterest) Valid() bool {
	switch i {
	case LeadInterestBook, LeadInterestInfo, LeadInterestInquiry:
		return true
	}
	return false
}

// LeadSourceLanding tags leads submitted through this service.
const LeadSourceLanding = "landing"

// Lead is a landing-page enquiry forwarded to the backend.
type Lead struct {
	ID        string       `json:"_id,omitempty"`
	Reference string       `json:"reference,omitempty"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone,omitempty"`
	Message   string       `json:"message,omitempty"`
	Interest  LeadInterest `json:"interest"`
	Retreat   string       `json:"retreat,omitempty"`
	Source    string       `json:"source"`
}

// CreateLeadRequest is the payload for submitting an enquiry.
type CreateLeadRequest struct {
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Phone    string       `json:"phone"`
	Message  string       `json:"message"`
	Interest LeadInterest `json:"interest"`
	Retreat  string       `json:"retreat"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/retreat-status/internal/lifecycle"
	"github.com/Shivanand-hulikatti/retreat-status/internal/model"
)

// SubmitLead validates an enquiry from the landing page and forwards it to the
// lead sink. Booking requests are only accepted for retreats that are open.
func (s *RetreatService) SubmitLead(ctx context.Context, req model.CreateLeadRequest) (*model.Lead, error) {
	lead, err := normalizeLead(req)
	if err != nil {
		return nil, err
	}

	if lead.Retreat != "" {
		r, err := s.source.GetByID(ctx, lead.Retreat)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("load retreat for lead: %w", err)
		}
		if lead.Interest == model.LeadInterestBook {
			if err := checkBookable(r, s.clock.Now()); err != nil {
				return nil, err
			}
		}
	}

	if s.leads == nil {
		return nil, ErrLeadsUnavailable
	}

	created, err := s.leads.CreateLead(ctx, lead)
	if err != nil {
		return nil, fmt.Errorf("submit lead: %w", err)
	}
	s.logger.Info("lead submitted",
		"reference", lead.Reference,
		"retreat_id", lead.Retreat,
		"interest", string(lead.Interest),
	)
	return created, nil
}

func normalizeLead(req model.CreateLeadRequest) (model.Lead, error) {
	lead := model.Lead{
		Reference: uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(strings.ToLower(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
		Message:   strings.TrimSpace(req.Message),
		Interest:  req.Interest,
		Retreat:   strings.TrimSpace(req.Retreat),
		Source:    model.LeadSourceLanding,
	}

	if lead.Name == "" {
		return model.Lead{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if lead.Email == "" {
		return model.Lead{}, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !isValidEmail(lead.Email) {
		return model.Lead{}, fmt.Errorf("%w: email is not a valid email address", ErrValidation)
	}
	if lead.Interest == "" {
		lead.Interest = model.LeadInterestInquiry
	}
	if !lead.Interest.Valid() {
		return model.Lead{}, fmt.Errorf("%w: interest %q is not supported", ErrValidation, lead.Interest)
	}
	if lead.Interest == model.LeadInterestBook && lead.Retreat == "" {
		return model.Lead{}, fmt.Errorf("%w: retreat is required to book", ErrValidation)
	}
	return lead, nil
}

func checkBookable(r *model.Retreat, now time.Time) error {
	if lifecycle.IsAvailableForBooking(r, now) {
		return nil
	}
	if lifecycle.IsUpcoming(r, now) {
		return ErrRetreatFull
	}
	return ErrBookingClosed
}

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}

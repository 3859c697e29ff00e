// Package booking turns a completed slot selection into a booking request and
// serves the user's booking list views.
package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"campus-sports-cli/api"
	"campus-sports-cli/availability"
	"campus-sports-cli/storage"
)

const CreateFailureMessage = "Failed to create booking. Please try again."

// ValidationError is a local, field-scoped failure found before any request
// is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Draft is the form being submitted.
type Draft struct {
	Sport    api.Sport
	Date     string
	TimeSlot string
	Notes    string
}

// DraftFrom reads the current pick off a selector.
func DraftFrom(sel *availability.Selector, notes string) Draft {
	picked, _ := sel.Selection()
	return Draft{Sport: picked.Sport, Date: picked.Date, TimeSlot: picked.TimeSlot, Notes: notes}
}

func (d Draft) Validate() error {
	if _, ok := api.ParseSport(string(d.Sport)); !ok {
		return &ValidationError{Field: "sport", Message: "Please select a sport"}
	}
	if _, ok := availability.ParseDate(d.Date); !ok {
		return &ValidationError{Field: "booking_date", Message: "Please select a valid date"}
	}
	if strings.TrimSpace(d.TimeSlot) == "" {
		return &ValidationError{Field: "time_slot", Message: "Please select a time slot"}
	}
	return nil
}

type Creator interface {
	CreateBooking(ctx context.Context, payload api.CreateBookingRequest) (api.Booking, error)
}

type Submitter struct {
	remote Creator
	cache  storage.ViewCache
	userID int64
	logger *log.Logger
}

func NewSubmitter(remote Creator, cache storage.ViewCache, userID int64, logger *log.Logger) *Submitter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Submitter{remote: remote, cache: cache, userID: userID, logger: logger}
}

// Submit validates the draft locally, creates the booking and drops the
// cached list views so the next read shows it.
func (s *Submitter) Submit(ctx context.Context, draft Draft) (api.Booking, error) {
	if err := draft.Validate(); err != nil {
		return api.Booking{}, err
	}

	created, err := s.remote.CreateBooking(ctx, api.CreateBookingRequest{
		Sport:       draft.Sport,
		BookingDate: draft.Date,
		TimeSlot:    draft.TimeSlot,
		Notes:       strings.TrimSpace(draft.Notes),
	})
	if err != nil {
		return api.Booking{}, fmt.Errorf("create booking: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateViews(ctx, storage.UserViewKeys(s.userID)...); err != nil {
			s.logger.Printf("booking views invalidate error=%q user_id=%d", err, s.userID)
		}
	}
	return created, nil
}

// FailureMessage is the text to show when Submit fails.
func FailureMessage(err error) string {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Message
	}
	return api.UserMessage(err, CreateFailureMessage)
}

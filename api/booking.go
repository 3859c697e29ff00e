package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func (c *Client) ListBookings(ctx context.Context) ([]Booking, error) {
	req, err := c.newAPIRequest(ctx, http.MethodGet, "/bookings/", nil, nil)
	if err != nil {
		return nil, err
	}
	return doList[Booking](c, req)
}

func (c *Client) MyBookings(ctx context.Context) ([]Booking, error) {
	req, err := c.newAPIRequest(ctx, http.MethodGet, "/bookings/my_booking/", nil, nil)
	if err != nil {
		return nil, err
	}
	return doList[Booking](c, req)
}

func (c *Client) CreateBooking(ctx context.Context, payload CreateBookingRequest) (Booking, error) {
	req, err := c.newAPIRequest(ctx, http.MethodPost, "/bookings/", nil, payload)
	if err != nil {
		return Booking{}, err
	}

	var booking Booking
	if err := c.doJSON(req, &booking); err != nil {
		return Booking{}, err
	}
	return booking, nil
}

// AvailableTimeSlots returns the slot labels in server order. A successful
// response with no slots yields an empty, non-nil slice.
func (c *Client) AvailableTimeSlots(ctx context.Context, sport Sport, date string) ([]string, error) {
	q := url.Values{}
	q.Set("sport", string(sport))
	q.Set("date", date)

	req, err := c.newAPIRequest(ctx, http.MethodGet, "/bookings/available_timeslots/", q, nil)
	if err != nil {
		return nil, err
	}

	var resp availableSlotsResponse
	if err := c.doJSON(req, &resp); err != nil {
		return nil, err
	}
	if resp.AvailableSlots == nil {
		return nil, fmt.Errorf("available_timeslots response missing available_slots")
	}
	slots := make([]string, len(*resp.AvailableSlots))
	copy(slots, *resp.AvailableSlots)
	return slots, nil
}

package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"campus-sports-cli/api"
	"campus-sports-cli/availability"
	"campus-sports-cli/storage"
)

type Fetcher interface {
	ListBookings(ctx context.Context) ([]api.Booking, error)
	MyBookings(ctx context.Context) ([]api.Booking, error)
}

// Lister serves the booking list views. A view is fetched once and then read
// from the cache until it is invalidated or a refresh is asked for.
type Lister struct {
	remote Fetcher
	cache  storage.ViewCache
	userID int64
	logger *log.Logger
}

func NewLister(remote Fetcher, cache storage.ViewCache, userID int64, logger *log.Logger) *Lister {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Lister{remote: remote, cache: cache, userID: userID, logger: logger}
}

func (l *Lister) All(ctx context.Context, refresh bool) ([]api.Booking, error) {
	return l.load(ctx, storage.ViewAllBookings, refresh, l.remote.ListBookings)
}

func (l *Lister) Mine(ctx context.Context, refresh bool) ([]api.Booking, error) {
	return l.load(ctx, storage.ViewMyBookings, refresh, l.remote.MyBookings)
}

func (l *Lister) load(ctx context.Context, view string, refresh bool, fetch func(context.Context) ([]api.Booking, error)) ([]api.Booking, error) {
	key := storage.ViewKey(l.userID, view)
	if l.cache != nil && !refresh {
		var cached []api.Booking
		err := l.cache.LoadView(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, storage.ErrCacheMiss) {
			l.logger.Printf("booking view load error=%q key=%s", err, key)
		}
	}

	bookings, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", view, err)
	}

	if l.cache != nil {
		if err := l.cache.StoreView(ctx, key, bookings); err != nil {
			l.logger.Printf("booking view store error=%q key=%s", err, key)
		}
	}
	return bookings, nil
}

// Filter narrows a booking list. Zero fields match everything; dates are
// inclusive.
type Filter struct {
	Sport  api.Sport
	Status api.BookingStatus
	From   string
	To     string
}

func (f Filter) Validate() error {
	if f.From != "" {
		if _, ok := availability.ParseDate(f.From); !ok {
			return &ValidationError{Field: "from", Message: fmt.Sprintf("invalid from date %q (expected YYYY-MM-DD)", f.From)}
		}
	}
	if f.To != "" {
		if _, ok := availability.ParseDate(f.To); !ok {
			return &ValidationError{Field: "to", Message: fmt.Sprintf("invalid to date %q (expected YYYY-MM-DD)", f.To)}
		}
	}
	if f.From != "" && f.To != "" && f.From > f.To {
		return &ValidationError{Field: "from", Message: "from date must be on or before to date"}
	}
	return nil
}

func (f Filter) Apply(bookings []api.Booking) []api.Booking {
	filtered := make([]api.Booking, 0, len(bookings))
	for _, booking := range bookings {
		if f.Sport != "" && booking.Sport != f.Sport {
			continue
		}
		if f.Status != "" && booking.Status != f.Status {
			continue
		}
		if f.From != "" && booking.BookingDate < f.From {
			continue
		}
		if f.To != "" && booking.BookingDate > f.To {
			continue
		}
		filtered = append(filtered, booking)
	}
	return filtered
}

type Stats struct {
	TotalBookings     int `json:"total_bookings"`
	CompletedBookings int `json:"completed_bookings"`
	UpcomingBookings  int `json:"upcoming_bookings"`
}

func ComputeStats(bookings []api.Booking, now time.Time) Stats {
	today := now.Format(availability.DateLayout)
	stats := Stats{TotalBookings: len(bookings)}
	for _, booking := range bookings {
		switch booking.Status {
		case api.StatusCompleted:
			stats.CompletedBookings++
		case api.StatusConfirmed:
			if booking.BookingDate >= today {
				stats.UpcomingBookings++
			}
		}
	}
	return stats
}

// TodaysActive returns confirmed bookings for today.
func TodaysActive(bookings []api.Booking, now time.Time) []api.Booking {
	today := now.Format(availability.DateLayout)
	active := []api.Booking{}
	for _, booking := range bookings {
		if booking.BookingDate == today && booking.Status == api.StatusConfirmed {
			active = append(active, booking)
		}
	}
	return active
}

// Recent returns the first n bookings in server order.
func Recent(bookings []api.Booking, n int) []api.Booking {
	if len(bookings) <= n {
		return bookings
	}
	return bookings[:n]
}

// DateLabel renders a booking date as Today, Tomorrow or a long date.
func DateLabel(date string, now time.Time) string {
	parsed, ok := availability.ParseDate(date)
	if !ok {
		return date
	}
	switch date {
	case now.Format(availability.DateLayout):
		return "Today"
	case now.AddDate(0, 0, 1).Format(availability.DateLayout):
		return "Tomorrow"
	}
	return parsed.Format("January 02, 2006")
}

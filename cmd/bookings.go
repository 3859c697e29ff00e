package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"campus-sports-cli/api"
	"campus-sports-cli/booking"

	"github.com/spf13/cobra"
)

const bookingsFailureMessage = "Failed to load bookings."

func bookingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List bookings",
	}

	cmd.AddCommand(bookingsListCmd())
	cmd.AddCommand(bookingsMineCmd())
	return cmd
}

func bookingsListCmd() *cobra.Command {
	var sportValue string
	var statusValue string
	var from string
	var to string
	var refresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := buildFilter(sportValue, statusValue, from, to, time.Now())
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, a *app) error {
				user, err := a.requireUser()
				if err != nil {
					return err
				}
				bookings, err := booking.NewLister(client, a.views, user.ID, logger).All(ctx, refresh)
				if err != nil {
					return remoteError(err, bookingsFailureMessage)
				}
				return renderBookings(filter.Apply(bookings))
			})
		},
	}

	cmd.Flags().StringVar(&sportValue, "sport", "", "Only this sport")
	cmd.Flags().StringVar(&statusValue, "status", "", "Only this status (pending, confirmed, cancelled, completed)")
	cmd.Flags().StringVar(&from, "from", "", "Start date (today, tomorrow or YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "End date (today, tomorrow or YYYY-MM-DD)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the local view cache")
	return cmd
}

func bookingsMineCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List your active bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				user, err := a.requireUser()
				if err != nil {
					return err
				}
				bookings, err := booking.NewLister(client, a.views, user.ID, logger).Mine(ctx, refresh)
				if err != nil {
					return remoteError(err, bookingsFailureMessage)
				}
				return renderBookings(bookings)
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the local view cache")
	return cmd
}

func buildFilter(sportValue, statusValue, from, to string, now time.Time) (booking.Filter, error) {
	filter := booking.Filter{From: dateInput(from, now), To: dateInput(to, now)}
	if sportValue != "" {
		sport, ok := api.ParseSport(sportValue)
		if !ok {
			return booking.Filter{}, fmt.Errorf("--sport must be one of %s", choiceValues(api.SportChoices))
		}
		filter.Sport = sport
	}
	if statusValue != "" {
		status, ok := api.ParseBookingStatus(statusValue)
		if !ok {
			return booking.Filter{}, fmt.Errorf("unknown status %q", statusValue)
		}
		filter.Status = status
	}
	if err := filter.Validate(); err != nil {
		return booking.Filter{}, err
	}
	return filter, nil
}

func renderBookings(bookings []api.Booking) error {
	if outputJSON {
		return writeJSON(bookings)
	}

	if len(bookings) == 0 {
		fmt.Println("No bookings found.")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
	if !outputCompact {
		fmt.Fprintln(writer, "ID\tDATE\tTIME\tSPORT\tSTATUS\tNOTES")
	}
	for _, b := range bookings {
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\t%s\n", b.ID, b.BookingDate, b.TimeSlot, b.Sport.Label(), b.Status.Label(), b.Notes.ValueOrZero())
	}
	return writer.Flush()
}

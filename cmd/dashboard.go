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

const recentBookings = 3

type DashboardOutput struct {
	User   api.User      `json:"user"`
	Stats  booking.Stats `json:"stats"`
	Today  []api.Booking `json:"today"`
	Recent []api.Booking `json:"recent"`
}

func dashboardCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show booking stats, today's bookings and recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				user, err := a.requireUser()
				if err != nil {
					return err
				}
				bookings, err := booking.NewLister(client, a.views, user.ID, logger).All(ctx, refresh)
				if err != nil {
					return remoteError(err, bookingsFailureMessage)
				}

				now := time.Now()
				output := DashboardOutput{
					User:   user,
					Stats:  booking.ComputeStats(bookings, now),
					Today:  booking.TodaysActive(bookings, now),
					Recent: booking.Recent(bookings, recentBookings),
				}
				if outputJSON {
					return writeJSON(output)
				}
				return renderDashboard(output, now)
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the local view cache")
	return cmd
}

func renderDashboard(output DashboardOutput, now time.Time) error {
	stats := output.Stats
	if outputCompact {
		fmt.Printf("total=%d completed=%d upcoming=%d today=%d\n", stats.TotalBookings, stats.CompletedBookings, stats.UpcomingBookings, len(output.Today))
		return nil
	}

	fmt.Printf("Welcome back, %s\n\n", output.User.FullName)
	fmt.Printf("Total bookings: %d\n", stats.TotalBookings)
	fmt.Printf("Completed: %d\n", stats.CompletedBookings)
	fmt.Printf("Upcoming: %d\n", stats.UpcomingBookings)

	fmt.Println("\nToday's bookings")
	if len(output.Today) == 0 {
		fmt.Println("No active bookings for today.")
	} else if err := renderBookingRows(output.Today, now); err != nil {
		return err
	}

	fmt.Println("\nRecent bookings")
	if len(output.Recent) == 0 {
		fmt.Println("No bookings yet.")
		return nil
	}
	return renderBookingRows(output.Recent, now)
}

func renderBookingRows(bookings []api.Booking, now time.Time) error {
	writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
	for _, b := range bookings {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", b.Sport.Label(), booking.DateLabel(b.BookingDate, now), b.TimeSlot, b.Status.Label())
	}
	return writer.Flush()
}

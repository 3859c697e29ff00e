package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campus-sports-cli/api"
	"campus-sports-cli/availability"

	"github.com/spf13/cobra"
)

const slotsFailureMessage = "Failed to load available time slots."

func availabilityCmd() *cobra.Command {
	var sportValue string
	var date string

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Show open time slots for a sport on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				if _, err := a.requireUser(); err != nil {
					return err
				}

				sel := availability.NewSelector(client, time.Now, logger)
				sel.SetInputs(sportInput(sportValue), dateInput(date, time.Now()))
				view := sel.Load(ctx)
				return renderAvailability(view)
			})
		},
	}

	cmd.Flags().StringVar(&sportValue, "sport", "", "Sport (see 'campus-sports sports')")
	cmd.Flags().StringVar(&date, "date", "", "Date (today, tomorrow or YYYY-MM-DD)")
	return cmd
}

// sportInput falls back to the configured default sport. Unknown values are
// passed through so the selector reports them as missing input.
func sportInput(value string) api.Sport {
	value = sportInputValue(value)
	if sport, ok := api.ParseSport(value); ok {
		return sport
	}
	return api.Sport(value)
}

func dateInput(value string, now time.Time) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "today":
		return now.Format(availability.DateLayout)
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(availability.DateLayout)
	}
	return strings.TrimSpace(value)
}

func renderAvailability(view availability.View) error {
	if view.Phase == availability.Failed {
		view.Error = api.UserMessage(view.Err, slotsFailureMessage)
	}
	if outputJSON {
		if err := writeJSON(view); err != nil {
			return err
		}
		if view.Phase == availability.Failed {
			return remoteError(view.Err, slotsFailureMessage)
		}
		return nil
	}

	switch view.Phase {
	case availability.AwaitingInput:
		fmt.Println("Select a sport (--sport) and a date (--date) to see available time slots.")
		return nil
	case availability.Failed:
		return remoteError(view.Err, slotsFailureMessage)
	}

	if view.Empty() {
		fmt.Printf("%s on %s: no available time slots.\n", view.Sport.Label(), view.Date)
		return nil
	}
	if outputCompact {
		fmt.Printf("%s %s: %s\n", view.Sport, view.Date, strings.Join(view.Slots, " "))
		return nil
	}

	fmt.Printf("%s\nDate: %s\n", view.Sport.Label(), view.Date)
	for i, slot := range view.Slots {
		fmt.Printf("%3d) %s\n", i+1, slot)
	}
	return nil
}

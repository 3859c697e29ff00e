package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"campus-sports-cli/api"
	"campus-sports-cli/availability"
	"campus-sports-cli/booking"

	"github.com/spf13/cobra"
)

func bookCmd() *cobra.Command {
	var sportValue string
	var date string
	var timeValue string
	var notes string

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a time slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			bookingDate, err := availability.ParseBookableDate(date, now)
			if err != nil {
				return err
			}
			sport, ok := api.ParseSport(sportInputValue(sportValue))
			if !ok {
				return fmt.Errorf("--sport must be one of %s", choiceValues(api.SportChoices))
			}

			return withApp(func(ctx context.Context, a *app) error {
				user, err := a.requireUser()
				if err != nil {
					return err
				}

				sel := availability.NewSelector(client, time.Now, logger)
				sel.SetInputs(sport, bookingDate)
				view := sel.Load(ctx)
				switch {
				case view.Phase == availability.Failed:
					return remoteError(view.Err, slotsFailureMessage)
				case view.Empty():
					return fmt.Errorf("no available time slots for %s on %s", sport.Label(), bookingDate)
				}

				slot := strings.TrimSpace(timeValue)
				if slot == "" {
					if !stdinIsTerminal() {
						return fmt.Errorf("--time is required when not running interactively")
					}
					slot, err = pickSlot(newPrompter(), view.Slots)
					if err != nil {
						return err
					}
				}
				if err := sel.Select(slot); err != nil {
					if errors.Is(err, availability.ErrSlotNotOffered) {
						return fmt.Errorf("time slot %s is not available. Available: %s", slot, strings.Join(view.Slots, ", "))
					}
					return err
				}

				submitter := booking.NewSubmitter(client, a.views, user.ID, logger)
				created, err := submitter.Submit(ctx, booking.DraftFrom(sel, notes))
				if err != nil {
					logger.Printf("booking create error=%q", err)
					return errors.New(booking.FailureMessage(err))
				}

				if outputJSON {
					return writeJSON(created)
				}
				fmt.Printf("Booked: %s %s %s\n", created.Sport.Label(), created.TimeSlot, booking.DateLabel(created.BookingDate, time.Now()))
				fmt.Printf("Booking ID: %d | Status: %s\n", created.ID, created.Status.Label())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sportValue, "sport", "", "Sport (see 'campus-sports sports')")
	cmd.Flags().StringVar(&date, "date", "", "Date (today, tomorrow or YYYY-MM-DD)")
	cmd.Flags().StringVar(&timeValue, "time", "", "Time slot as listed by 'campus-sports availability'")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes for the booking")
	return cmd
}

func sportInputValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return cfg.DefaultSport
	}
	return value
}

// pickSlot lists the slots and reads a choice by number or by label.
func pickSlot(p *prompter, slots []string) (string, error) {
	for i, slot := range slots {
		fmt.Fprintf(p.out, "%3d) %s\n", i+1, slot)
	}
	answer, err := p.line("Time slot")
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", fmt.Errorf("no time slot selected")
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(slots) {
			return "", fmt.Errorf("choose a number between 1 and %d", len(slots))
		}
		return slots[n-1], nil
	}
	return answer, nil
}

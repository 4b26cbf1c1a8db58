package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

func planCmd() *cobra.Command {
	var (
		destination, origin, date string
		budget                    float64
		days, passengers          int
		interests                 []string
		book, asJSON, thoughts    bool
		firstName, lastName       string
		email                     string
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Synthesize a trip plan and optionally book it",
		Example: `  tripwise plan --destination Goa --budget 50000 --days 3 --interests relaxation
  tripwise plan --destination Jaipur --budget 60000 --days 4 --book --first-name Asha --last-name Rao`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(os.Stderr)
			if err != nil {
				return err
			}
			app, err := buildApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			intent := domain.TripIntent{
				Destination: strings.TrimSpace(destination),
				Origin:      strings.TrimSpace(origin),
				Budget:      domain.FromFloat(budget),
				Days:        days,
				Interests:   domain.MergeInterests(nil, interests),
				Passengers:  passengers,
			}
			if date != "" {
				d, err := domain.ParseDate(date)
				if err != nil {
					return err
				}
				intent.DepartureDate = d
			}

			plan, err := app.conversation.CreatePlan(cmd.Context(), intent)
			if err != nil {
				return err
			}

			var booking *domain.BookingResult
			var bookErr error
			if book {
				booking, bookErr = app.conversation.BookPlan(cmd.Context(), plan, domain.PassengerDetails{
					FirstName: firstName,
					LastName:  lastName,
					Email:     email,
				})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(struct {
					Plan    *domain.Plan          `json:"plan"`
					Booking *domain.BookingResult `json:"booking,omitempty"`
				}{plan, booking}); err != nil {
					return err
				}
				return bookErr
			}

			renderPlan(out, plan, thoughts)
			if booking != nil {
				renderBooking(out, booking)
			}
			return bookErr
		},
	}
	cmd.Flags().StringVarP(&destination, "destination", "d", "", "destination city")
	cmd.Flags().StringVar(&origin, "origin", "", "departure city (defaults to the configured home city)")
	cmd.Flags().Float64VarP(&budget, "budget", "b", 0, "total budget in INR")
	cmd.Flags().IntVarP(&days, "days", "n", 0, "trip length in days")
	cmd.Flags().StringSliceVarP(&interests, "interests", "i", nil, "interests, e.g. relaxation,food")
	cmd.Flags().StringVar(&date, "date", "", "departure date YYYY-MM-DD")
	cmd.Flags().IntVar(&passengers, "passengers", 0, "number of travellers")
	cmd.Flags().BoolVar(&book, "book", false, "book the flight and hotel")
	cmd.Flags().StringVar(&firstName, "first-name", "", "traveller first name (with --book)")
	cmd.Flags().StringVar(&lastName, "last-name", "", "traveller last name (with --book)")
	cmd.Flags().StringVar(&email, "email", "", "traveller email (with --book)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	cmd.Flags().BoolVar(&thoughts, "thoughts", false, "show the agent's planning steps")
	cmd.MarkFlagsRequiredTogether("book", "first-name")
	return cmd
}

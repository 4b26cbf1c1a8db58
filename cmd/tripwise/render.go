package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

var slots = []string{"morning", "afternoon", "evening"}

func newTable(w io.Writer, title string) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	if title != "" {
		tw.SetTitle(title)
	}
	return tw
}

func renderPlan(w io.Writer, plan *domain.Plan, withThoughts bool) {
	remaining := plan.RemainingBudget.String()
	if plan.OverBudget() {
		remaining = text.FgRed.Sprintf("%s (over budget)", plan.RemainingBudget)
	}

	tw := newTable(w, fmt.Sprintf("Trip to %s", plan.Destination))
	tw.AppendRows([]table.Row{
		{"Plan", plan.ID},
		{"Route", fmt.Sprintf("%s -> %s", plan.Origin, plan.Destination)},
		{"Dates", fmt.Sprintf("%s to %s (%d days)", plan.DepartureDate, plan.ReturnDate, plan.Days)},
		{"Travellers", plan.Passengers},
		{"Cabin", plan.CabinClass},
		{"Interests", strings.Join(plan.Interests, ", ")},
		{"Budget", plan.Budget},
	})
	tw.AppendSeparator()
	tw.AppendRows([]table.Row{
		{"Flight", plan.FlightCost},
		{"Hotel", plan.HotelCost},
		{"Total", plan.TotalCost},
		{"Remaining", remaining},
	})
	tw.Render()

	ft := newTable(w, "Flight")
	ft.AppendHeader(table.Row{"ID", "Airline", "Flight", "Departs", "Arrives", "Duration", "Stops", "Price"})
	f := plan.Flight
	ft.AppendRow(table.Row{f.ID, f.Airline, f.FlightNumber, f.DepartureTime, f.ArrivalTime, f.Duration, f.Stops, f.Price})
	ft.Render()

	ht := newTable(w, "Hotel")
	ht.AppendHeader(table.Row{"ID", "Name", "Category", "Rating", "Per night", "Location"})
	h := plan.Hotel
	ht.AppendRow(table.Row{h.ID, h.Name, h.Category, fmt.Sprintf("%.1f", h.Rating), h.PricePerNight, h.Location})
	ht.Render()

	it := newTable(w, "Itinerary")
	it.AppendHeader(table.Row{"Day", "Title", "Morning", "Afternoon", "Evening"})
	for _, d := range plan.Itinerary {
		row := table.Row{d.Day, d.Title}
		for _, slot := range slots {
			row = append(row, d.Activities[slot])
		}
		it.AppendRow(row)
	}
	it.Render()

	if withThoughts {
		tt := newTable(w, "Agent steps")
		tt.AppendHeader(table.Row{"#", "Action", "Thought"})
		for _, th := range plan.Thoughts {
			tt.AppendRow(table.Row{th.Step, th.Action, th.Thought})
		}
		tt.Render()
	}

	if plan.Summary != "" {
		fmt.Fprintln(w, plan.Summary)
	}
}

func renderBooking(w io.Writer, res *domain.BookingResult) {
	status := string(res.Status)
	switch res.Status {
	case domain.BookingConfirmed:
		status = text.FgGreen.Sprint(status)
	case domain.BookingPartial:
		status = text.FgYellow.Sprint(status)
	default:
		status = text.FgRed.Sprint(status)
	}

	tw := newTable(w, "Booking")
	tw.AppendRows([]table.Row{
		{"Booking", res.ID},
		{"Status", status},
		{"Traveller", res.Passenger.FullName()},
		{"Flight", confirmationText(res.Flight)},
		{"Hotel", confirmationText(res.Hotel)},
		{"Total", res.TotalCost},
	})
	if res.Compensated {
		tw.AppendRow(table.Row{"Compensated", "flight cancelled"})
	}
	if res.FailureReason != "" {
		tw.AppendRow(table.Row{"Failure", res.FailureReason})
	}
	tw.Render()
	fmt.Fprintln(w, res.Message)
}

func confirmationText(c *domain.Confirmation) string {
	if c == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", c.ConfirmationCode, c.Status)
}

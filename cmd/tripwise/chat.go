package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/tripwise-agent/internal/app/conversation"
	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

func chatCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Plan a trip interactively",
		Long: `Chat with the agent until it knows the destination, budget and trip length,
then it builds a plan. Type "book First Last" to book it, or "quit" to leave.`,
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

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			started, err := app.conversation.StartSession(ctx, conversation.StartSessionInput{UserID: domain.UserID(userID)})
			if err != nil {
				return err
			}
			sessionID := started.Session.ID
			fmt.Fprintln(out, "tripwise>", started.Welcome.Text)

			var plan *domain.Plan
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "you> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				switch {
				case line == "":
					continue
				case line == "quit" || line == "exit":
					return nil
				case plan != nil && strings.HasPrefix(line, "book"):
					first, last, _ := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "book")), " ")
					res, err := app.conversation.BookPlan(ctx, plan, domain.PassengerDetails{FirstName: first, LastName: last})
					if res != nil {
						renderBooking(out, res)
					}
					if err != nil && res == nil {
						fmt.Fprintln(out, "tripwise> booking failed:", err)
					}
					continue
				}

				reply, err := app.conversation.SendMessage(ctx, conversation.SendMessageInput{
					SessionID: sessionID,
					UserID:    domain.UserID(userID),
					Text:      line,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "tripwise>", reply.AgentMessage.Text)
				if !reply.Ready {
					continue
				}

				plan, err = app.conversation.PlanSession(ctx, sessionID, domain.UserID(userID))
				if errors.Is(err, domain.ErrNoOptionsAvailable) {
					fmt.Fprintln(out, "tripwise> I couldn't find options for that trip. Try another destination or budget.")
					continue
				}
				if err != nil {
					return err
				}
				renderPlan(out, plan, false)
				fmt.Fprintln(out, `tripwise> Type "book First Last" to book this plan, or keep chatting to change it.`)
			}
		},
	}
	cmd.Flags().StringVar(&userID, "user", "cli-user", "user id for the session")
	return cmd
}

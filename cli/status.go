package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"idlectl/api"
	"idlectl/gauge"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the daemon's current state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printStatus(cmd, newClient())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func printStatus(cmd *cobra.Command, client *api.Client) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	snap, err := client.Status(ctx)
	if err != nil {
		if pingErr := client.Ping(ctx); pingErr != nil {
			return fmt.Errorf("daemon unreachable at %s: %w", client.BaseURL(), err)
		}
		return fmt.Errorf("status: %s", errorText(err))
	}

	cmd.Print(renderStatusSummary(snap, time.Now()))
	return nil
}

func renderStatusSummary(snap *api.StatusSnapshot, now time.Time) string {
	var sb strings.Builder

	state := snap.State
	if state == "" {
		if snap.Running {
			state = "running"
		} else {
			state = "idle"
		}
	}
	sb.WriteString(fmt.Sprintf("State:    %s\n", strings.ToUpper(state)))

	next := gauge.FormatClock(snap.NextRunAt)
	if rel := gauge.RelativeISO(snap.NextRunAt, now); rel != "" {
		next += " (" + rel + ")"
	}
	sb.WriteString(fmt.Sprintf("Next run: %s\n", next))

	last := gauge.FormatClock(snap.LastRunAt)
	if rel := gauge.RelativeISO(snap.LastRunAt, now); rel != "" {
		last += " (" + rel + ")"
	}
	sb.WriteString(fmt.Sprintf("Last run: %s\n", last))

	if len(snap.Accounts) > 0 {
		sb.WriteString(fmt.Sprintf("Accounts: %d (%s)\n", len(snap.Accounts), strings.Join(snap.Accounts, ", ")))
	} else {
		sb.WriteString("Accounts: none\n")
	}
	sb.WriteString(fmt.Sprintf("Games:    %d configured, %d open\n", len(snap.Config.Games), snap.GameOpenCount))

	reading := gauge.FromSnapshot(snap, now)
	sb.WriteString(fmt.Sprintf("Progress: %3.0f%% %s\n", reading.Percent, reading.Label))

	rotation := gauge.Switch(snap.SwitchProgress, snap.Accounts)
	if rotation.Active {
		sb.WriteString(fmt.Sprintf("Rotation: %s [%s] %s\n", rotation.Title, rotation.Phase, rotation.Count))
	}
	return sb.String()
}

package cli

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"idlectl/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ask the daemon to start a cycle now",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		err := client.Run(cmd.Context())
		newAudit().Record("run", "", err)
		if err != nil {
			return fmt.Errorf("run: %s", errorText(err))
		}
		cmd.Println("Run queued.")
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the current cycle and close launched games",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		err := client.Stop(cmd.Context())
		newAudit().Record("stop", "", err)
		if err != nil {
			return fmt.Errorf("stop: %s", errorText(err))
		}
		cmd.Println("Stop requested.")
		return nil
	},
}

var switchCmd = &cobra.Command{
	Use:   "switch <account>",
	Short: "Rotate to a Steam account (only while the daemon is waiting)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		message, err := client.SwitchAccount(cmd.Context(), args[0])
		newAudit().Record("switch-account", args[0], err)
		if err != nil {
			return fmt.Errorf("switch: %s", errorText(err))
		}
		if message == "" {
			message = "Switch requested."
		}
		cmd.Println(message)
		return nil
	},
}

var logsFollow bool

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the daemon's event log",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var cursor float64
		print := func(ctx context.Context) error {
			batch, err := client.Logs(ctx, cursor)
			if err != nil {
				return err
			}
			for _, ev := range batch.Events {
				sec, frac := math.Modf(ev.Timestamp)
				at := time.Unix(int64(sec), int64(frac*float64(time.Second)))
				cmd.Printf("%s %-7s %s\n", at.Format("15:04:05"), ev.Level, ev.Message)
				if ev.Timestamp > cursor {
					cursor = ev.Timestamp
				}
			}
			if batch.Latest > cursor {
				cursor = batch.Latest
			}
			return nil
		}

		if err := print(cmd.Context()); err != nil {
			return fmt.Errorf("logs: %s", errorText(err))
		}
		if !logsFollow {
			return nil
		}
		ticker := time.NewTicker(config.Load(config.Path()).LogPoll())
		defer ticker.Stop()
		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case <-ticker.C:
				// Transient failures are retried on the next tick.
				_ = print(cmd.Context())
			}
		}
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect idlectl's own settings",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Println(config.Path())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved client settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load(config.Path())
		if rootAddr != "" {
			cfg.Addr = rootAddr
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		cmd.Print(string(data))
		return nil
	},
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Keep polling for new events")
	configCmd.AddCommand(configPathCmd, configShowCmd)
	rootCmd.AddCommand(runCmd, stopCmd, switchCmd, logsCmd, configCmd)
}

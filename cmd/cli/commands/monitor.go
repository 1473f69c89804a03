package commands

import (
	"github.com/spf13/cobra"

	"github.com/victorvsmirnov/udiinformer/internal/monitor"
	"github.com/victorvsmirnov/udiinformer/internal/notifier"
)

var (
	schedule string
	runNow   bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Check all stored users periodically and alert on earlier slots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := current.cfg
		if schedule != "" {
			cfg.Monitor.Schedule = schedule
		}

		console := notifier.NewConsoleNotifier(cmd.OutOrStdout())
		var alert notifier.Notifier = console
		if cfg.Email.Enabled {
			alert = notifier.NewEmailNotifier(cfg.Email)
		}

		svc, closeFn, err := newService(true, console)
		if err != nil {
			return err
		}
		defer closeFn()

		m := monitor.New(svc, current.store, alert, monitor.Config{
			Schedule:  cfg.Monitor.Schedule,
			Cooldown:  cfg.Monitor.Cooldown(),
			PortalURL: cfg.Portal.BaseURL,
		}, current.log)

		ctx := cmd.Context()
		if runNow {
			m.RunOnce(ctx)
		}
		if err := m.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		m.Stop()
		return nil
	},
}

func init() {
	monitorCmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule, overrides monitor.schedule")
	monitorCmd.Flags().BoolVar(&runNow, "now", true, "run a check immediately on start")
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/victorvsmirnov/udiinformer/internal/notifier"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check once for an earlier appointment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var notify notifier.Notifier = notifier.NewConsoleNotifier(cmd.OutOrStdout())
		if current.cfg.Email.Enabled {
			notify = notifier.Multi{notify, notifier.NewEmailNotifier(current.cfg.Email)}
		}

		svc, closeFn, err := newService(true, notify)
		if err != nil {
			return err
		}
		defer closeFn()

		if _, err := svc.Check(cmd.Context(), userID); err != nil {
			return credentialHint(err)
		}
		return nil
	},
}

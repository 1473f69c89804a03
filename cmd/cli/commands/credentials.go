package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/victorvsmirnov/udiinformer/internal/checker"
)

var setUsernameCmd = &cobra.Command{
	Use:   "set-username <username>",
	Short: "Store the my.udi.no login e-mail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, _ := newService(false, nil)
		if err := svc.SetIdentifier(cmd.Context(), userID, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "username is set to %s\n", args[0])
		return nil
	},
}

var setPasswordCmd = &cobra.Command{
	Use:   "set-password <password>",
	Short: "Store the my.udi.no password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, _ := newService(false, nil)
		if err := svc.SetSecret(cmd.Context(), userID, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "password is set")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored login e-mail",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, _ := newService(false, nil)
		id, ok, err := svc.Identifier(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("no username stored, use set-username first")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", userID, id)
		return nil
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Remove the stored credential of the current user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.store.Delete(cmd.Context(), userID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "credential of %s removed\n", userID)
		return nil
	},
}

// credentialHint turns a missing-credential error into the usage hint
func credentialHint(err error) error {
	if errors.Is(err, checker.ErrCredentialMissing) {
		return errors.New("please set username and password first (set-username, set-password)")
	}
	return err
}

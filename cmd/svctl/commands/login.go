package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

var errLoginFailed = errors.New("login failed")

var loginLevels = map[string]visionary.UserLevel{
	"run":               visionary.UserLevelRun,
	"operator":          visionary.UserLevelOperator,
	"maintenance":       visionary.UserLevelMaintenance,
	"authorized_client": visionary.UserLevelAuthorizedClient,
	"service":           visionary.UserLevelService,
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <level> <password>",
		Short: "Authenticate at a CoLa access level",
		Long:  "level is one of: run, operator, maintenance, authorized_client, service.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, ok := loginLevels[args[0]]
			if !ok {
				return fmt.Errorf("unrecognized access level %q", args[0])
			}

			if !device.Login(cmd.Context(), level, args[1]) {
				return errLoginFailed
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

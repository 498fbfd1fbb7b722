package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errLogoutFailed = errors.New("logout failed")

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop back to the default access level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !device.Logout(cmd.Context()) {
				return errLogoutFailed
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <variable>",
		Short: "Read a CoLa variable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := device.ReadVariable(cmd.Context(), args[0])

			out, err := formatResponse(resp, outputFormat)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

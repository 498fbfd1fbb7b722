package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

func writeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write <variable> <hex-params>",
		Short: "Write a CoLa variable from hex-encoded parameter bytes",
		Long:  "Parameter bytes are written to the wire exactly as given; the caller is responsible for encoding them in the variable's native CoLa type layout.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := hex.DecodeString(args[1])
			if err != nil {
				return fmt.Errorf("decode hex parameters: %w", err)
			}

			resp := device.WriteVariable(cmd.Context(), args[0], func(b *visionary.CommandBuilder) {
				b.AppendBytes(params)
			})

			out, err := formatResponse(resp, outputFormat)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

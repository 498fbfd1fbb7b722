package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

func callCmd() *cobra.Command {
	var paramHex string

	cmd := &cobra.Command{
		Use:   "call <method> [--params <hex>]",
		Short: "Invoke a CoLa method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params []byte
			if paramHex != "" {
				var err error
				params, err = hex.DecodeString(paramHex)
				if err != nil {
					return fmt.Errorf("decode hex parameters: %w", err)
				}
			}

			resp := device.InvokeMethod(cmd.Context(), args[0], func(b *visionary.CommandBuilder) {
				if len(params) > 0 {
					b.AppendBytes(params)
				}
			})

			out, err := formatResponse(resp, outputFormat)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&paramHex, "params", "", "hex-encoded method parameter bytes")
	return cmd
}

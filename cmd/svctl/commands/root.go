// Package commands implements the svctl CLI commands.
package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sick-safevisionary/govisionary/internal/netconn"
	"github.com/sick-safevisionary/govisionary/internal/visionary"
)

var (
	// device is the control-plane session, dialed in PersistentPreRunE
	// and closed in PersistentPostRunE.
	device *visionary.Device

	controlHost    string
	controlPort    int
	controlProto   string
	clientID       string
	secureAuth     bool
	dialTimeoutSec int

	// outputFormat controls the output format for all commands (table or json).
	outputFormat string
)

// rootCmd is the top-level cobra command for svctl.
var rootCmd = &cobra.Command{
	Use:   "svctl",
	Short: "CLI client for a SICK SafeVisionary2 device",
	Long:  "svctl speaks the CoLa control protocol directly to a SafeVisionary2 device to read/write variables, invoke methods, and inspect the blob data stream.",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(dialTimeoutSec)*time.Second)
		defer cancel()

		addr := net.JoinHostPort(controlHost, fmt.Sprintf("%d", controlPort))
		transport, err := netconn.DialStream(ctx, addr)
		if err != nil {
			return fmt.Errorf("dial %s: %w", addr, err)
		}

		device = visionary.NewDevice(transport, protocolFromFlag(controlProto), clientID, secureAuth)
		if err := device.Open(ctx, 0); err != nil {
			_ = transport.Close()
			return fmt.Errorf("open session: %w", err)
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		if device == nil {
			return nil
		}
		return device.Close(cmd.Context())
	},
	// Silence cobra's built-in usage/error printing so we control it.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func protocolFromFlag(s string) visionary.ProtocolType {
	switch s {
	case "cola2":
		return visionary.ProtocolCola2
	default:
		return visionary.ProtocolColaB
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&controlHost, "host", "192.168.1.10",
		"device control channel host")
	rootCmd.PersistentFlags().IntVar(&controlPort, "port", 2112,
		"device control channel port")
	rootCmd.PersistentFlags().StringVar(&controlProto, "protocol", "colab",
		"control framing variant: colab, cola2")
	rootCmd.PersistentFlags().StringVar(&clientID, "client-id", "svctl",
		"client identifier sent during Cola-2 session open")
	rootCmd.PersistentFlags().BoolVar(&secureAuth, "secure", false,
		"use the challenge/response authentication scheme instead of the legacy password-hash scheme")
	rootCmd.PersistentFlags().IntVar(&dialTimeoutSec, "timeout", 5,
		"dial and session-open timeout, in seconds")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table",
		"output format: table, json")

	rootCmd.AddCommand(readCmd())
	rootCmd.AddCommand(writeCmd())
	rootCmd.AddCommand(callCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(streamCmd())
	rootCmd.AddCommand(shellCmd())
	rootCmd.AddCommand(versionCmd())
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package commands

import (
	"context"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/sick-safevisionary/govisionary/internal/blob"
	"github.com/sick-safevisionary/govisionary/internal/netconn"
)

// fragmentSource is the minimal contract stream reassembly needs,
// satisfied by both blob.UDPReassembler and blob.TCPReassembler.
type fragmentSource interface {
	Next(ctx context.Context) ([]byte, error)
}

func streamCmd() *cobra.Command {
	var (
		proto string
		host  string
		port  int
		count int
	)

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Decode frames from the device's blob data stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			reassembler, closeFn, err := openStream(ctx, proto, host, port)
			if err != nil {
				return err
			}
			defer closeFn()

			decoder := blob.NewDecoder()

			for i := 0; i < count; i++ {
				buf, err := reassembler.Next(ctx)
				if err != nil {
					return fmt.Errorf("read blob %d: %w", i, err)
				}

				frame, err := decoder.Decode(buf)
				if err != nil {
					return fmt.Errorf("decode blob %d: %w", i, err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "frame=%d timestamp=%s error=%s\n",
					frame.FrameNumber, frame.BlobTimestamp.UTC(), frame.LastError)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&proto, "proto", "udp", "data stream transport: udp, tcp")
	cmd.Flags().StringVar(&host, "host", "", "data stream host (defaults to --host of the control channel for tcp; local bind address for udp)")
	cmd.Flags().IntVar(&port, "port", 0, "data stream port (defaults to 2113 for tcp, 6060 for udp)")
	cmd.Flags().IntVar(&count, "count", 1, "number of frames to decode before exiting")

	return cmd
}

func openStream(ctx context.Context, proto, host string, port int) (fragmentSource, func(), error) {
	switch proto {
	case "tcp":
		if host == "" {
			host = controlHost
		}
		if port == 0 {
			port = 2113
		}
		transport, err := netconn.DialStream(ctx, net.JoinHostPort(host, fmt.Sprintf("%d", port)))
		if err != nil {
			return nil, nil, fmt.Errorf("dial tcp stream: %w", err)
		}
		return blob.NewTCPReassembler(transport), func() { _ = transport.Close() }, nil

	case "udp":
		if port == 0 {
			port = 6060
		}
		transport, err := netconn.ListenPacket(ctx, net.JoinHostPort(host, fmt.Sprintf("%d", port)))
		if err != nil {
			return nil, nil, fmt.Errorf("listen udp stream: %w", err)
		}
		return blob.NewUDPReassembler(transport), func() { _ = transport.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unrecognized stream transport %q", proto)
	}
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/presbrey/b64/logging"
	"github.com/presbrey/b64/service"
	"github.com/spf13/cobra"
)

func newEncodeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode data to base64",
		Long:  `Encode data from stdin or a file to base64 text.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			encoded, err := opts.codec.Encode(input)
			if err != nil {
				return fmt.Errorf("error encoding base64 data: %w", err)
			}
			opts.log.Debug("encoded", logging.Fields{"in": len(input), "out": len(encoded)})

			_, err = fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return err
		},
	}
}

func newDecodeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode base64 data",
		Long:  `Decode base64 text from stdin or a file to its original bytes.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			text := trimNewlines(string(input))
			decoded, err := opts.codec.Decode(text)
			if err != nil {
				return fmt.Errorf("error decoding base64 data: %w", err)
			}
			opts.log.Debug("decoded", logging.Fields{"in": len(text), "out": len(decoded)})

			_, err = cmd.OutOrStdout().Write(decoded)
			return err
		},
	}
}

func newServeCmd(opts *options) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the codec over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := service.New(service.Options{
				Addr:         cfg.ListenAddress(),
				Codec:        opts.codec,
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
				MetricsPath:  cfg.Server.MetricsPath,
			}, opts.log)
			if err := srv.Start(ctx); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

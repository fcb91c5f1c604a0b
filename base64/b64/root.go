package main

import (
	"fmt"
	"io"
	"os"

	"github.com/presbrey/b64/base64"
	"github.com/presbrey/b64/config"
	"github.com/presbrey/b64/logging"
	logruslog "github.com/presbrey/b64/logging/logrus"
	zaplog "github.com/presbrey/b64/logging/zap"
	"github.com/spf13/cobra"
)

// options carries flag values and the state derived from them before a
// subcommand runs
type options struct {
	configPath     string
	url            bool
	noPadding      bool
	ignoreNewlines bool
	verbose        bool

	cfg   *config.Config
	codec base64.Codec
	log   logging.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "b64",
		Short:         "Base64 encoding and decoding utility",
		Long:          `A command-line utility for encoding and decoding data using RFC 4648 base64, in the standard or the URL-safe alphabet.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "configuration file or URL (yaml, toml or json)")
	flags.BoolVarP(&opts.url, "url", "u", false, "use the URL-safe alphabet")
	flags.BoolVar(&opts.noPadding, "no-padding", false, "omit trailing '=' when encoding")
	flags.BoolVarP(&opts.ignoreNewlines, "ignore-newlines", "i", false, "skip line breaks inside input when decoding")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(newEncodeCmd(opts), newDecodeCmd(opts), newServeCmd(opts))
	return rootCmd
}

// setup resolves configuration in order of precedence: defaults, config
// file, environment (including .env files), flags
func (o *options) setup(cmd *cobra.Command) error {
	if _, err := config.LoadDotEnv(config.DefaultEnvFile); err != nil {
		return err
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("url") && o.url {
		cfg.Codec.Alphabet = base64.URLSafe.String()
	}
	if flags.Changed("no-padding") {
		cfg.Codec.Padding = !o.noPadding
	}
	if flags.Changed("ignore-newlines") {
		cfg.Codec.IgnoreNewlines = o.ignoreNewlines
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}

	codec, err := cfg.BuildCodec()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	o.cfg, o.codec, o.log = cfg, codec, log
	log.Debug("configuration loaded", logging.Fields{
		"source":   cfg.Source,
		"alphabet": codec.Alphabet().String(),
		"padding":  codec.Padded(),
	})
	return nil
}

func newLogger(cfg *config.Config) (logging.Logger, error) {
	switch cfg.Log.Backend {
	case "logrus":
		l, err := logruslog.New(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		l, err := zaplog.New(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
}

// readInput reads the named file, or stdin when no file is given
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 {
		input, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("error reading from stdin: %w", err)
		}
		return input, nil
	}

	input, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", args[0], err)
	}
	return input, nil
}

// trimNewlines removes trailing newlines from a string
func trimNewlines(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

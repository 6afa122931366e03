package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/dynamic360/partnercenter-bridge/internal/config"
	"github.com/dynamic360/partnercenter-bridge/internal/enhance"
	"github.com/dynamic360/partnercenter-bridge/internal/partnercenter"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// global flags
var (
	envFile      string
	outputFormat string
	logLevel     string
	noColor      bool

	output format
)

// session is created on first use so that commands such as help do not need
// credentials.
var session *querySession

type querySession struct {
	cfg    config.Config
	client *partnercenter.Client
	close  func() error
}

var rootCmd = &cobra.Command{
	Use:   "pcquery",
	Short: "Query the Partner Center analytics API",
	Long: `pcquery calls the Partner Center analytics API directly using the same
configuration as the bridge server (PARTNER_CENTER_* environment variables).

Results are rendered as a table by default; use --output json or --output yaml
for machine readable output.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := configureLogging(); err != nil {
			return err
		}
		f, err := parseFormat(outputFormat)
		if err != nil {
			return err
		}
		output = f

		return loadEnvFile(envFile)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if session == nil {
			return nil
		}
		return session.close()
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal().Err(err).Msg("execution failed")
		os.Exit(1)
	}
}

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before reading configuration")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable color output")

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

func configureLogging() error {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	color.NoColor = color.NoColor || noColor
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: color.NoColor}).Level(level)
	zerolog.DefaultContextLogger = &log.Logger

	return nil
}

// loadEnvFile reads the dotenv file when present. Variables already set in the
// environment take precedence.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s load failed: %w", path, err)
	}

	return nil
}

func getClient(cmd *cobra.Command) (*partnercenter.Client, error) {
	if session != nil {
		return session.client, nil
	}

	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("configuration load failed: %w", err)
	}

	client, tokens, err := partnercenter.Connect(ctx, cfg.PartnerCenter, cfg.Store, http.DefaultClient)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("category", client.Category()).Msg("partner center client ready")

	session = &querySession{
		cfg:    cfg,
		client: client,
		close:  tokens.Close,
	}

	return client, nil
}

func getEnhancer(cmd *cobra.Command) (*enhance.Service, error) {
	client, err := getClient(cmd)
	if err != nil {
		return nil, err
	}

	return enhance.New(client,
		enhance.WithCategory(client.Category()),
		enhance.WithDefaultMarketSize(session.cfg.Enhance.DefaultMarketSize),
	), nil
}

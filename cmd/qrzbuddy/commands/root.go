package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"qrzbuddy/cmd/qrzbuddy/globals"
	"qrzbuddy/internal/components/chrono"
	"qrzbuddy/internal/components/telemetry"
	"qrzbuddy/internal/keychain"
	"qrzbuddy/internal/lookup"
	"qrzbuddy/internal/qrz"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// environment variables that override the stored credentials, they may
// also come from a .env file in the working directory
const (
	envUsername = "QRZ_USERNAME"
	envPassword = "QRZ_PASSWORD"
)

var (
	verbose    bool
	configPath string
	format     string

	// loaded in setup, commands that don't need the network read it too
	config Config

	// opened by setup, released by ExecuteContext however the command ends
	active *globals.Value
)

var rootCmd = &cobra.Command{
	Use:   "qrzbuddy",
	Short: "qrzbuddy looks up amateur radio callsigns and DXCC entities on QRZ.com.",

	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output.")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default: qrzbuddy.json5 searched upwards from the working directory).")
	rootCmd.PersistentFlags().StringVar(&format, "format", formatTable, "Output format: table, csv or yaml.")
}

// ExecuteContext runs the CLI and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if active != nil {
		teardown(active)
		active = nil
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func setup(cmd *cobra.Command, args []string) error {
	telemetry.InitSlog(verbose)

	if !validFormat(format) {
		return fmt.Errorf("unknown format %q", format)
	}

	var err error
	config, err = loadConfig(configPath)
	if err != nil {
		return err
	}

	err = godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "err", err)
	}

	ctx := cmd.Context()

	otelProviders, err := telemetry.Setup(ctx, "qrzbuddy", config.Telemetry)
	if err != nil {
		slog.Warn("failed to setup telemetry exporters", "err", err)
	}

	tel := telemetry.SlogAPI{}

	err = os.MkdirAll(databaseDir(config.Database), 0o700)
	if err != nil {
		return fmt.Errorf("create keychain directory: %w", err)
	}
	store, err := keychain.Open(ctx, config.Database)
	if err != nil {
		return err
	}

	err = credentialsFromEnv(ctx, store)
	if err != nil {
		store.Close()
		return err
	}

	client, err := qrz.NewClient(config.clientOptions(), tel, chrono.NewStandardTime())
	if err != nil {
		store.Close()
		return err
	}

	orchestrator := lookup.NewOrchestrator(
		client,
		store,
		newTerminalPrompter(),
		newStderrReporter(),
		tel,
		lookup.Options{
			RetryCeiling:               config.RetryCeiling,
			ContinueWithoutCredentials: config.ContinueWithoutCredentials,
		},
	)
	err = orchestrator.Initialize(ctx)
	if err != nil {
		store.Close()
		return err
	}

	active = &globals.Value{
		Tel:          tel,
		Store:        store,
		Orchestrator: orchestrator,
		Telemetry:    otelProviders,
	}
	cmd.SetContext(globals.Set(ctx, active))
	return nil
}

func teardown(value *globals.Value) {
	err := value.Store.Close()
	if err != nil {
		slog.Warn("failed to close keychain", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = value.Telemetry.Shutdown(ctx)
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}
}

func credentialsFromEnv(ctx context.Context, store *keychain.Store) error {
	username := os.Getenv(envUsername)
	if username != "" {
		err := store.SetUsername(ctx, username)
		if err != nil {
			return err
		}
	}
	password := os.Getenv(envPassword)
	if password != "" {
		err := store.SetPassword(ctx, password)
		if err != nil {
			return err
		}
	}
	return nil
}

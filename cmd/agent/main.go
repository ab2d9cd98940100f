package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"wakemeup/internal/agent"
)

var (
	configPath string
	serverAddr string
	username   string
	password   string
	logLevel   string
)

func main() {
	root := &cobra.Command{
		Use:           "wakemeup-agent",
		Short:         "wakemeup-agent — answers wake requests on the home network",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	run := &cobra.Command{
		Use:   "run",
		Short: "Connect to the relay and serve wake requests",
		RunE:  runAgent,
	}
	run.Flags().StringVarP(&configPath, "config", "c", "", "path to agent config file")
	run.Flags().StringVar(&serverAddr, "server", "", "relay host:port (overrides config)")
	run.Flags().StringVar(&username, "username", "", "login username (overrides config)")
	run.Flags().StringVar(&password, "password", "", "login password (overrides config)")
	run.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	root.AddCommand(run)

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("agent failed")
	}
}

func runAgent(cmd *cobra.Command, args []string) error {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := agent.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if serverAddr != "" {
		cfg.Server = serverAddr
	}
	if username != "" {
		cfg.Username = username
	}
	if password != "" {
		cfg.Password = password
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The session can drop at any time (relay restart, network loss).
	// Every retry restarts from login so the cookie is always fresh.
	backoff := 2 * time.Second
	const maxBackoff = 60 * time.Second
	for {
		started := time.Now()
		err := agent.New(cfg).Run(ctx)
		if ctx.Err() != nil {
			log.Info().Msg("shutting down")
			return nil
		}
		log.Warn().Err(err).Dur("retry_in", backoff).Msg("session lost")

		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return nil
		case <-time.After(backoff):
		}
		if time.Since(started) > maxBackoff {
			backoff = 2 * time.Second
		} else if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

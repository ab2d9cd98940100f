package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wakemeup/internal/config"
	"wakemeup/internal/registry"
	"wakemeup/internal/server"
	"wakemeup/internal/store"
	"wakemeup/internal/token"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	sealer, err := token.NewSealer(cfg.SecretKey)
	if err != nil {
		log.Fatal().Err(err).Msg("init cookie sealer")
	}

	router := server.NewRouter(server.Deps{
		Store:       st,
		Sealer:      sealer,
		Conns:       registry.NewConns(),
		Pending:     registry.NewPending(),
		WakeTimeout: cfg.WakeTimeout,
	})

	log.Info().Int("port", cfg.Port).Msg("listening")
	if err := server.Run(cfg, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"market-rush/internal/config"
	"market-rush/internal/coordinator"
	"market-rush/internal/logging"
	"market-rush/internal/store"
	"market-rush/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	if err := st.Bootstrap(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db bootstrap failed")
	}

	wsrv := ws.NewServer()
	coord := coordinator.New(st, wsrv)
	coord.SetRoundsPerGame(cfg.Server.RoundsPerGame)
	coord.SetInactivityTimeout(time.Duration(cfg.Server.InactivityMinutes) * time.Minute)
	wsrv.SetCoordinator(coord)

	coord.StartJanitor(context.Background(), time.Duration(cfg.Server.SweepIntervalMins)*time.Minute)
	coord.StartMarketTicker(context.Background(), time.Duration(cfg.Server.MarketTickSeconds)*time.Second)

	r := newRouter(st, coord, wsrv)
	logRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

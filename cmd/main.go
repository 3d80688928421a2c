package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gdaxbook/internal/config"
	"gdaxbook/internal/engine"
	"gdaxbook/internal/feed"
	"gdaxbook/internal/metrics"
	"gdaxbook/internal/snapshot"
	"gdaxbook/internal/tradelog"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional, env overrides always apply)")
	metricsAddr := flag.String("metrics-addr", ":9101", "address to serve Prometheus metrics on")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}
	if len(cfg.ProductIDs) == 0 {
		log.Fatal().Msg("no product_ids configured")
	}

	var tlog *tradelog.Log
	if cfg.TradeLogFilePath != "" {
		tlog, err = tradelog.Open(cfg.TradeLogFilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("opening trade log")
		}
		defer tlog.Close()
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	go serveMetrics(*metricsAddr, reg)

	feedCli := feed.NewClient(feed.DefaultEndpoint)
	snapCli := snapshot.NewClient(snapshot.DefaultBaseURL, cfg.Timeout())

	eng := engine.New(engine.Config{
		ProductIDs:   cfg.ProductIDs,
		UseHeartbeat: cfg.UseHeartbeat,
		APIKey:       cfg.APIKey,
		APISecret:    cfg.APISecret,
		Passphrase:   cfg.Passphrase,
	}, feedCli, snapCli, m, tlog)

	log.Info().Strs("product_ids", cfg.ProductIDs).Msg("starting gdaxbook")
	for tick := range eng.Run(ctx) {
		switch tick.Outcome {
		case engine.OutcomeApplied:
			log.Debug().
				Str("product_id", tick.ProductID).
				Str("kind", string(tick.Message.Kind)).
				Msg("applied")
		case engine.OutcomeNone:
			log.Info().Str("product_id", tick.ProductID).Str("note", tick.Note).Msg("event")
		case engine.OutcomeError:
			log.Error().Err(tick.Err).Msg("engine stopped")
		}
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	log.Info().Str("addr", addr).Msg("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server stopped")
		os.Exit(1)
	}
}

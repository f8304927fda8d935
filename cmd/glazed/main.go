// Command glazed runs the donut exchange: the matching engine, the
// three simulated agents, and a WebSocket feed of live domain events.
// Shutdown follows the teacher's cmd/main.go shape — block on a
// signal-derived context, then unwind.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"glaze/internal/common"
	"glaze/internal/config"
	"glaze/internal/engine"
	"glaze/internal/store"
	"glaze/internal/wsfeed"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	useMemStore := flag.Bool("mem", false, "use an in-memory store instead of sqlite")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	zlog.Logger = logger

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	var st store.Store
	if *useMemStore {
		st = store.NewMemStore()
	} else {
		st, err = store.NewSQLStore(cfg.DBPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open store")
		}
	}

	products := bootstrapProducts()
	outlets := bootstrapOutlets(cfg)

	eng := engine.New(cfg, st, products, logger)
	if err := eng.Bootstrap(outlets); err != nil {
		logger.Fatal().Err(err).Msg("failed to bootstrap engine")
	}

	hub := wsfeed.NewHub(logger)
	eng.RegisterSink("wsfeed", hub)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	eng.Start(ctx)

	mux := http.NewServeMux()
	mux.Handle("/feed", hub)
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("serving websocket feed")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	eng.Shutdown()
}

// bootstrapProducts seeds the static donut catalogue. A real
// deployment would load this from the Store; the simulation's catalog
// never changes at runtime so it's simplest as a literal.
func bootstrapProducts() []common.Product {
	return []common.Product{
		{ProductID: "classic-glazed", Name: "Classic Glazed", Description: "The original yeast-raised glazed donut."},
		{ProductID: "choc-frosted", Name: "Chocolate Frosted", Description: "Glazed donut topped with chocolate icing."},
		{ProductID: "jelly-filled", Name: "Jelly Filled", Description: "Raised donut filled with raspberry jelly."},
		{ProductID: "old-fashioned", Name: "Old Fashioned", Description: "Dense cake donut with a crackled glaze."},
		{ProductID: "maple-bar", Name: "Maple Bar", Description: "Bar-shaped raised donut with maple icing."},
	}
}

// bootstrapOutlets seeds the sentinel supplier and a small fixed
// roster of retail outlets.
func bootstrapOutlets(cfg config.Parsed) []common.Outlet {
	now := time.Now()
	outlets := []common.Outlet{
		{
			OutletID: cfg.SupplierOutletID, Name: "Central Supply", Location: "Factory",
			Balance: decimalHuge(), MarginPercent: cfg.DefaultMarginPercent, IsOpen: true, CreatedAt: now,
		},
	}

	retail := []struct{ id, name, loc string }{
		{"outlet-downtown", "Downtown Donuts", "Downtown"},
		{"outlet-uptown", "Uptown Sprinkles", "Uptown"},
		{"outlet-riverside", "Riverside Rings", "Riverside"},
	}
	for _, r := range retail {
		outlets = append(outlets, common.Outlet{
			OutletID: r.id, Name: r.name, Location: r.loc,
			Balance: cfg.InitialOutletBalance, MarginPercent: cfg.DefaultMarginPercent,
			IsOpen: true, CreatedAt: now,
		})
	}
	return outlets
}

// decimalHuge is the sentinel supplier's balance: it never buys
// anything on the exchange, so its balance only needs to be large
// enough that no overdraw check ever trips.
func decimalHuge() decimal.Decimal {
	return decimal.NewFromInt(1_000_000_000)
}

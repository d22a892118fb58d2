package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"transitbot/internal/config"
	"transitbot/internal/geocode"
	"transitbot/internal/handler"
	"transitbot/internal/live"
	"transitbot/internal/locations"
	"transitbot/internal/network"
	"transitbot/internal/realtime"
	"transitbot/internal/resolver"
	"transitbot/internal/server"
	"transitbot/internal/storage"
	"transitbot/internal/transit"
)

func main() {
	configPath := flag.String("config", "", "YAML file overriding TRANSITBOT_* settings")
	serve := flag.Bool("serve", false, "Serve the HTTP API instead of resolving one request")
	mode := flag.String("mode", "bus", "Request mode: bus or rail")
	routes := flag.String("route", "", "Space-separated bus routes, or one rail line")
	from := flag.String("from", "", "Origin place name or bus stop code")
	to := flag.String("to", "", "Destination place name")
	direction := flag.String("direction", "", "Direction of travel, e.g. Eastbound")
	lat := flag.String("lat", "", "Origin latitude (WGS84)")
	lon := flag.String("lon", "", "Origin longitude (WGS84)")
	withLive := flag.Bool("live", false, "Fetch live departures for each resolved stop")
	flag.Parse()

	cfg := config.Load()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	} else if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))

	// Cancelled on SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	graph, err := network.Load(ctx, cfg.NetworkPath, logger)
	if err != nil {
		logger.Error("failed to load network graph", "error", err)
		os.Exit(1)
	}

	client := live.NewClient(live.Options{
		BusURL:        cfg.BusURL,
		TubeURL:       cfg.TubeURL,
		DLRURL:        cfg.DLRURL,
		UserAgent:     cfg.UserAgent,
		Timeout:       cfg.HTTPTimeout,
		CacheTTL:      cfg.CacheTTL,
		CacheSize:     cfg.CacheSize,
		MaxRetries:    uint64(cfg.MaxRetries),
		RetryInterval: cfg.RetryInterval,
	}, logger)

	var geocoder resolver.Geocoder
	if cfg.GeocoderURL != "" {
		geocoder = geocode.New(cfg.GeocoderURL, client, geocode.CentralLondon, cfg.GeocoderRadius, logger)
	}

	closures := realtime.NewStore()
	if cfg.AlertsURL != "" {
		fetcher := realtime.NewFetcher(cfg.AlertsURL, cfg.AlertsInterval, closures, logger)
		if *serve {
			go fetcher.Start(ctx)
		} else if err := fetcher.Refresh(ctx); err != nil {
			logger.Warn("service alerts unavailable", "error", err)
		}
	}

	settings := resolver.Settings{
		MinConfidence: cfg.MinConfidence,
		Coverage: resolver.Coverage{
			MinEasting:  cfg.Coverage.MinEasting,
			MaxEasting:  cfg.Coverage.MaxEasting,
			MinNorthing: cfg.Coverage.MinNorthing,
			MaxNorthing: cfg.Coverage.MaxNorthing,
		},
	}
	bus := resolver.NewBus(locations.NewBusStops(db, logger), geocoder, settings, logger)
	rail := resolver.NewRail(locations.NewStations(db, graph, logger), closures, settings, logger)

	if *serve {
		srv := server.New(cfg.Addr, handler.New(bus, rail, client, client, logger), logger)
		if err := srv.ListenAndServe(ctx); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	req := resolver.Request{Origin: *from, Destination: *to, Direction: *direction}
	if *lat != "" || *lon != "" {
		pos, err := parsePosition(*lat, *lon)
		if err != nil {
			logger.Error("invalid position", "error", err)
			os.Exit(2)
		}
		req.Position = &pos
	}

	var (
		r      resolver.Resolver
		enrich resolver.Enrich
	)
	switch *mode {
	case "bus":
		r, req.Tokens = bus, strings.Fields(*routes)
		if *withLive {
			enrich = bus.Departures(client)
		}
	case "rail":
		r, req.Tokens = rail, []string{strings.TrimSpace(*routes)}
		if *withLive {
			enrich = rail.Departures(client)
		}
	default:
		logger.Error("unknown mode", "mode", *mode)
		os.Exit(2)
	}

	outcomes, err := resolver.ResolveAll(ctx, r, req, enrich)
	if transit.IsFatal(err) {
		fmt.Println(transit.NewError(transit.UpstreamUnavailable).UserMessage())
		logger.Error("upstream unavailable", "error", err)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("resolve failed", "error", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcomes); err != nil {
		logger.Error("writing outcomes", "error", err)
		os.Exit(1)
	}
}

func parsePosition(lat, lon string) (transit.Position, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return transit.Position{}, fmt.Errorf("latitude %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return transit.Position{}, fmt.Errorf("longitude %q: %w", lon, err)
	}
	return transit.Position{Lat: la, Lon: lo}, nil
}

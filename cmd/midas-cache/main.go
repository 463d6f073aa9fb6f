package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	midas "github.com/pmbanugo/midas-cache"
)

var (
	configFilenameFlag string
	portFlag           int
	originFlag         string
	storageFlag        string
	verbosityTraceFlag bool
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "Path to config file")
	flag.StringVar(&originFlag, "origin", "", "Origin to proxy to (overrides config)")
	flag.IntVar(&portFlag, "port", 0, "Port to listen on")
	flag.StringVar(&storageFlag, "storage", "", "Path to the cache database (overrides config)")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
}

func main() {
	flag.Parse()

	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}
	log.Logger = log.Level(logLevel).Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg, err := loadConfig(configFilenameFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load config")
	}
	if originFlag != "" {
		cfg.Origin = originFlag
	}
	if storageFlag != "" {
		cfg.StoragePath = storageFlag
	}
	if portFlag != 0 {
		cfg.Port = portFlag
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Origin == "" {
		log.Fatal().Msg("Please specify origin")
	}
	if cfg.StoragePath == "" {
		log.Fatal().Msg("Please specify storage path")
	}

	originURL, err := url.Parse(cfg.Origin)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid origin URL")
	}

	maxAge := midas.DefaultMaxAge
	if cfg.MaxAge != nil {
		maxAge = time.Duration(*cfg.MaxAge) * time.Second
	}
	staleWhileRevalidate := midas.DefaultStaleWhileRevalidate
	if cfg.StaleWhileRevalidate != nil {
		staleWhileRevalidate = time.Duration(*cfg.StaleWhileRevalidate) * time.Second
		if staleWhileRevalidate == 0 {
			staleWhileRevalidate = -1
		}
	}

	cache, err := midas.New(midas.Config{
		StoragePath:          cfg.StoragePath,
		MaxAge:               maxAge,
		StaleWhileRevalidate: staleWhileRevalidate,
		CacheableStatusCodes: cfg.CacheableStatusCodes,
		Logger:               &log.Logger,
		Metrics:              midas.NewMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Could not initialize cache")
	}

	proxy := httputil.NewSingleHostReverseProxy(originURL)

	r := chi.NewRouter()
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.MethodHandler("method"), hlog.URLHandler("url"))
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/*", cache.Middleware(proxy))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Str("origin", cfg.Origin).Msg("Starting caching proxy")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown")
	}
	if err := cache.Close(); err != nil {
		log.Error().Err(err).Msg("Cache shutdown")
	}
}

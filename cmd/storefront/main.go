package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/inkrunner/storefront/internal/artwork"
	"github.com/inkrunner/storefront/internal/cart"
	"github.com/inkrunner/storefront/internal/catalog"
	"github.com/inkrunner/storefront/internal/checkout"
	"github.com/inkrunner/storefront/internal/config"
	"github.com/inkrunner/storefront/internal/configurator"
	"github.com/inkrunner/storefront/internal/db"
	"github.com/inkrunner/storefront/internal/pricing"
	"github.com/inkrunner/storefront/internal/transport"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "storefront").Logger()

	log.Info().Msg("Storefront starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStartup()

	// Remote catalog source is optional; the storefront must stay usable on
	// the built-in defaults.
	var catalogRepo catalog.Repository
	if cfg.Postgres.Enabled() {
		pg, err := db.New(startupCtx, cfg.Postgres)
		if err != nil {
			log.Warn().Err(err).Msg("Catalog database unavailable, using default catalog")
		} else {
			defer pg.Close()
			catalogRepo = catalog.NewPostgresRepository(pg.Pool)
		}
	} else {
		log.Info().Msg("No catalog database configured, using default catalog")
	}

	cat := catalog.NewProvider(catalogRepo).Load(startupCtx)
	engine := pricing.NewEngine()

	var cartStore cart.Store = cart.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(startupCtx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, cart will not survive restarts")
		} else {
			cartStore = cart.NewRedisStore(rdb)
		}
	}
	cartSvc := cart.NewService(startupCtx, cartStore)

	awsCfg, err := awsconfig.LoadDefaultConfig(startupCtx, awsconfig.WithRegion(cfg.S3.Region))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	blobStore := artwork.NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3.Bucket)
	artworkSvc := artwork.NewService(blobStore, cfg.Upload.MaxFiles)

	wizard := configurator.New(cat, engine, cartSvc, artworkSvc, cfg.App.ProductName)

	stripeClient := checkout.NewStripeClient(cfg.Stripe.SecretKey)
	checkoutSvc := checkout.NewService(stripeClient, cfg.App.BaseURL)

	router := transport.NewRouter(transport.Deps{
		Catalog:      cat,
		Engine:       engine,
		Cart:         cartSvc,
		Artwork:      artworkSvc,
		Configurator: wizard,
		Checkout:     checkoutSvc,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}

package main

import (
	"context"
	"crypto/ed25519"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"namegate.io/namegate/config"
	"namegate.io/namegate/keys"
	"namegate.io/namegate/metadata"
	"namegate.io/namegate/server"
)

func main() {
	fs := flag.NewFlagSet("namegated", flag.ExitOnError)
	configPath := fs.String("config", "", "config file (JSON); NAMEGATE_* env vars override its values")
	httpAddr := fs.String("http", "", "HTTP listen address (overrides config)")
	grpcAddr := fs.String("grpc", "", "gRPC listen address (overrides config)")
	registryPath := fs.String("registry", "", "registry records file (overrides config)")
	_ = fs.Parse(os.Args[1:])

	// Missing .env is fine, real env vars still apply.
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *grpcAddr != "" {
		cfg.GRPCAddr = *grpcAddr
	}
	if *registryPath != "" {
		cfg.RegistryPath = *registryPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *configPath, log); err != nil {
		log.Error().Err(err).Msg("namegated stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("namegated stopped")
}

func run(ctx context.Context, cfg config.Config, configPath string, log zerolog.Logger) error {
	holder := config.NewHolder(cfg)

	src, err := cfg.OpenSource(log)
	if err != nil {
		return err
	}
	fetcher, err := cfg.OpenFetcher(log)
	if err != nil {
		return err
	}

	var signer ed25519.PrivateKey
	if cfg.SignerSeedFile != "" {
		ks, kerr := keys.Open("")
		if kerr != nil {
			return kerr
		}
		seed, serr := ks.LoadSeed("", "", "", cfg.SignerSeedFile)
		if serr != nil {
			return serr
		}
		signer = ed25519.NewKeyFromSeed(seed)
		log.Info().Str("issuer_key", keys.IssuerKeyFromSeed(seed)).Msg("evidence signing enabled")
	}

	resolver := &metadata.Resolver{Source: src, Fetcher: fetcher}
	svc := &server.Service{Resolver: resolver, Config: holder}
	api := &server.API{Resolver: resolver, Config: holder, Signer: signer, Log: log}

	log.Info().
		Str("registry", src.Path()).
		Int("records", src.Len()).
		Str("mode", string(cfg.VerifyMode())).
		Str("gateway", cfg.Gateway).
		Msg("namegated starting")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.RunGRPC(ctx, cfg.GRPCAddr, svc, log)
	})
	g.Go(func() error {
		return server.RunHTTP(ctx, cfg.HTTPAddr, api.Handler(), log)
	})
	g.Go(func() error {
		return src.Watch(ctx)
	})
	if configPath != "" {
		g.Go(func() error {
			return config.Watch(ctx, configPath, holder, log)
		})
	}

	return g.Wait()
}

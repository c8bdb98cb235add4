// Package config loads and validates daemon configuration and assembles the
// content store stack it describes.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"namegate.io/namegate/content"
	"namegate.io/namegate/content/kubo"
	"namegate.io/namegate/gateway"
	"namegate.io/namegate/metadata"
	"namegate.io/namegate/registry"
)

// Config describes one resolver process.
//
// Example:
//
//	{
//	  "http_addr": ":8080",
//	  "grpc_addr": ":9091",
//	  "gateway": "https://ipfs.io/ipfs/",
//	  "mode": "strict",
//	  "registry_path": "/etc/namegate/registry.json",
//	  "cache_dir": "/var/lib/namegate/cache",
//	  "fetch_timeout": "10s"
//	}
//
// Every field can be overridden by a NAMEGATE_* environment variable; the
// variable wins over the file.
type Config struct {
	HTTPAddr string `json:"http_addr,omitempty"`
	GRPCAddr string `json:"grpc_addr,omitempty"`

	// Gateway is the HTTP gateway base for ipfs:// references.
	Gateway string `json:"gateway,omitempty"`
	// Mode selects the verification policy: "permissive" or "strict".
	Mode string `json:"mode,omitempty"`

	RegistryPath string `json:"registry_path,omitempty"`

	// CacheDir enables the write-once disk cache tier. Empty keeps the
	// cache memory-only.
	CacheDir      string  `json:"cache_dir,omitempty"`
	MaxFetchBytes int64   `json:"max_fetch_bytes,omitempty"`
	FetchRPS      float64 `json:"fetch_rps,omitempty"`
	FetchBurst    int     `json:"fetch_burst,omitempty"`
	FetchTimeout  string  `json:"fetch_timeout,omitempty"`

	// KuboBin enables the local-node source when set (e.g. "ipfs").
	KuboBin string `json:"kubo_bin,omitempty"`

	// SignerSeedFile holds a hex Ed25519 seed; when set, served resolutions
	// can be rendered as signed evidence.
	SignerSeedFile string `json:"signer_seed_file,omitempty"`
	ResolverID     string `json:"resolver_id,omitempty"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		HTTPAddr:      ":8080",
		GRPCAddr:      ":9091",
		Gateway:       gateway.DefaultIPFSGateway,
		Mode:          string(metadata.ModePermissive),
		MaxFetchBytes: content.DefaultMaxBytes,
		FetchRPS:      4,
		FetchBurst:    8,
		FetchTimeout:  "10s",
	}
}

// LoadFile reads a config file and validates it. Absent fields keep their
// defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("config: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Load builds the effective configuration: defaults, then the optional file,
// then NAMEGATE_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		cfg, err = LoadFile(path)
		if err != nil {
			return Config{}, err
		}
	}
	cfg, err := cfg.withEnv()
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (c Config) withEnv() (Config, error) {
	c.HTTPAddr = getenv("NAMEGATE_HTTP_ADDR", c.HTTPAddr)
	c.GRPCAddr = getenv("NAMEGATE_GRPC_ADDR", c.GRPCAddr)
	c.Gateway = getenv("NAMEGATE_GATEWAY", c.Gateway)
	c.Mode = getenv("NAMEGATE_MODE", c.Mode)
	c.RegistryPath = getenv("NAMEGATE_REGISTRY", c.RegistryPath)
	c.CacheDir = getenv("NAMEGATE_CACHE_DIR", c.CacheDir)
	c.FetchTimeout = getenv("NAMEGATE_FETCH_TIMEOUT", c.FetchTimeout)
	c.KuboBin = getenv("NAMEGATE_KUBO_BIN", c.KuboBin)
	c.SignerSeedFile = getenv("NAMEGATE_SIGNER_SEED_FILE", c.SignerSeedFile)
	c.ResolverID = getenv("NAMEGATE_RESOLVER_ID", c.ResolverID)

	if v := os.Getenv("NAMEGATE_MAX_FETCH_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NAMEGATE_MAX_FETCH_BYTES=%q: %w", v, err)
		}
		c.MaxFetchBytes = n
	}
	if v := os.Getenv("NAMEGATE_FETCH_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NAMEGATE_FETCH_RPS=%q: %w", v, err)
		}
		c.FetchRPS = f
	}
	if v := os.Getenv("NAMEGATE_FETCH_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NAMEGATE_FETCH_BURST=%q: %w", v, err)
		}
		c.FetchBurst = n
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Gateway == "" {
		return errors.New("config: gateway must not be empty")
	}
	if _, err := metadata.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.MaxFetchBytes <= 0 {
		return fmt.Errorf("config: max_fetch_bytes must be positive, got %d", c.MaxFetchBytes)
	}
	if c.FetchRPS <= 0 {
		return fmt.Errorf("config: fetch_rps must be positive, got %v", c.FetchRPS)
	}
	if c.FetchBurst < 1 {
		return fmt.Errorf("config: fetch_burst must be at least 1, got %d", c.FetchBurst)
	}
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		return fmt.Errorf("config: invalid fetch_timeout %q: %w", c.FetchTimeout, err)
	}
	if d < 100*time.Millisecond || d > 5*time.Minute {
		return fmt.Errorf("config: fetch_timeout %s out of range [100ms, 5m]", d)
	}
	return nil
}

// FetchTimeoutDuration returns the parsed fetch timeout. Call Validate first.
func (c Config) FetchTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// VerifyMode returns the parsed verification mode. Call Validate first.
func (c Config) VerifyMode() metadata.Mode {
	m, err := metadata.ParseMode(c.Mode)
	if err != nil {
		return metadata.ModePermissive
	}
	return m
}

// OpenStore assembles the cache stack this config describes: a memory tier,
// plus a write-once disk tier when cache_dir is set.
func (c Config) OpenStore() (content.Store, error) {
	mem := content.NewMemCache()
	if c.CacheDir == "" {
		return mem, nil
	}
	disk, err := content.NewDiskCache(c.CacheDir)
	if err != nil {
		return nil, err
	}
	return content.Tiered{Tiers: []content.Store{mem, disk}}, nil
}

// OpenFetcher wires a Fetcher from the config: cache stack, optional local
// Kubo source, and fetch limits.
func (c Config) OpenFetcher(log zerolog.Logger) (*content.Fetcher, error) {
	store, err := c.OpenStore()
	if err != nil {
		return nil, err
	}
	opts := content.FetcherOptions{
		Client:   &http.Client{Timeout: c.FetchTimeoutDuration()},
		Cache:    store,
		MaxBytes: c.MaxFetchBytes,
		RPS:      c.FetchRPS,
		Burst:    c.FetchBurst,
		Log:      &log,
	}
	if c.KuboBin != "" {
		opts.Local = kubo.New(kubo.Options{Bin: c.KuboBin})
	}
	return content.NewFetcher(opts), nil
}

// OpenSource opens the registry file source named by the config.
func (c Config) OpenSource(log zerolog.Logger) (*registry.FileSource, error) {
	if c.RegistryPath == "" {
		return nil, errors.New("config: registry_path is required")
	}
	return registry.OpenFile(c.RegistryPath, log)
}

package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"namegate.io/namegate/gateway"
)

// DefaultMaxBytes caps fetched payloads. Metadata documents and record
// images are small; anything past this is treated as hostile.
const DefaultMaxBytes = 16 << 20

// FetchResult is the outcome of a single Fetch.
type FetchResult struct {
	Data []byte
	// URL is the HTTP URL actually fetched; empty when served from a
	// cache or local node.
	URL string
	// CID is the reference CID when the input was an ipfs:// URL.
	CID cid.Cid
	// Verified reports that Data hashes to CID under the package CID
	// contract. Always true for cache hits; false for subpath refs,
	// foreign CID flavors, and plain HTTP fetches.
	Verified  bool
	FromCache bool
}

// FetcherOptions configures a Fetcher. The zero value is usable.
type FetcherOptions struct {
	// Client is the HTTP client for gateway fetches. Defaults to a
	// client with a 10 second timeout.
	Client *http.Client
	// Cache, if set, stores verified payloads and is consulted first.
	Cache Store
	// Local, if set, is tried before the HTTP gateway (a Kubo-backed
	// Store, typically).
	Local Store
	// MaxBytes caps response bodies. Defaults to DefaultMaxBytes.
	MaxBytes int64
	// RPS and Burst tune the per-host rate limiter. Defaults: 4, 8.
	RPS   float64
	Burst int
	// Log receives fetch instrumentation. Defaults to a disabled logger.
	Log *zerolog.Logger
}

// Fetcher retrieves the payload behind a record URI.
//
// ipfs:// references with a bare CIDv1 raw+sha2-256 head are verified
// against the reference before caching or returning; those are the only
// payloads a cache tier ever sees. Gateway requests are rate limited per
// host so a burst of resolutions cannot hammer a public gateway.
type Fetcher struct {
	client   *http.Client
	cache    Store
	local    Store
	maxBytes int64
	rps      rate.Limit
	burst    int
	log      zerolog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewFetcher(opts FetcherOptions) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	rps := opts.RPS
	if rps <= 0 {
		rps = 4
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 8
	}
	log := zerolog.Nop()
	if opts.Log != nil {
		log = *opts.Log
	}
	return &Fetcher{
		client:   client,
		cache:    opts.Cache,
		local:    opts.Local,
		maxBytes: maxBytes,
		rps:      rate.Limit(rps),
		burst:    burst,
		log:      log,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch retrieves rawURL. ipfs:// references are rewritten onto gatewayBase
// (empty selects gateway.DefaultIPFSGateway); http:// and https:// URLs are
// fetched as-is without verification. Anything else is ErrUnsupportedURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, gatewayBase string) (FetchResult, error) {
	if rawURL == "" {
		return FetchResult{}, fmt.Errorf("%w: empty url", ErrUnsupportedURL)
	}
	if gatewayBase == "" {
		gatewayBase = gateway.DefaultIPFSGateway
	}

	if ref, ok := gateway.ParseRef(rawURL); ok {
		return f.fetchRef(ctx, ref, rawURL, gatewayBase)
	}
	if strings.HasPrefix(rawURL, gateway.IPFSScheme) {
		// ipfs:// but the head does not decode as a CID; rewriting it
		// onto a gateway would just 4xx and can never be verified.
		return FetchResult{}, fmt.Errorf("%w: %q has an undecodable ipfs head", ErrUnsupportedURL, rawURL)
	}
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		data, err := f.get(ctx, rawURL)
		if err != nil {
			return FetchResult{}, err
		}
		return FetchResult{Data: data, URL: rawURL}, nil
	}
	return FetchResult{}, fmt.Errorf("%w: %q", ErrUnsupportedURL, rawURL)
}

func (f *Fetcher) fetchRef(ctx context.Context, ref gateway.Ref, rawURL, gatewayBase string) (FetchResult, error) {
	bare := ref.Path == "" && verifiable(ref.CID)

	if bare && f.cache != nil {
		if data, err := f.cache.Get(ref.CID); err == nil {
			f.log.Debug().Str("cid", ref.CID.String()).Msg("cache hit")
			return FetchResult{Data: data, CID: ref.CID, Verified: true, FromCache: true}, nil
		} else if !IsNotFound(err) {
			return FetchResult{}, err
		}
	}

	if bare && f.local != nil {
		if data, err := f.local.Get(ref.CID); err == nil {
			f.log.Debug().Str("cid", ref.CID.String()).Msg("local node hit")
			f.store(ref.CID, data)
			return FetchResult{Data: data, CID: ref.CID, Verified: true}, nil
		} else if !IsNotFound(err) {
			f.log.Warn().Err(err).Str("cid", ref.CID.String()).Msg("local node lookup failed")
		}
	}

	fetchURL := gateway.ResolveImageURL(gatewayBase, rawURL)
	data, err := f.get(ctx, fetchURL)
	if err != nil {
		return FetchResult{}, err
	}

	if bare {
		if err := VerifyCID(data, ref.CID); err != nil {
			f.log.Warn().Str("url", fetchURL).Str("cid", ref.CID.String()).Msg("gateway response failed verification")
			return FetchResult{}, fmt.Errorf("content: %s: %w", fetchURL, err)
		}
		f.store(ref.CID, data)
		return FetchResult{Data: data, URL: fetchURL, CID: ref.CID, Verified: true}, nil
	}
	return FetchResult{Data: data, URL: fetchURL, CID: ref.CID}, nil
}

// store caches a verified payload, best effort. A full or broken cache must
// not fail the fetch that produced the payload.
func (f *Fetcher) store(id cid.Cid, data []byte) {
	if f.cache == nil {
		return
	}
	if _, err := f.cache.Put(data); err != nil {
		f.log.Warn().Err(err).Str("cid", id.String()).Msg("cache store failed")
	}
}

func (f *Fetcher) get(ctx context.Context, fetchURL string) ([]byte, error) {
	if err := f.wait(ctx, fetchURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("content: %s: %w", fetchURL, err)
	}
	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content: %s: %w", fetchURL, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
	case res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("content: %s: %w", fetchURL, ErrNotFound)
	default:
		return nil, fmt.Errorf("content: %s: unexpected status %s", fetchURL, res.Status)
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("content: %s: %w", fetchURL, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("content: %s: %w", fetchURL, ErrTooLarge)
	}
	f.log.Debug().Str("url", fetchURL).Int("bytes", len(data)).Msg("fetched")
	return data, nil
}

// wait blocks on the per-host token bucket for the URL's host.
func (f *Fetcher) wait(ctx context.Context, fetchURL string) error {
	u, err := url.Parse(fetchURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("content: %q: %w", fetchURL, ErrUnsupportedURL)
	}
	f.mu.Lock()
	lim, ok := f.limiters[u.Host]
	if !ok {
		lim = rate.NewLimiter(f.rps, f.burst)
		f.limiters[u.Host] = lim
	}
	f.mu.Unlock()
	return lim.Wait(ctx)
}

// verifiable reports whether id uses the package CID contract
// (CIDv1, raw codec, sha2-256), the only flavor VerifyCID can check.
func verifiable(id cid.Cid) bool {
	if !id.Defined() || id.Version() != 1 {
		return false
	}
	p := id.Prefix()
	return p.Codec == cid.Raw && p.MhType == multihash.SHA2_256
}

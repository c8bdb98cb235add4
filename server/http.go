package server

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"namegate.io/namegate/config"
	"namegate.io/namegate/evidence"
	"namegate.io/namegate/metadata"
)

// API is the HTTP face of the resolver. It serves the same results as the
// gRPC service plus a plain-text evidence endpoint.
type API struct {
	Resolver *metadata.Resolver
	Config   *config.Holder

	// Signer, when set, signs served evidence documents.
	Signer ed25519.PrivateKey

	Log zerolog.Logger
}

func (a *API) options() metadata.Options {
	if a.Config == nil {
		return metadata.Options{}
	}
	c := a.Config.Get()
	return metadata.Options{Gateway: c.Gateway, Mode: c.VerifyMode()}
}

// Handler builds the route table. Every request gets a request ID and an
// access log line.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/resolve/", a.handleResolve)
	mux.HandleFunc("/v1/tokenid/", a.handleTokenID)
	mux.HandleFunc("/v1/evidence/", a.handleEvidence)
	return a.withAccessLog(mux)
}

func (a *API) handleResolve(w http.ResponseWriter, r *http.Request) {
	domain, ok := a.pathTail(w, r, "/v1/resolve/")
	if !ok {
		return
	}
	res, err := a.Resolver.Resolve(r.Context(), domain, a.options())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleTokenID(w http.ResponseWriter, r *http.Request) {
	domain, ok := a.pathTail(w, r, "/v1/tokenid/")
	if !ok {
		return
	}
	id, err := a.Resolver.TokenID(r.Context(), domain)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"domain":  domain,
		"tokenId": id.Hex(),
		"decimal": id.Decimal(),
	})
}

func (a *API) handleEvidence(w http.ResponseWriter, r *http.Request) {
	domain, ok := a.pathTail(w, r, "/v1/evidence/")
	if !ok {
		return
	}
	res, err := a.Resolver.Resolve(r.Context(), domain, a.options())
	if err != nil {
		a.writeError(w, err)
		return
	}

	var resolverID string
	if a.Config != nil {
		resolverID = a.Config.Get().ResolverID
	}
	doc := evidence.Build(*res, evidence.BuildOptions{
		ResolverID: resolverID,
		ResolvedAt: time.Now(),
	})

	var out []byte
	if len(a.Signer) > 0 {
		out, err = evidence.Sign(doc, evidence.SignOptions{Ed25519Key: a.Signer})
	} else {
		out, err = evidence.Render(doc)
	}
	if err != nil {
		a.writeError(w, metadata.NewError(metadata.ErrInternal, "evidence rendering failed"))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// pathTail extracts the domain segment after prefix, rejecting non-GET
// methods and empty tails.
func (a *API) pathTail(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]*metadata.CodedError{
			"error": metadata.NewError(metadata.ErrInvalidDomain, "method not allowed"),
		})
		return "", false
	}
	tail := strings.TrimPrefix(r.URL.Path, prefix)
	if tail == "" || strings.Contains(tail, "/") {
		a.writeError(w, metadata.NewError(metadata.ErrInvalidDomain, "path must name exactly one domain"))
		return "", false
	}
	return tail, true
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	var ce *metadata.CodedError
	if !errors.As(err, &ce) {
		ce = metadata.NewError(metadata.ErrInternal, err.Error())
	}
	writeJSON(w, httpStatus(ce.Code), map[string]*metadata.CodedError{"error": ce})
}

func httpStatus(code metadata.ErrorCode) int {
	switch code {
	case metadata.ErrInvalidDomain, metadata.ErrInvalidHex:
		return http.StatusBadRequest
	case metadata.ErrNotFound:
		return http.StatusNotFound
	case metadata.ErrFetchFailed, metadata.ErrCIDMismatch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (a *API) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.New().String()
		w.Header().Set("X-Request-Id", id)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		a.Log.Info().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

// RunHTTP serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func RunHTTP(ctx context.Context, addr string, handler http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().Str("addr", addr).Msg("http server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

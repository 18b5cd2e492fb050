// Package server provides the HTTP interface for the vacancy board.
package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/http/httputil"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/Shyp/joblog/config"
	"github.com/Shyp/joblog/metrics"
	"github.com/Shyp/joblog/models/db"
	"github.com/gorilla/handlers"
	graphql "github.com/graph-gophers/graphql-go"
)

// The maximum data size that can be sent in the body of a HTTP request.
const MaxRequestBodySize = 100 * 1024

// Logger is used for errors the server hands back to clients.
var Logger = slog.Default()

// GET/POST /graphql
var graphqlRoute = regexp.MustCompile("^/graphql$")

// GET /healthz
var healthRoute = regexp.MustCompile("^/healthz$")

// GET /metrics
var metricsRoute = regexp.MustCompile("^/metrics$")

// Config holds everything Get needs to build the routes.
type Config struct {
	Pool   *db.Pool
	Schema *graphql.Schema

	// AllowedOrigins is the CORS origin list. Empty or "*" allows any origin.
	AllowedOrigins []string

	// Limiter throttles requests per client. Nil disables rate limiting.
	Limiter Limiter

	// TrustForwardedFor keys rate limits on the address the proxy appends to
	// X-Forwarded-For. Leave it off unless a proxy always sets the header.
	TrustForwardedFor bool

	// AllowUnencryptedProxyTraffic lets requests that arrived at a TLS proxy
	// over plain HTTP through.
	AllowUnencryptedProxyTraffic bool

	// DebugTraffic dumps every request and response to stderr.
	DebugTraffic bool
}

// Get returns a http.Handler with all routes initialized.
func Get(c Config) http.Handler {
	h := new(RegexpHandler)

	h.Handler(graphqlRoute, []string{"GET", "POST"}, graphqlHandler(c.Schema, c.Pool))
	h.Handler(healthRoute, []string{"GET"}, healthHandler(c.Pool))
	h.Handler(metricsRoute, []string{"GET"}, metrics.Handler())

	var inner http.Handler = serverHeaderHandler(
		forbidNonTLSTrafficHandler(!c.AllowUnencryptedProxyTraffic,
			rateLimitHandler(c.Limiter, c.TrustForwardedFor, h),
		),
	)
	if c.DebugTraffic {
		inner = debugRequestBodyHandler(inner)
	}
	return handlers.CORS(corsOptions(c.AllowedOrigins)...)(
		handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))(inner),
	)
}

func corsOptions(origins []string) []handlers.CORSOption {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return []handlers.CORSOption{
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "Accept"}),
		handlers.MaxAge(3600),
	}
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	go metrics.Increment("server.panic")
	Logger.Error("recovered from panic", "err", fmt.Sprint(v...))
}

func serverHeaderHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// promhttp sets its own content type
		if r.URL.Path != "/metrics" {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
		}
		w.Header().Set("Server", fmt.Sprintf("joblog/%s", config.Version))
		h.ServeHTTP(w, r)
	})
}

// forbidNonTLSTrafficHandler returns a 403 to traffic that is sent via a proxy
// over plain HTTP, when disallow is true.
func forbidNonTLSTrafficHandler(disallow bool, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// If the header is missing, let the request through.
		if disallow && r.Header.Get("X-Forwarded-Proto") == "http" {
			forbidden(w, insecure403(r))
			return
		}
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		h.ServeHTTP(w, r)
	})
}

// debugRequestBodyHandler prints all incoming and outgoing HTTP traffic. The
// output will be jumbled if the server is handling multiple requests at the
// same time.
func debugRequestBodyHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Write the entire exchange in one Write.
		b := new(bytes.Buffer)
		bits, err := httputil.DumpRequest(r, true)
		if err != nil {
			_, _ = b.WriteString(err.Error())
		} else {
			_, _ = b.Write(bits)
		}
		res := httptest.NewRecorder()
		h.ServeHTTP(res, r)

		_, _ = b.WriteString(fmt.Sprintf("HTTP/1.1 %d\r\n", res.Code))
		_ = res.Header().Write(b)
		for k, v := range res.Header() {
			w.Header()[k] = v
		}
		w.WriteHeader(res.Code)
		_, _ = b.WriteString("\r\n")
		writer := io.MultiWriter(w, b)
		_, _ = res.Body.WriteTo(writer)
		_, _ = b.WriteTo(os.Stderr)
	})
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// GET /healthz
//
// Reports 200 if a connection can be checked out of the pool and pinged, and
// 503 otherwise.
func healthHandler(pool *db.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if !pool.Connected(ctx) {
			go metrics.Increment("healthz.unavailable")
			writeError(w, new503(r, "Could not reach the database"))
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: config.Version})
	})
}

func isJSON(contentType string) bool {
	mt := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	return mt == "" || mt == "application/json"
}

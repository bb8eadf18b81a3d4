// Package http exposes the ledger and insight operations as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"finsight/internal/cache"
	"finsight/internal/log"
	"finsight/internal/services"
)

type Server struct {
	http.Server
	ledger   *services.LedgerService
	insights *services.InsightService
	logger   *log.Logger

	rateLimiter *rateLimiter

	// Insight responses are cached per (user, epoch, path). Writes bump the
	// user's epoch, which orphans every cached entry for that user.
	insightCache *cache.LRU[[]byte]
	epochMu      sync.Mutex
	epochs       map[int64]uint64

	requestCount atomic.Int64
	errorCount   atomic.Int64

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger *services.LedgerService, insights *services.InsightService, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:           ledger,
		insights:         insights,
		logger:           logger.WithComponent(log.ComponentHTTP),
		rateLimiter:      newRateLimiter(),
		insightCache:     cache.NewLRU[[]byte](500, 5*time.Minute),
		epochs:           make(map[int64]uint64),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("POST /transactions", s.withCommon(s.handleCreateTransaction))
	mux.HandleFunc("GET /transactions", s.withCommon(s.handleListTransactions))
	mux.HandleFunc("GET /transactions/{id}", s.withCommon(s.handleGetTransaction))
	mux.HandleFunc("PUT /transactions/{id}", s.withCommon(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.withCommon(s.handleDeleteTransaction))

	mux.HandleFunc("POST /budget", s.withCommon(s.handleSetBudget))
	mux.HandleFunc("GET /budget", s.withCommon(s.handleGetBudget))

	mux.HandleFunc("GET /insights/anomalies", s.withCommon(s.cached(s.handleAnomalies)))
	mux.HandleFunc("GET /insights/recommend-budget", s.withCommon(s.cached(s.handleRecommendBudget)))
	mux.HandleFunc("GET /insights/predict", s.withCommon(s.cached(s.handlePredict)))
	mux.HandleFunc("GET /insights/forecast", s.withCommon(s.cached(s.handleForecast)))
	mux.HandleFunc("GET /insights/optimize-budget", s.withCommon(s.cached(s.handleOptimizeBudget)))
	mux.HandleFunc("GET /insights/savings", s.withCommon(s.cached(s.handleSavings)))
	mux.HandleFunc("GET /insights/category-efficiency", s.withCommon(s.cached(s.handleCategoryEfficiency)))
	mux.HandleFunc("POST /insights/necessity-score", s.withCommon(s.handleNecessityScore))

	return s
}

// withCommon adds request tracing, security headers, rate limiting on writes
// and request logging.
func (s *Server) withCommon(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.requestCount.Add(1)

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "rate limit exceeded",
				log.FieldRequestID, requestID,
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		if rw.statusCode >= 500 {
			s.errorCount.Add(1)
		}

		s.logger.InfoContext(ctx, "request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.insightCache.CleanExpired(); cleaned > 0 {
				s.logger.Debug("cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and its cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) userEpoch(userID int64) uint64 {
	s.epochMu.Lock()
	defer s.epochMu.Unlock()
	return s.epochs[userID]
}

func (s *Server) bumpUserEpoch(userID int64) {
	s.epochMu.Lock()
	defer s.epochMu.Unlock()
	s.epochs[userID]++
}

func (s *Server) insightCacheKey(userID int64, r *http.Request) string {
	return fmt.Sprintf("%d|%d|%s?%s", userID, s.userEpoch(userID), r.URL.Path, r.URL.RawQuery)
}

// cached serves GET insight responses from the LRU when the user's epoch has
// not moved since the entry was stored.
func (s *Server) cached(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.userID(w, r)
		if !ok {
			return
		}

		key := s.insightCacheKey(userID, r)
		if body, found := s.insightCache.Get(key); found {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}

		rec := &recordingWriter{responseWriter: responseWriter{ResponseWriter: w, statusCode: http.StatusOK}}
		next(rec, r)

		if rec.statusCode == http.StatusOK {
			s.insightCache.Set(key, rec.body)
		}
	}
}

// recordingWriter captures the body so successful responses can be cached.
type recordingWriter struct {
	responseWriter
	body []byte
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.body = append(rw.body, b...)
	return rw.responseWriter.Write(b)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "http_requests_total %d\n", s.requestCount.Load())
	fmt.Fprintf(w, "http_errors_total %d\n", s.errorCount.Load())
	fmt.Fprintf(w, "insight_cache_entries %d\n", s.insightCache.Size())
}

package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/LeiMuu/UserManagementAPI/internal/auth"
	"github.com/LeiMuu/UserManagementAPI/internal/gate"
	"github.com/LeiMuu/UserManagementAPI/internal/obs"
)

// Middleware is one pipeline stage wrapping the next handler.
type Middleware func(http.Handler) http.Handler

// chain folds stages over a handler; the first stage is outermost.
func chain(h http.Handler, stages ...Middleware) http.Handler {
	for i := len(stages) - 1; i >= 0; i-- {
		h = stages[i](h)
	}
	return h
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Admission bounds concurrent in-flight requests with the gate. A request
// that cannot take a slot within the wait window gets 503 and never enters
// the rest of the pipeline. The deferred release covers every downstream
// exit path, including contained panics.
func (a *API) Admission(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		err := a.gate.Acquire(r.Context())
		waited := time.Since(start)
		if err != nil {
			obs.ObserveAdmission(waited, true)
			if errors.Is(err, gate.ErrTimeout) {
				writeError(w, r, http.StatusServiceUnavailable, "service unavailable: too many concurrent requests")
				return
			}
			// Client went away while waiting; nobody reads this response.
			writeError(w, r, http.StatusServiceUnavailable, "request aborted while awaiting admission")
			return
		}
		obs.ObserveAdmission(waited, false)
		obs.SetAdmissionInUse(a.gate.InUse())
		defer func() {
			a.gate.Release()
			obs.SetAdmissionInUse(a.gate.InUse())
		}()

		next.ServeHTTP(w, r)
	})
}

// Recover contains panics from later stages: the client gets a generic 500
// with no fault detail, the panic value goes to the log only.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				obs.LogEvent("error", "panic contained", map[string]any{
					"panic":      fmt.Sprint(rec),
					"method":     r.Method,
					"path":       r.URL.Path,
					"request_id": RequestIDFromContext(r.Context()),
				})
				writeError(w, r, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type requestIDContextKey struct{}

const requestIDHeader = "X-Request-Id"

// RequestID assigns each request an id, honoring one supplied by the
// caller, and echoes it in the response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, rid)
		ctx := context.WithValue(r.Context(), requestIDContextKey{}, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the id assigned by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(requestIDContextKey{}).(string)
	return v
}

// LoggingJSON logs stage entry and, once the handler finished, the final
// status. It wraps the handler rather than preceding it so the status it
// records is the one the client saw. Logging never alters the response.
func LoggingJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := RequestIDFromContext(r.Context())
		obs.LogRequest(map[string]any{
			"msg":        "request started",
			"request_id": rid,
			"method":     r.Method,
			"path":       r.URL.Path,
		})

		sw := &statusWriter{ResponseWriter: w, code: 200}
		start := time.Now()
		next.ServeHTTP(sw, r)

		obs.LogRequest(map[string]any{
			"msg":         "request completed",
			"request_id":  rid,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      sw.code,
			"duration_ms": time.Since(start).Milliseconds(),
			"remote":      clientIP(r),
		})
	})
}

// requireIdentity is the authorization stage for protected routes: an
// authenticated identity must be present in the context. There are no roles
// or scopes; authenticated means authorized.
func requireIdentity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFromContext(r.Context()); !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="users"`)
			writeError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}

// RateLimit is a token-bucket throttle per client IP, mounted on the login
// route only.
func RateLimit(next http.Handler, burst int, perSecond int) http.Handler {
	type bucket struct {
		lim *rate.Limiter
		ts  time.Time
	}
	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
		ttl     = 5 * time.Minute
	)
	ticker := time.NewTicker(1 * time.Minute)
	go func() {
		for range ticker.C {
			now := time.Now()
			mu.Lock()
			for k, b := range buckets {
				if now.Sub(b.ts) > ttl {
					delete(buckets, k)
				}
			}
			mu.Unlock()
		}
	}()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		mu.Lock()
		b, ok := buckets[ip]
		if !ok {
			b = &bucket{lim: rate.NewLimiter(rate.Limit(perSecond), burst)}
			buckets[ip] = b
		}
		b.ts = time.Now()
		allowed := b.lim.Allow()
		mu.Unlock()

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(1))
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	// X-Forwarded-For support (first IP)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

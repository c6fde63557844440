package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"customer-service/internal/models"
)

// Middleware enforces per-client rate limits, keyed by IP. Forwarding
// headers (X-Forwarded-For, X-Real-IP) are honored only when the direct peer
// is a trusted proxy; with no trusted proxies configured they are honored
// unconditionally.
func Middleware(limiter Limiter, trustedProxies []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r, trustedProxies)

			allowed, info := limiter.Allow(key)
			setRateHeaders(w, info)

			if !allowed {
				deny(w, key, info)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// setRateHeaders exposes the bucket state on every response, allowed or not.
func setRateHeaders(w http.ResponseWriter, info Info) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))
}

// deny writes the 429 response with the standard error envelope. Retry-After
// is rounded up so clients never retry a moment too early.
func deny(w http.ResponseWriter, key string, info Info) {
	retryAfter := int(info.RetryAfter.Seconds()) + 1
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	correlationID := w.Header().Get(models.HeaderCorrelationID)
	json.NewEncoder(w).Encode(models.NewErrorResponse(models.ErrorCodeRateLimited, "Rate limit exceeded", correlationID))

	slog.Warn("Rate limit exceeded",
		"client_ip", key,
		"limit", info.Limit,
		"retry_after", retryAfter,
	)
}

// clientIP picks the bucket key for a request. The port is stripped so all
// connections from one host share a bucket.
func clientIP(r *http.Request, trustedProxies []string) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if len(trustedProxies) > 0 && !isTrustedProxy(host, trustedProxies) {
		return host
	}

	// First X-Forwarded-For entry is the originating client; later hops
	// append their own.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return host
}

// isTrustedProxy reports whether host matches any trusted proxy entry.
// Entries may be plain IPs or CIDR ranges.
func isTrustedProxy(host string, trustedProxies []string) bool {
	ip := net.ParseIP(host)
	for _, proxy := range trustedProxies {
		if strings.Contains(proxy, "/") {
			if _, cidr, err := net.ParseCIDR(proxy); err == nil && ip != nil && cidr.Contains(ip) {
				return true
			}
			continue
		}
		if proxy == host {
			return true
		}
	}
	return false
}

package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedHandler(l *IPRateLimiter) http.Handler {
	return l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func hit(h http.Handler, remote, xff string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/heroes", nil)
	req.RemoteAddr = remote
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPRateLimiter_SlidingWindow(t *testing.T) {
	mock := clock.NewMock()
	h := limitedHandler(NewIPRateLimiterWithClock(2, time.Minute, mock))

	assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.1:1234", "").Code)
	mock.Add(10 * time.Second)
	assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.1:1234", "").Code)

	rec := hit(h, "10.0.0.1:9999", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "50", rec.Header().Get("Retry-After"))

	// Another client is unaffected.
	assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.2:1234", "").Code)

	mock.Add(51 * time.Second)
	assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.1:1234", "").Code)
}

func TestIPRateLimiter_ForwardedForWins(t *testing.T) {
	h := limitedHandler(NewIPRateLimiterWithClock(1, time.Minute, clock.NewMock()))

	assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.1:1", "203.0.113.7, 10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.9:1", "203.0.113.7").Code)
	assert.Equal(t, http.StatusNoContent, hit(h, "10.0.0.9:1", "").Code)
}

func TestIPRateLimiter_DisabledWhenLimitNotPositive(t *testing.T) {
	h := limitedHandler(NewIPRateLimiter(0, time.Minute))

	for range 50 {
		require.Equal(t, http.StatusNoContent, hit(h, "10.0.0.1:1", "").Code)
	}
}

func TestIPRateLimiter_ForgetsIdleClients(t *testing.T) {
	mock := clock.NewMock()
	l := NewIPRateLimiterWithClock(5, time.Minute, mock)
	h := limitedHandler(l)

	hit(h, "10.0.0.1:1", "")
	hit(h, "10.0.0.2:1", "")
	require.Equal(t, 2, l.clients())

	mock.Add(2 * time.Minute)
	hit(h, "10.0.0.3:1", "")
	assert.Equal(t, 1, l.clients())
}

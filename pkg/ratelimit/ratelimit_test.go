package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowPerIP(t *testing.T) {
	l := New(60, 3, time.Minute)
	now := time.Now()
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("1.1.1.1") {
			t.Fatalf("request %d within burst was refused", i)
		}
	}
	if l.Allow("1.1.1.1") {
		t.Error("expected burst to be exhausted")
	}
	if !l.Allow("2.2.2.2") {
		t.Error("other IPs must have their own bucket")
	}

	// one token per second at 60/min
	now = now.Add(time.Second)
	if !l.Allow("1.1.1.1") {
		t.Error("expected a token to refill after a second")
	}
}

func TestSweep(t *testing.T) {
	l := New(60, 1, time.Minute)
	now := time.Now()
	l.now = func() time.Time { return now }

	l.Allow("1.1.1.1")
	now = now.Add(30 * time.Second)
	l.Allow("2.2.2.2")
	now = now.Add(45 * time.Second)

	if n := l.Sweep(); n != 1 {
		t.Errorf("expected 1 idle visitor swept, got %d", n)
	}
	if _, ok := l.visitors["2.2.2.2"]; !ok {
		t.Error("recent visitor should be kept")
	}
}

func TestMiddleware(t *testing.T) {
	l := New(1, 2, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected 204, 204, 429, got %v", codes)
	}
}

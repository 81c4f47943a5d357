// SPDX-License-Identifier: MIT

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestApplyStack_RequestIDAndSecurityHeaders(t *testing.T) {
	r := NewRouter(StackConfig{
		EnableSecurityHeaders: true,
	})
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	reqID := rec.Header().Get(HeaderRequestID)
	if reqID == "" {
		t.Error("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(reqID); err != nil {
		t.Errorf("X-Request-ID is not a UUID: %q", reqID)
	}

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
	if got := rec.Header().Get("Content-Security-Policy"); got != DefaultCSP {
		t.Errorf("CSP = %q, want default policy", got)
	}
}

func TestApplyStack_PreservesIncomingRequestID(t *testing.T) {
	r := NewRouter(StackConfig{})
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "upstream-id-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(HeaderRequestID); got != "upstream-id-42" {
		t.Errorf("X-Request-ID = %q, want upstream-id-42", got)
	}
}

func TestApplyStack_RecoversPanic(t *testing.T) {
	r := NewRouter(StackConfig{})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("handler exploded")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req) // must not panic the test

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("panic response is not JSON: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected error field in panic response")
	}
}

func TestApplyStack_RateLimitDisabledByZeroBudget(t *testing.T) {
	r := NewRouter(StackConfig{
		EnableRateLimit:    true,
		RateLimitPerMinute: 0,
	})
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 with disabled limiter, got %d", i+1, rec.Code)
		}
	}
}

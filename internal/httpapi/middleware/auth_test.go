package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hamed0406/pollrelay/internal/poll"
)

func TestRequireKey_AllowsKnownKey_BlocksOthers(t *testing.T) {
	keys := Keys{Public: []string{"pub_key"}}

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// X-API-Key -> 200
	req := httptest.NewRequest(http.MethodPost, "/poll-webhook/", nil)
	req.Header.Set("X-API-Key", "pub_key")
	rec := httptest.NewRecorder()
	RequireKey(keys)(okHandler).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("known key should pass; got %d", rec.Code)
	}

	// Bearer -> 200
	reqB := httptest.NewRequest(http.MethodPost, "/poll-webhook/", nil)
	reqB.Header.Set("Authorization", "Bearer pub_key")
	recB := httptest.NewRecorder()
	RequireKey(keys)(okHandler).ServeHTTP(recB, reqB)
	if recB.Code != http.StatusOK {
		t.Fatalf("bearer key should pass; got %d", recB.Code)
	}

	// Wrong key -> 401
	reqBad := httptest.NewRequest(http.MethodPost, "/poll-webhook/", nil)
	reqBad.Header.Set("X-API-Key", "nope")
	recBad := httptest.NewRecorder()
	RequireKey(keys)(okHandler).ServeHTTP(recBad, reqBad)
	if recBad.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key should be 401; got %d", recBad.Code)
	}

	// Missing key -> 401
	reqNone := httptest.NewRequest(http.MethodPost, "/poll-webhook/", nil)
	recNone := httptest.NewRecorder()
	RequireKey(keys)(okHandler).ServeHTTP(recNone, reqNone)
	if recNone.Code != http.StatusUnauthorized {
		t.Fatalf("missing key should be 401; got %d", recNone.Code)
	}
}

func TestRequireKey_NoKeysConfiguredAllowsAll(t *testing.T) {
	h := RequireKey(Keys{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/poll-webhook/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200 with auth disabled; got %d", rec.Code)
	}
}

func TestRequestID_SetsHeaderAndSequenceID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = string(poll.SequenceIDFrom(r.Context()))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	got := rec.Header().Get("X-Request-ID")
	if got == "" || got != seen {
		t.Fatalf("header %q and sequence id %q should match", got, seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	if rec2.Header().Get("X-Request-ID") != "caller-id" || seen != "caller-id" {
		t.Fatalf("caller id not kept: header=%q seen=%q", rec2.Header().Get("X-Request-ID"), seen)
	}
}

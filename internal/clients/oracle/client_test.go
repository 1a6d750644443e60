package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/asheeshm/paperhouse/internal/common"
)

func TestLookup_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote/RELIANCE" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "secret" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"RELIANCE","price":2855.40}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", WithLogger(common.NewSilentLogger()))
	price, ok := c.Lookup(context.Background(), "RELIANCE")
	if !ok {
		t.Fatal("expected ok lookup")
	}
	if price != 2855.40 {
		t.Errorf("price = %.2f, want 2855.40", price)
	}
}

func TestLookup_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", WithLogger(common.NewSilentLogger()))
	if _, ok := c.Lookup(context.Background(), "NOSUCH"); ok {
		t.Error("expected lookup to miss on 404")
	}
}

func TestLookup_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", WithLogger(common.NewSilentLogger()))
	if _, ok := c.Lookup(context.Background(), "TCS"); ok {
		t.Error("expected lookup to miss on malformed body")
	}
}

func TestLookup_NonPositivePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"TCS","price":0}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", WithLogger(common.NewSilentLogger()))
	if _, ok := c.Lookup(context.Background(), "TCS"); ok {
		t.Error("expected lookup to miss on zero price")
	}
}

func TestLookup_TimeoutBounded(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, "", WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, ok := c.Lookup(context.Background(), "INFY")
	if ok {
		t.Error("expected lookup to miss on timeout")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("lookup blocked for %v, want bounded by timeout", elapsed)
	}
}

func TestLookup_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"INFY","price":1500}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, "")
	if _, ok := c.Lookup(ctx, "INFY"); ok {
		t.Error("expected lookup to miss on cancelled context")
	}
}

package practicum

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"homework_status_bot/internal/domain/failure"
)

func TestFetchSendsAuthAndCursor(t *testing.T) {
	var gotAuth, gotFrom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotFrom = r.URL.Query().Get("from_date")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"homeworks":[{"id":124,"homework_name":"a.zip","status":"approved"}],"current_date":1700000000}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)
	payload, err := c.Fetch(context.Background(), 1699999999)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotAuth != "OAuth secret" {
		t.Fatalf("Authorization = %q, want %q", gotAuth, "OAuth secret")
	}
	if gotFrom != "1699999999" {
		t.Fatalf("from_date = %q, want 1699999999", gotFrom)
	}

	body, ok := payload.(map[string]any)
	if !ok {
		t.Fatalf("payload = %T, want map", payload)
	}
	items := body["homeworks"].([]any)
	id := items[0].(map[string]any)["id"]
	if n, ok := id.(json.Number); !ok || n.String() != "124" {
		t.Fatalf("id = %#v, want json.Number 124", id)
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "t", time.Second).Fetch(context.Background(), 0)
	var transportErr *failure.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Fetch() error = %v, want TransportError", err)
	}
	if transportErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("StatusCode = %d, want %d", transportErr.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	_, err := NewClient(endpoint, "t", time.Second).Fetch(context.Background(), 0)
	var transportErr *failure.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Fetch() error = %v, want TransportError", err)
	}
	if transportErr.StatusCode != 0 {
		t.Fatalf("StatusCode = %d, want 0", transportErr.StatusCode)
	}
	if transportErr.Err == nil {
		t.Fatal("expected underlying cause")
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, "t", 50*time.Millisecond).Fetch(context.Background(), 0)
	if failure.KindOf(err) != failure.KindTransport {
		t.Fatalf("Fetch() error = %v, want transport failure", err)
	}
}

func TestFetchInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "t", time.Second).Fetch(context.Background(), 0)
	var shapeErr *failure.ShapeError
	if !errors.As(err, &shapeErr) || shapeErr.Reason != failure.ShapeInvalidJSON {
		t.Fatalf("Fetch() error = %v, want invalid json ShapeError", err)
	}
}

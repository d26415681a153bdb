package highscore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestHTTPStore(url string) *HTTPStore {
	return NewHTTPStore(HTTPConfig{
		URL:       url + "/",
		APIKey:    "secret",
		Timeout:   time.Second,
		RetryBase: time.Millisecond,
	})
}

func TestHTTPStoreFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("X-Api-Key") != "secret" {
			t.Error("missing API key header")
		}
		w.Write([]byte(`[{"name":"low","score":1},{"name":"high","score":99}]`))
	}))
	defer srv.Close()

	s := newTestHTTPStore(srv.URL)
	if s.URL() != srv.URL {
		t.Errorf("URL = %q, trailing slash should be trimmed", s.URL())
	}

	entries, err := s.FetchTop(context.Background())
	if err != nil {
		t.Fatalf("FetchTop: %v", err)
	}
	if got := names(entries); !equal(got, []string{"high", "low"}) {
		t.Errorf("entries = %v, want sorted", got)
	}
}

func TestHTTPStoreFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, http.StatusInternalServerError},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}, http.StatusNotFound},
		{"bad body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>"))
		}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestHTTPStore(srv.URL).FetchTop(context.Background())
			var ne *NetworkError
			if !errors.As(err, &ne) {
				t.Fatalf("err = %v, want NetworkError", err)
			}
			if ne.StatusCode != tt.status || ne.Op != "fetch" {
				t.Errorf("NetworkError = %+v", ne)
			}
		})
	}
}

func TestHTTPStoreFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestHTTPStore(url).FetchTop(context.Background())
	if !IsNetworkError(err) {
		t.Errorf("err = %v, want NetworkError", err)
	}
}

func TestHTTPStoreSubmitRetries5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if got := string(body); got != `{"name":"ada","score":42}` {
			t.Errorf("body = %s", got)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	entry := Entry{ID: "local", Name: "ada", Score: 42, CreatedAt: time.Now()}
	err := newTestHTTPStore(srv.URL).Submit(context.Background(), entry)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestHTTPStoreSubmitNoRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestHTTPStore(srv.URL).Submit(context.Background(), Entry{Name: "ada", Score: 1})
	var ne *NetworkError
	if !errors.As(err, &ne) || ne.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestHTTPStoreSubmitGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newTestHTTPStore(srv.URL).Submit(context.Background(), Entry{Name: "ada", Score: 1})
	if !IsNetworkError(err) {
		t.Fatalf("err = %v", err)
	}
	// One attempt plus the two default retries
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestEntryJSONOmitsUnsetFields(t *testing.T) {
	data, err := json.Marshal(Entry{Name: "Ann", Score: 300})
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != `{"name":"Ann","score":300}` {
		t.Errorf("json = %s", got)
	}
}

func TestHTTPStoreFetchNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	}))
	defer srv.Close()

	entries, err := newTestHTTPStore(srv.URL).FetchTop(context.Background())
	if err != nil {
		t.Fatalf("FetchTop: %v", err)
	}
	if entries != nil {
		t.Errorf("entries = %v, want nil for a null table", entries)
	}
}

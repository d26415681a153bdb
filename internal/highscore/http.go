package highscore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// HTTPConfig configures an HTTPStore.
type HTTPConfig struct {
	// URL serves GET (table) and POST (new entry). Required.
	URL string

	// APIKey is sent as X-Api-Key when set.
	APIKey string

	// Timeout bounds each HTTP request. Defaults to 4 seconds.
	Timeout time.Duration

	// MaxRetries is the number of extra submit attempts after a transport
	// failure or 5xx response. Defaults to 2; negative disables retries.
	MaxRetries int

	// RetryBase is the first backoff delay. Defaults to 200ms.
	RetryBase time.Duration

	// Client overrides the HTTP client (useful for testing).
	Client *http.Client
}

// HTTPStore talks to the remote high-score API.
type HTTPStore struct {
	url        string
	apiKey     string
	client     *http.Client
	maxRetries uint64
	retryBase  time.Duration
}

// NewHTTPStore creates a remote store client.
func NewHTTPStore(cfg HTTPConfig) *HTTPStore {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 4 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 200 * time.Millisecond
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPStore{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		client:     client,
		maxRetries: uint64(cfg.MaxRetries),
		retryBase:  cfg.RetryBase,
	}
}

// URL returns the endpoint this store talks to.
func (s *HTTPStore) URL() string { return s.url }

// FetchTop GETs the remote table.
func (s *HTTPStore) FetchTop(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &NetworkError{Op: "fetch", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{Op: "fetch", StatusCode: resp.StatusCode}
	}

	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, &NetworkError{Op: "fetch", Err: fmt.Errorf("decode response: %w", err)}
	}
	SortEntries(entries)
	return entries, nil
}

// Submit POSTs one entry, retrying transport failures and 5xx responses.
func (s *HTTPStore) Submit(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(Entry{Name: entry.Name, Score: entry.Score})
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	backoff := retry.WithMaxRetries(s.maxRetries, retry.NewExponential(s.retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.post(ctx, payload)
		if err == nil {
			return nil
		}
		var ne *NetworkError
		if errors.As(err, &ne) && (ne.StatusCode == 0 || ne.StatusCode >= 500) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *HTTPStore) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return &NetworkError{Op: "submit", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return &NetworkError{Op: "submit", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &NetworkError{Op: "submit", StatusCode: resp.StatusCode}
	}
	return nil
}

func (s *HTTPStore) authorize(req *http.Request) {
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}
}

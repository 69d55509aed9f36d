package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/luki/hwtelemetry/internal/sensor"
)

var (
	// ErrStatus is returned when the monitor answers with a non-2xx status.
	ErrStatus = errors.New("unexpected status")
	// ErrDecode is returned when the body is not a JSON document.
	ErrDecode = errors.New("invalid sensor payload")
)

// MaxPayloadSize bounds the data.json body read from the monitor.
const MaxPayloadSize int64 = 32 << 20

// DataPath is the LibreHardwareMonitor endpoint serving the sensor tree.
const DataPath = "/data.json"

// Fetcher retrieves one sensor tree.
type Fetcher interface {
	Fetch(ctx context.Context) (*sensor.Node, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) (*sensor.Node, error)

func (f FetcherFunc) Fetch(ctx context.Context) (*sensor.Node, error) { return f(ctx) }

// HTTPFetcher reads the sensor tree from a LibreHardwareMonitor web
// server.
type HTTPFetcher struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

// BaseURL builds the monitor's base URL from host and port.
func BaseURL(host string, port int) string {
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// NewHTTPFetcher returns a fetcher for baseURL. Every fetch is bounded by
// timeout. A nil client uses http.DefaultClient.
func NewHTTPFetcher(baseURL string, timeout time.Duration, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{
		url:     strings.TrimRight(baseURL, "/") + DataPath,
		client:  client,
		timeout: timeout,
	}
}

// URL returns the endpoint the fetcher polls.
func (f *HTTPFetcher) URL() string { return f.url }

func (f *HTTPFetcher) Fetch(ctx context.Context) (*sensor.Node, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("fetch %s: %w: %d", f.url, ErrStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxPayloadSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.url, err)
	}
	root, err := sensor.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return root, nil
}

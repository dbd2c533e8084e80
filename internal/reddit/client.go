// Package reddit is the read-only client for the forum's public JSON API.
//
// Every request is a single GET with no retries. Failures of any kind are
// reported as *FetchError so callers can render one reason string.
//
// Client is safe for concurrent use. Requests to the same host share a
// limiter (concurrency cap plus start spacing) so a per-author fan-out does
// not burst the upstream.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://www.reddit.com"

// DefaultUserAgent identifies the client to the upstream.
const DefaultUserAgent = "redditmini/0.1 (terminal reader)"

// FetchError is returned for transport failures (Status 0), non-2xx
// responses and bodies that are not valid JSON.
type FetchError struct {
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string { return e.Message }

func (e *FetchError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a FetchError carrying a 404.
func IsNotFound(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Status == http.StatusNotFound
}

// Exchange describes one finished upstream request.
type Exchange struct {
	Started  time.Time
	URL      string
	Status   int
	Bytes    int64
	Duration time.Duration
	Err      error
}

// Recorder observes finished exchanges. Implementations must not block.
type Recorder interface {
	RecordExchange(Exchange)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(Exchange)

func (f RecorderFunc) RecordExchange(x Exchange) { f(x) }

// Recorders fans one exchange out to several recorders; nil entries are skipped.
func Recorders(rs ...Recorder) Recorder {
	return RecorderFunc(func(x Exchange) {
		for _, r := range rs {
			if r != nil {
				r.RecordExchange(x)
			}
		}
	})
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration // 0 leaves only the transport timeouts
	MaxPerHost  int
	MinInterval time.Duration
	HTTPClient  *http.Client
	Recorder    Recorder
}

// Client performs GETs against the API root.
type Client struct {
	base      *url.URL
	userAgent string
	http      *http.Client
	limiter   *hostLimiter
	recorder  Recorder
}

// New builds a Client. It fails only when BaseURL does not parse.
func New(opts Options) (*Client, error) {
	raw := opts.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", raw)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Transport: sharedTransport(), Timeout: opts.Timeout}
	}

	return &Client{
		base:      base,
		userAgent: ua,
		http:      hc,
		limiter:   newHostLimiter(opts.MaxPerHost, opts.MinInterval),
		recorder:  opts.Recorder,
	}, nil
}

// BaseURL returns the API root requests are resolved against.
func (c *Client) BaseURL() string { return c.base.String() }

// URLFor resolves an API path and query against the base URL. path is in
// escaped form: endpoint helpers escape each segment they interpolate.
func (c *Client) URLFor(path string, query url.Values) string {
	u := *c.base
	raw := strings.TrimRight(c.base.EscapedPath(), "/") + "/" + strings.TrimLeft(path, "/")
	if p, err := url.PathUnescape(raw); err == nil {
		u.Path, u.RawPath = p, raw
	} else {
		u.Path, u.RawPath = raw, ""
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// GetJSON issues one GET for path and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.getJSON(ctx, c.URLFor(path, query), out)
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	x := Exchange{Started: time.Now(), URL: target}
	err := c.do(ctx, target, "application/json", func(resp *http.Response) error {
		x.Status = resp.StatusCode
		cr := &countingReader{r: resp.Body}
		defer func() { x.Bytes = cr.n }()
		if err := json.NewDecoder(cr).Decode(out); err != nil {
			return &FetchError{
				URL:     target,
				Status:  resp.StatusCode,
				Message: fmt.Sprintf("malformed JSON from %s: %v", target, err),
				Err:     err,
			}
		}
		return nil
	}, &x)
	x.Duration = time.Since(x.Started)
	x.Err = err
	if c.recorder != nil {
		c.recorder.RecordExchange(x)
	}
	return err
}

// do runs the request through the host limiter, checks the status and hands
// the open response to decode.
func (c *Client) do(ctx context.Context, target, accept string, decode func(*http.Response) error, x *Exchange) error {
	release, err := c.limiter.acquire(ctx, hostOf(target))
	if err != nil {
		return &FetchError{URL: target, Message: fmt.Sprintf("request to %s not started: %v", target, err), Err: err}
	}
	defer release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &FetchError{URL: target, Message: fmt.Sprintf("build request: %v", err), Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{URL: target, Message: fmt.Sprintf("request to %s failed: %v", target, err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		x.Status = resp.StatusCode
		return &FetchError{
			URL:     target,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}
	return decode(resp)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

var (
	transport     *http.Transport
	transportOnce sync.Once
)

// sharedTransport is the pooled transport all default clients reuse.
func sharedTransport() *http.Transport {
	transportOnce.Do(func() {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
		}
	})
	return transport
}

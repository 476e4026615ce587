package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	browser "github.com/EDDYCJY/fake-useragent"
	"golang.org/x/time/rate"
)

// HTTPClientOptions configures one provider's outbound client. Spacing is
// the minimum gap between requests to that site; defensive sites get a
// larger value.
type HTTPClientOptions struct {
	Timeout   time.Duration
	Spacing   time.Duration
	UserAgent string
	Transport http.RoundTripper
}

// HTTPClient is a rate-limited HTTP client shared by one provider
// instance. The limiter is local to the provider, so a slow site only
// throttles its own calls.
type HTTPClient struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewHTTPClient builds a client with cloudflare bypass headers and a
// rotating User-Agent. Anti-bot evasion here is best-effort and fails
// soft: a blocked request surfaces as an ordinary HTTP error.
func NewHTTPClient(opts HTTPClientOptions) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Spacing <= 0 {
		opts.Spacing = 100 * time.Millisecond
	}
	if opts.UserAgent == "" {
		opts.UserAgent = browser.Chrome()
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		}
		transport = cloudflarebp.AddCloudFlareByPass(transport)
	}

	jar, _ := cookiejar.New(nil)

	return &HTTPClient{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			Jar:       jar,
		},
		limiter:   rate.NewLimiter(rate.Every(opts.Spacing), 1),
		userAgent: opts.UserAgent,
	}
}

// Do waits for the provider's rate limiter, then executes the request.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.client.Do(req)
}

// Get issues a rate-limited GET and returns the response body.
func (c *HTTPClient) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}
	return body, nil
}

// GetJSON issues a rate-limited GET and decodes the JSON response into out.
func (c *HTTPClient) GetJSON(ctx context.Context, url string, out any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

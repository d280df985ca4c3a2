// Package gateway implements the outbound REST client for the payment
// processor's checkout API. The client is stateless: every call attaches the
// API credential header, posts a JSON body and returns either the parsed
// response or an *Error carrying the upstream HTTP status.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/checkout-api/internal/obs"
)

const (
	testBaseURL = "https://checkout-test.payaxis.com/v71"
	liveBaseURL = "https://checkout-live.payaxis.com/v71"
)

// Amount is a currency/minor-units pair as the gateway represents money.
type Amount struct {
	Currency string `json:"currency"`
	Value    int64  `json:"value"`
}

// SessionRequest is the payload for creating a hosted payment session.
// Reference is generated once by the caller and never mutated.
type SessionRequest struct {
	Amount          Amount `json:"amount"`
	CountryCode     string `json:"countryCode"`
	MerchantAccount string `json:"merchantAccount"`
	Reference       string `json:"reference"`
	ReturnURL       string `json:"returnUrl"`
}

// PaymentResult is the subset of a /payments or /payments/details response
// the service acts on. Raw preserves the full gateway document.
type PaymentResult struct {
	ResultCode string          `json:"resultCode"`
	Action     map[string]any  `json:"action,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

// Config carries the static settings the client needs.
type Config struct {
	APIKey          string
	MerchantAccount string
	Live            bool
	// BaseURL overrides the environment-derived endpoint, used by tests to
	// point the client at a stub server.
	BaseURL string
	Timeout time.Duration
}

// Client talks to the processor's checkout API.
type Client struct {
	cfg  Config
	http *http.Client
}

// New constructs a gateway client. Outbound calls are traced via otelhttp.
func New(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
	}
}

// MerchantAccount exposes the configured merchant account for request building.
func (c *Client) MerchantAccount() string {
	return c.cfg.MerchantAccount
}

func (c *Client) baseURL() string {
	if strings.TrimSpace(c.cfg.BaseURL) != "" {
		return strings.TrimRight(c.cfg.BaseURL, "/")
	}
	if c.cfg.Live {
		return liveBaseURL
	}
	return testBaseURL
}

// PaymentMethods fetches the payment methods available for the shopper and
// returns the gateway's JSON untouched.
func (c *Client) PaymentMethods(ctx context.Context, shopperLocale, countryCode string) (json.RawMessage, error) {
	payload := map[string]any{
		"merchantAccount": c.cfg.MerchantAccount,
		"channel":         "Web",
	}
	if shopperLocale != "" {
		payload["shopperLocale"] = shopperLocale
	}
	if countryCode != "" {
		payload["countryCode"] = countryCode
	}
	return c.post(ctx, "/paymentMethods", payload)
}

// CreateSession opens a hosted payment session for the given request.
func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (json.RawMessage, error) {
	return c.post(ctx, "/sessions", req)
}

// Payments submits a payment and parses the result code and optional action.
func (c *Client) Payments(ctx context.Context, payload map[string]any) (PaymentResult, error) {
	return c.postResult(ctx, "/payments", payload)
}

// PaymentDetails submits additional payment details (e.g. a redirect result).
func (c *Client) PaymentDetails(ctx context.Context, payload map[string]any) (PaymentResult, error) {
	return c.postResult(ctx, "/payments/details", payload)
}

// Ping reports whether the gateway endpoint is reachable. Any HTTP response,
// including an auth rejection, counts as reachable.
func (c *Client) Ping(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

func (c *Client) postResult(ctx context.Context, endpoint string, payload map[string]any) (PaymentResult, error) {
	raw, err := c.post(ctx, endpoint, payload)
	if err != nil {
		return PaymentResult{}, err
	}
	var result PaymentResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return PaymentResult{}, fmt.Errorf("gateway: decode %s response: %w", endpoint, err)
	}
	result.Raw = raw
	return result, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gateway: encode %s request: %w", endpoint, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gateway: build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.cfg.APIKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observeCall(endpoint, start, false)
		return nil, fmt.Errorf("gateway: call %s: %w", endpoint, err)
	}
	observeCall(endpoint, start, resp.StatusCode < 300)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway: read %s response: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp.StatusCode, data)
	}
	return data, nil
}

func observeCall(endpoint string, start time.Time, ok bool) {
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	if obs.GatewayRequestsTotal != nil {
		obs.GatewayRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	}
	if obs.GatewayRequestDuration != nil {
		obs.GatewayRequestDuration.WithLabelValues(endpoint).Observe(obs.DurationMillis(time.Since(start)))
	}
}

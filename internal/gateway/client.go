// internal/gateway/client.go

// Package gateway talks to the mobile-money payment gateway: collecting
// deposits, sending payouts and authenticating its callbacks.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"betslip-wallet/internal/util"
)

// SignatureHeader carries the hex HMAC-SHA256 of a callback body.
const SignatureHeader = "X-Signature"

// Status is a payment state reported by the gateway.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Config configures the gateway client.
type Config struct {
	BaseURL        string
	APIKey         string
	CallbackSecret string
	CallbackURL    string
	Mock           bool // Answer locally instead of calling the gateway
	Timeout        time.Duration
	RetryMax       int
}

// InitiateRequest starts a collection from the payer's mobile-money wallet.
type InitiateRequest struct {
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Phone       string          `json:"phone"`
	CallbackURL string          `json:"callback_url,omitempty"`
}

// InitiateResponse identifies the started collection.
type InitiateResponse struct {
	TrackingID  string `json:"tracking_id"`
	RedirectURL string `json:"redirect_url"`
	Status      Status `json:"status"`
}

// PayoutRequest sends money to the payee's mobile-money wallet.
type PayoutRequest struct {
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Phone     string          `json:"phone"`
}

// PayoutResponse reports the payout outcome.
type PayoutResponse struct {
	TrackingID string `json:"tracking_id"`
	Status     Status `json:"status"`
}

// Callback is the asynchronous collection result POSTed by the gateway.
type Callback struct {
	TrackingID string          `json:"tracking_id"`
	Reference  string          `json:"reference,omitempty"` // Echo of InitiateRequest.Reference
	Status     Status          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
}

// Client is the payment gateway HTTP client.
type Client struct {
	cfg    Config
	http   *retryablehttp.Client
	logger *zap.Logger
}

// NewClient creates a gateway client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:    cfg,
		http:   util.NewRetryableClient(cfg.Timeout, cfg.RetryMax, logger),
		logger: logger.Named("gateway"),
	}
}

// Initiate starts a deposit collection. The payer confirms on their phone and
// the gateway reports the result through the callback.
func (c *Client) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	if req.CallbackURL == "" {
		req.CallbackURL = c.cfg.CallbackURL
	}
	if c.cfg.Mock {
		return &InitiateResponse{TrackingID: "mock-" + req.Reference, Status: StatusPending}, nil
	}

	var resp InitiateResponse
	if err := c.post(ctx, "/v1/collections", req.Reference, req, &resp); err != nil {
		return nil, fmt.Errorf("initiate collection %s: %w", req.Reference, err)
	}
	if resp.TrackingID == "" {
		return nil, fmt.Errorf("initiate collection %s: %w: empty tracking id", req.Reference, util.ErrGatewayUnavailable)
	}
	return &resp, nil
}

// Payout sends a withdrawal. The reference doubles as the idempotency key so a
// retried request never pays twice.
func (c *Client) Payout(ctx context.Context, req PayoutRequest) (*PayoutResponse, error) {
	if c.cfg.Mock {
		return &PayoutResponse{TrackingID: "mock-" + req.Reference, Status: StatusSucceeded}, nil
	}

	var resp PayoutResponse
	if err := c.post(ctx, "/v1/payouts", req.Reference, req, &resp); err != nil {
		return nil, fmt.Errorf("payout %s: %w", req.Reference, err)
	}
	return &resp, nil
}

// VerifyCallback checks the callback signature against the shared secret.
func (c *Client) VerifyCallback(body []byte, signature string) error {
	if c.cfg.CallbackSecret == "" {
		if c.cfg.Mock {
			return nil
		}
		return util.ErrInvalidSignature
	}
	expected := Sign(c.cfg.CallbackSecret, body)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return util.ErrInvalidSignature
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) post(ctx context.Context, path, idempotencyKey string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Idempotency-Key", idempotencyKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("gateway call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", util.ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", util.ErrPaymentFailed, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", util.ErrGatewayUnavailable, err)
	}
	return nil
}

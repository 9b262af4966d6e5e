package ziina

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

	"github.com/madrasati/schoolstore-backend/pkg/config"
	pkgerrors "github.com/madrasati/schoolstore-backend/pkg/errors"
	"github.com/madrasati/schoolstore-backend/pkg/logger"
)

const (
	defaultTimeout  = 15 * time.Second
	maxErrorBodyLen = 4 << 10
)

var (
	errAPIKeyRequired = errors.New("ziina api key is required")
	errLoggerRequired = errors.New("ziina logger is required")
)

// Client exposes Ziina payment request primitives with centralized auth,
// logging, and error mapping. Ziina ships no Go SDK, so the client speaks
// the REST API directly.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	currency   string
	logger     *logger.Logger
}

// NewClient initializes the Ziina wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.ZiinaConfig, store config.StoreConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.ziina.com/v1"
	}

	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		currency:   store.Currency,
		logger:     logg,
	}

	logg.Info(ctx, "ziina client initialized")
	return c, nil
}

// BaseURL reports the configured API endpoint.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// CreatePaymentRequest opens a hosted payment page and returns the provider's
// payment request, including the redirect URL the customer must visit.
func (c *Client) CreatePaymentRequest(ctx context.Context, params PaymentRequestCreateParams) (*PaymentRequest, error) {
	body := params.toRequestBody(c.currency)
	c.log(ctx, "request", "create_payment_request", map[string]any{
		"reference":      params.Reference,
		"amount_minor":   body.Amount,
		"currency":       body.Currency,
		"customer_email": params.CustomerEmail,
	})

	var pr PaymentRequest
	if err := c.do(ctx, http.MethodPost, "/payment-requests", body, &pr); err != nil {
		c.log(ctx, "error", "create_payment_request", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_payment_request", map[string]any{
		"payment_request_id": pr.ID,
		"status":             pr.Status,
	})
	return &pr, nil
}

// GetPaymentRequest fetches the current state of a payment request.
func (c *Client) GetPaymentRequest(ctx context.Context, paymentRequestID string) (*PaymentRequest, error) {
	id := strings.TrimSpace(paymentRequestID)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment request id is required")
	}
	c.log(ctx, "request", "get_payment_request", map[string]any{"payment_request_id": id})

	var pr PaymentRequest
	if err := c.do(ctx, http.MethodGet, "/payment-requests/"+id, nil, &pr); err != nil {
		c.log(ctx, "error", "get_payment_request", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "get_payment_request", map[string]any{
		"payment_request_id": pr.ID,
		"status":             pr.Status,
	})
	return &pr, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ziina request encoding failed")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ziina request build failed")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ziina request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ziina response decoding failed")
	}
	return nil
}

func (c *Client) mapAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))

	message := "ziina request rejected"
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && strings.TrimSpace(payload.Message) != "" {
		message = payload.Message
	}

	code := domainCodeForStatus(resp.StatusCode)
	return pkgerrors.Wrap(code, fmt.Errorf("ziina status %d: %s", resp.StatusCode, message), message)
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("ziina %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("ziina %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "secret", "key", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeStateConflict
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}

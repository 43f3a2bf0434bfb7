package dhan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/joripage/superorder/pkg/oms/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.dhan.co"

	superOrderPath = "/v2/super/orders"
	ltpPath        = "/v2/marketfeed/ltp"

	orderStatusRejected = "REJECTED"
)

type Config struct {
	BaseURL     string `yaml:"base_url"`
	ClientID    string `yaml:"client_id"`
	AccessToken string `yaml:"access_token"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	MaxRetries  int    `yaml:"max_retries"`
	RetryWaitMs int    `yaml:"retry_wait_ms"`
}

// Client talks to the Dhan v2 REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.ClientID == "" || cfg.AccessToken == "" {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.TimeoutMs <= 0 {
		cfg.TimeoutMs = 10_000
	}
	// 0 means the default single retry; negative disables retrying
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 1
	}
	if cfg.RetryWaitMs <= 0 {
		cfg.RetryWaitMs = 250
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(cfg.TimeoutMs) * time.Millisecond}
	}
	return &Client{cfg: cfg, httpClient: httpClient}, nil
}

func (c *Client) ClientID() string {
	return c.cfg.ClientID
}

type placeResponse struct {
	OrderID      flexString `json:"orderId"`
	OrderStatus  string     `json:"orderStatus"`
	ErrorType    string     `json:"errorType"`
	ErrorCode    string     `json:"errorCode"`
	ErrorMessage string     `json:"errorMessage"`
}

// PlaceSuperOrder submits the payload once, repeating it only when the
// connection itself failed.
func (c *Client) PlaceSuperOrder(ctx context.Context, payload *model.WirePayload) (*model.SubmissionResult, error) {
	var resp placeResponse
	status, err := c.do(ctx, http.MethodPost, superOrderPath, payload, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ErrorType != "" || resp.ErrorCode != "" || resp.ErrorMessage != "" {
		return nil, &APIError{
			HTTPStatus: status,
			ErrorType:  resp.ErrorType,
			ErrorCode:  resp.ErrorCode,
			Message:    resp.ErrorMessage,
		}
	}
	if strings.EqualFold(resp.OrderStatus, orderStatusRejected) {
		return nil, &APIError{
			HTTPStatus:  status,
			OrderStatus: orderStatusRejected,
			Message:     fmt.Sprintf("order %s rejected", resp.OrderID),
		}
	}
	return &model.SubmissionResult{OrderID: string(resp.OrderID), OrderStatus: resp.OrderStatus}, nil
}

type ltpResponse struct {
	Data   map[string]map[string]ltpQuote `json:"data"`
	Status string                         `json:"status"`
}

type ltpQuote struct {
	LastPrice decimal.Decimal `json:"last_price"`
}

// LastTradedPrice fetches the current price of one instrument.
func (c *Client) LastTradedPrice(ctx context.Context, segment model.ExchangeSegment, securityID string) (decimal.Decimal, error) {
	id, err := strconv.ParseInt(securityID, 10, 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("security id %q: %w", securityID, err)
	}

	var resp ltpResponse
	body := map[model.ExchangeSegment][]int64{segment: {id}}
	if _, err := c.do(ctx, http.MethodPost, ltpPath, body, &resp); err != nil {
		return decimal.Zero, err
	}
	quote, ok := resp.Data[string(segment)][securityID]
	if !ok || !quote.LastPrice.IsPositive() {
		return decimal.Zero, ErrNoPrice
	}
	return quote.LastPrice, nil
}

// do sends a JSON request and decodes a 2xx body into out. Non-2xx
// responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) (int, error) {
	reqBody, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	var resp *http.Response
	send := func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bytes.NewReader(reqBody))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("access-token", c.cfg.AccessToken)
		req.Header.Set("client-id", c.cfg.ClientID)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err = c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			zap.S().Warnw("dhan request failed", "path", path, "err", err)
			if !isDialError(err) {
				// the request may have reached the broker
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}

	// WithMaxRetries treats 0 as unlimited, so a disabled retry sends once
	if c.cfg.MaxRetries < 0 {
		err = send()
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
	} else {
		boff := backoff.WithMaxRetries(
			backoff.NewConstantBackOff(time.Duration(c.cfg.RetryWaitMs)*time.Millisecond),
			uint64(c.cfg.MaxRetries),
		)
		err = backoff.Retry(send, backoff.WithContext(boff, ctx))
	}
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, decodeAPIError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func decodeAPIError(status int, data []byte) error {
	var env placeResponse
	apiErr := &APIError{HTTPStatus: status}
	if err := json.Unmarshal(data, &env); err == nil {
		apiErr.ErrorType = env.ErrorType
		apiErr.ErrorCode = env.ErrorCode
		apiErr.Message = env.ErrorMessage
		apiErr.OrderStatus = env.OrderStatus
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// flexString accepts both JSON strings and numbers.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return errors.New("orderId is neither string nor number")
	}
	*s = flexString(num.String())
	return nil
}

// isDialError reports whether err happened before a connection existed, so
// nothing was sent.
func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

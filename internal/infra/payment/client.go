package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/usecase"
)

const DefaultBaseURL = "https://api.razorpay.com/v1"

// Client はRazorpay互換の Orders API を呼ぶ。
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

func NewClient(baseURL, keyID, keySecret string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		http:      &http.Client{Timeout: timeout},
	}
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *Client) CreateOrder(ctx context.Context, req usecase.GatewayOrderRequest) (usecase.GatewayOrder, error) {
	//ネットワークに出る前に設定を確認
	if c.keyID == "" || c.keySecret == "" {
		return usecase.GatewayOrder{}, usecase.NewError(usecase.ErrConfiguration, "payment gateway credentials missing")
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return usecase.GatewayOrder{}, fmt.Errorf("encode order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return usecase.GatewayOrder{}, fmt.Errorf("build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return usecase.GatewayOrder{}, &usecase.GatewayError{
			HTTPStatus:  http.StatusBadGateway,
			Description: "payment gateway unreachable",
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return usecase.GatewayOrder{}, &usecase.GatewayError{
			HTTPStatus:  http.StatusBadGateway,
			Description: "payment gateway response unreadable",
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var er errorResponse
		_ = json.Unmarshal(raw, &er)
		return usecase.GatewayOrder{}, usecase.NewGatewayError(resp.StatusCode, er.Error.Description)
	}

	var out orderResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.ID == "" {
		return usecase.GatewayOrder{}, &usecase.GatewayError{
			HTTPStatus:  http.StatusBadGateway,
			Description: "payment gateway returned an invalid order",
		}
	}

	return usecase.GatewayOrder{
		ID:       out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
		Receipt:  out.Receipt,
		Status:   out.Status,
	}, nil
}

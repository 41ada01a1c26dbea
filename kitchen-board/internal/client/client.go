package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"kebab-orders/pkg/domain"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-2xx answer from the Order API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("order api: %d %s", e.StatusCode, e.Message)
}

// BoardOrder mirrors the board entries served by the Order API.
type BoardOrder struct {
	domain.Order
	ElapsedMinutes int             `json:"elapsedMinutes"`
	AllowedNext    []domain.Status `json:"allowedNext"`
}

type Board struct {
	KitchenActive    []BoardOrder `json:"kitchenActive"`
	ReadyForDelivery []BoardOrder `json:"readyForDelivery"`
	Archived         []BoardOrder `json:"archived"`
}

type envelope struct {
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
	Redirect string          `json:"redirect"`
}

type Client struct {
	baseURL string
	http    HTTPClient
}

func New(baseURL string, httpClient HTTPClient) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

func (c *Client) List(ctx context.Context, filters map[string]string) ([]domain.Order, error) {
	query := url.Values{}
	for key, value := range filters {
		query.Set(key, value)
	}

	var orders []domain.Order
	if _, err := c.do(ctx, http.MethodGet, "/api/orders", query, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) Get(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	if _, err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	var created domain.Order
	if _, err := c.do(ctx, http.MethodPost, "/api/orders", nil, order, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	payload := map[string]any{"id": id, "status": status}

	var updated domain.Order
	if _, err := c.do(ctx, http.MethodPut, "/api/orders", nil, payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) Delete(ctx context.Context, id string) (*domain.Order, error) {
	var deleted domain.Order
	if _, err := c.do(ctx, http.MethodDelete, "/api/orders", url.Values{"id": {id}}, nil, &deleted); err != nil {
		return nil, err
	}
	return &deleted, nil
}

// Board fetches the server-side buckets. rangeName wins over explicit bounds.
func (c *Client) Board(ctx context.Context, rangeName string, start, end *time.Time) (*Board, error) {
	query := url.Values{}
	if rangeName != "" {
		query.Set("range", rangeName)
	} else {
		if start != nil {
			query.Set("start", start.UTC().Format(time.RFC3339))
		}
		if end != nil {
			query.Set("end", end.UTC().Format(time.RFC3339))
		}
	}

	var board Board
	if _, err := c.do(ctx, http.MethodGet, "/api/orders/board", query, nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// CheckoutDelivery submits a delivery order and returns the stored order
// together with the page the customer continues on.
func (c *Client) CheckoutDelivery(ctx context.Context, order *domain.Order) (*domain.Order, string, error) {
	var created domain.Order
	env, err := c.do(ctx, http.MethodPost, "/api/delivery/checkout", nil, order, &created)
	if err != nil {
		return nil, "", err
	}
	return &created, env.Redirect, nil
}

func (c *Client) PaymentIntent(ctx context.Context, amount int64, orderID string) (string, error) {
	payload := map[string]any{"amount": amount}
	if orderID != "" {
		payload["orderId"] = orderID
	}

	body, err := c.send(ctx, http.MethodPost, "/api/payment-intent", nil, payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		ClientSecret string `json:"clientSecret"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode payment intent: %w", err)
	}
	return resp.ClientSecret, nil
}

func (c *Client) Menu(ctx context.Context) ([]domain.MenuItem, error) {
	var menu []domain.MenuItem
	if _, err := c.do(ctx, http.MethodGet, "/api/menu", nil, nil, &menu); err != nil {
		return nil, err
	}
	return menu, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) (*envelope, error) {
	body, err := c.send(ctx, method, path, query, payload)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return &env, nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		message := http.StatusText(resp.StatusCode)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			message = apiErr.Error
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
	}
	return body, nil
}

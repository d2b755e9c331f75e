package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"creditcoach/models"

	"go.uber.org/zap"
)

// APIError is returned for any non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: status %d", e.Status)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

// HTTPStatus exposes the upstream status code for classification.
func (e *APIError) HTTPStatus() int { return e.Status }

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks JSON to the bookings and products API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a client rooted at baseURL. A zero timeout means none.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// errorBody covers the shapes the backend uses for error messages.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("backend: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend: response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Message = eb.Message
			if apiErr.Message == "" {
				apiErr.Message = eb.Error
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: decode %s %s: %w", method, path, err)
	}
	return nil
}

// AvailableSlots lists open start times for serviceType on date (YYYY-MM-DD).
func (c *Client) AvailableSlots(ctx context.Context, date string, serviceType models.ServiceType) ([]models.Slot, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("serviceType", string(serviceType))

	var slots []models.Slot
	if err := c.do(ctx, http.MethodGet, "/bookings/available-slots?"+q.Encode(), "", nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// CreateBooking reserves a consultation for the bearer of token.
func (c *Client) CreateBooking(ctx context.Context, token string, req models.BookingRequest) (*models.BookingConfirmation, error) {
	var conf models.BookingConfirmation
	if err := c.do(ctx, http.MethodPost, "/bookings", token, req, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

// MyBookings lists the consultations booked by the bearer of token.
func (c *Client) MyBookings(ctx context.Context, token string) ([]models.BookingConfirmation, error) {
	var out []models.BookingConfirmation
	if err := c.do(ctx, http.MethodGet, "/bookings/me", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProducts returns the raw product payloads of the shop.
func (c *Client) ListProducts(ctx context.Context) ([]models.ProductPayload, error) {
	var out []models.ProductPayload
	if err := c.do(ctx, http.MethodGet, "/products", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProduct returns one raw product payload.
func (c *Client) GetProduct(ctx context.Context, id string) (*models.ProductPayload, error) {
	var out models.ProductPayload
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

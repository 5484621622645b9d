package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"smartkitchen/internal/models"

	"github.com/google/uuid"
)

// Backend paths
const (
	PathInventory         = "/get_inventory_item"
	PathMenu              = "/Get_Menu"
	PathAddOrder          = "/add_order"
	PathWeeklySales       = "/get_Weekly_sales"
	PathMonthlySales      = "/get_Monthly_sales"
	PathPrediction        = "/get_prediction"
	PathSalesLastNMonths  = "/Get_Sales_Last_N_Months"
	PathUploadImage       = "/upload-image"
	PathDetectionImage    = "/get-image"
	PathInventoryForecast = "/get_inventory_predictions"

	// UploadField is the multipart field carrying the scanned image
	UploadField = "file"
	// RequestIDHeader correlates dashboard logs with backend requests
	RequestIDHeader = "X-Request-ID"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// Observer is notified after every backend round trip. status is 0 when the
// request never got a response.
type Observer func(path string, status int, elapsed time.Duration)

// ApiClient talks to the restaurant backend
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	observer   Observer
}

// Option configures an ApiClient
type Option func(*ApiClient)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *ApiClient) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *ApiClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithObserver registers a round trip observer
func WithObserver(o Observer) Option {
	return func(c *ApiClient) {
		c.observer = o
	}
}

// NewApiClient creates a new API client for the backend at baseURL
func NewApiClient(baseURL string, opts ...Option) *ApiClient {
	c := &ApiClient{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetInventory retrieves the current inventory
func (c *ApiClient) GetInventory(ctx context.Context) ([]models.InventoryItem, error) {
	body, err := c.get(ctx, PathInventory)
	if err != nil {
		return nil, err
	}
	return decodeList[models.InventoryItem](PathInventory, body)
}

// GetMenu retrieves the menu
func (c *ApiClient) GetMenu(ctx context.Context) ([]models.MenuDish, error) {
	body, err := c.get(ctx, PathMenu)
	if err != nil {
		return nil, err
	}
	return decodeList[models.MenuDish](PathMenu, body)
}

// AddOrder places an order for a dish
func (c *ApiClient) AddOrder(ctx context.Context, order models.Order) (*models.OrderConfirmation, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPost, PathAddOrder, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var confirmation models.OrderConfirmation
	if err := json.Unmarshal(body, &confirmation); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, PathAddOrder, err)
	}
	return &confirmation, nil
}

// GetWeeklySales retrieves the weekly sales records
func (c *ApiClient) GetWeeklySales(ctx context.Context) ([]models.SalesRecord, error) {
	body, err := c.get(ctx, PathWeeklySales)
	if err != nil {
		return nil, err
	}
	return decodeList[models.SalesRecord](PathWeeklySales, body)
}

// GetMonthlySales retrieves the monthly sales records
func (c *ApiClient) GetMonthlySales(ctx context.Context) ([]models.SalesRecord, error) {
	body, err := c.get(ctx, PathMonthlySales)
	if err != nil {
		return nil, err
	}
	return decodeList[models.SalesRecord](PathMonthlySales, body)
}

// GetPredictions retrieves the sales forecast
func (c *ApiClient) GetPredictions(ctx context.Context) ([]models.PredictionRecord, error) {
	body, err := c.get(ctx, PathPrediction)
	if err != nil {
		return nil, err
	}
	return decodeList[models.PredictionRecord](PathPrediction, body)
}

// GetSalesLastNMonths returns the raw sales export for the last n months
func (c *ApiClient) GetSalesLastNMonths(ctx context.Context, months int) ([]byte, error) {
	if months <= 0 {
		return nil, fmt.Errorf("months must be positive, got %d", months)
	}
	data, err := json.Marshal(map[string]int{"Month": months})
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, PathSalesLastNMonths, "application/json", bytes.NewReader(data))
}

// GetRestockPlan retrieves the ingredient plan for tomorrow's forecast
func (c *ApiClient) GetRestockPlan(ctx context.Context) (*models.RestockPlan, error) {
	body, err := c.get(ctx, PathInventoryForecast)
	if err != nil {
		return nil, err
	}

	var plan models.RestockPlan
	if err := json.Unmarshal(body, &plan); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, PathInventoryForecast, err)
	}
	return &plan, nil
}

// UploadImage sends an image for vegetable detection
func (c *ApiClient) UploadImage(ctx context.Context, filename string, image io.Reader) (*models.DetectionResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(UploadField, filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPost, PathUploadImage, w.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}
	return ParseDetection(body)
}

// GetDetectionImage downloads the annotated image of the last detection
func (c *ApiClient) GetDetectionImage(ctx context.Context) ([]byte, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, PathDetectionImage, "", nil)
	if err != nil {
		return nil, "", err
	}
	resp, body, err := c.roundTrip(req, PathDetectionImage)
	if err != nil {
		return nil, "", err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return body, contentType, nil
}

func (c *ApiClient) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, "", nil)
}

func (c *ApiClient) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, contentType, body)
	if err != nil {
		return nil, err
	}
	_, data, err := c.roundTrip(req, path)
	return data, err
}

func (c *ApiClient) newRequest(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())
	return req, nil
}

func (c *ApiClient) roundTrip(req *http.Request, path string) (*http.Response, []byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(path, 0, start)
		return nil, nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, req.Method, path, err)
	}
	defer resp.Body.Close()
	c.observe(path, resp.StatusCode, start)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading %s: %w", ErrNetwork, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, nil, fmt.Errorf("%s %s: %w", req.Method, path, &StatusError{Code: resp.StatusCode, Body: msg})
	}
	return resp, data, nil
}

func (c *ApiClient) observe(path string, status int, start time.Time) {
	if c.observer != nil {
		c.observer(path, status, time.Since(start))
	}
}

// decodeList decodes a JSON array, accepting a bare object as a one-element list
func decodeList[T any](path string, body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var single T
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
		}
		return []T{single}, nil
	}

	var list []T
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

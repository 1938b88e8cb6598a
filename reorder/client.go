package reorder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Client calls the stock-prediction sidecar, a small model service that
// scores products for reorder likelihood.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// ProductFeatures is the sidecar's input row. ProfitMargin may be left nil;
// the sidecar derives it from the two prices.
type ProductFeatures struct {
	ProductId         string   `json:"product_id,omitempty"`
	CostPrice         float64  `json:"cost_price"`
	SellingPrice      float64  `json:"selling_price"`
	ProfitMargin      *float64 `json:"profit_margin,omitempty"`
	ReorderFrequency  int      `json:"reorder_frequency"`
	CurrentStock      int      `json:"current_stock"`
	MinimumStockLevel int      `json:"minimum_stock_level"`
	Category          string   `json:"category"`
	Brand             string   `json:"brand,omitempty"`
	Supplier          string   `json:"supplier,omitempty"`
}

type Prediction struct {
	ProductId            string  `json:"product_id"`
	ReorderRequired      bool    `json:"reorder_required"`
	Confidence           float64 `json:"confidence"`
	ProbabilityReorder   float64 `json:"probability_reorder"`
	ProbabilityNoReorder float64 `json:"probability_no_reorder,omitempty"`
	ModelVersion         string  `json:"model_version,omitempty"`
}

type BatchPredictionResponse struct {
	Predictions   []Prediction `json:"predictions"`
	TotalProducts int          `json:"total_products"`
	ReorderNeeded int          `json:"reorder_needed"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

func NewClient() *Client {
	baseURL := strings.TrimSpace(os.Getenv("REORDER_SERVICE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("reorder service %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *Client) Predict(ctx context.Context, features ProductFeatures) (*Prediction, error) {
	var prediction Prediction
	if err := c.do(ctx, http.MethodPost, "/predict", features, &prediction); err != nil {
		return nil, err
	}
	prediction.ProductId = features.ProductId
	return &prediction, nil
}

func (c *Client) BatchPredict(ctx context.Context, features []ProductFeatures) (*BatchPredictionResponse, error) {
	var resp BatchPredictionResponse
	if err := c.do(ctx, http.MethodPost, "/batch-predict", features, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/hoopslines/internal/config"
	"github.com/yourusername/hoopslines/internal/metrics"
)

// HTTPPredictor calls the regressor's JSON endpoint.
type HTTPPredictor struct {
	client  *retryablehttp.Client
	baseURL string
	logger  *logrus.Logger
}

type predictRequest struct {
	Features map[string]any `json:"features"`
}

// NewHTTPPredictor creates a JSON client for cfg.HTTPAddress.
func NewHTTPPredictor(cfg config.PredictorConfig, logger *logrus.Logger) *HTTPPredictor {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = timeout(cfg)
	client.Logger = nil

	return &HTTPPredictor{
		client:  client,
		baseURL: strings.TrimRight(cfg.HTTPAddress, "/"),
		logger:  logger,
	}
}

// Predict posts the vector to /predict.
func (c *HTTPPredictor) Predict(ctx context.Context, v FeatureVector) (Prediction, error) {
	start := time.Now()
	p, err := c.predict(ctx, v)
	metrics.RecordPrediction("http", time.Since(start), err)
	if err != nil {
		c.logger.WithError(err).WithField("game", v.Game.String()).Error("Regressor call failed")
	}
	return p, err
}

func (c *HTTPPredictor) predict(ctx context.Context, v FeatureVector) (Prediction, error) {
	body, err := json.Marshal(predictRequest{Features: v.Payload()})
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return Prediction{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %v", ErrPredictorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Prediction{}, fmt.Errorf("%w: status %d: %s", ErrPredictorUnavailable, resp.StatusCode, string(msg))
	}

	var out struct {
		PointTotal *float64 `json:"point_total"`
		Margin     *float64 `json:"margin"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Prediction{}, fmt.Errorf("%w: %v", ErrInvalidPrediction, err)
	}
	if out.PointTotal == nil || out.Margin == nil {
		return Prediction{}, fmt.Errorf("%w: missing point_total or margin", ErrInvalidPrediction)
	}
	return Prediction{PointTotal: *out.PointTotal, Margin: *out.Margin}, nil
}

// HealthCheck checks the regressor's /health endpoint.
func (c *HTTPPredictor) HealthCheck(ctx context.Context) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPredictorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrPredictorUnavailable, resp.StatusCode)
	}
	return nil
}

// Close releases idle connections.
func (c *HTTPPredictor) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/nurturelink/consult-api/pkg/circuitbreaker"
	"github.com/nurturelink/consult-api/pkg/metrics"
)

// Client submits audio recordings to the external screening model.
type Client interface {
	Predict(ctx context.Context, filename string, audio []byte) (json.RawMessage, error)
}

type Config struct {
	URL            string        `mapstructure:"url"`
	RetryAttempts  int           `mapstructure:"retry_attempts"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type HTTPClient struct {
	cfg     Config
	client  *http.Client
	cb      *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
}

func NewHTTPClient(cfg Config, m *metrics.Metrics) *HTTPClient {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	return &HTTPClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		metrics: m,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "prediction",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		}),
	}
}

// Predict posts the audio as multipart form data, retrying transient
// failures a fixed number of times.
func (c *HTTPClient) Predict(ctx context.Context, filename string, audio []byte) (json.RawMessage, error) {
	var result json.RawMessage
	var err error

	start := time.Now()
	defer func() {
		if c.metrics == nil {
			return
		}
		c.metrics.PredictionLatency.Observe(time.Since(start).Seconds())
		status := "success"
		if err != nil {
			status = "error"
		}
		c.metrics.PredictionRequests.WithLabelValues(status).Inc()
	}()

	for attempt := 0; attempt < c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}

		result, err = c.predictOnce(ctx, filename, audio)
		if err == nil {
			return result, nil
		}
	}

	return nil, fmt.Errorf("prediction failed after %d attempts: %w", c.cfg.RetryAttempts, err)
}

func (c *HTTPClient) predictOnce(ctx context.Context, filename string, audio []byte) (json.RawMessage, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result json.RawMessage
	err = c.cb.Execute(func() error {
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("prediction service returned %d", resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read prediction response: %w", err)
		}
		if !json.Valid(data) {
			return fmt.Errorf("prediction service returned invalid JSON")
		}
		result = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

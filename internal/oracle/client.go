package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/copyleftdev/glassopt/internal/errors"
	"github.com/copyleftdev/glassopt/internal/metrics"
)

const (
	endpointDeflection = "deflection"
	endpointStress     = "stress"

	mmToM   = 1e-3
	mpaToPa = 1e6
)

// Config holds the oracle endpoints and limits.
type Config struct {
	DeflectionURL string
	StressURL     string
	Token         string
	Timeout       time.Duration
	// MaxUDL is the largest uniform load in pascals the deflection model
	// was trained on.
	MaxUDL float64
	// Retries is how many times a failed exchange is repeated. Zero fails fast.
	Retries int
}

// DefaultConfig returns local endpoints with the trained model limits.
func DefaultConfig() Config {
	return Config{
		DeflectionURL: "http://localhost:8081/predict",
		StressURL:     "http://localhost:8082/predict",
		Timeout:       5 * time.Second,
		MaxUDL:        25000,
	}
}

type payload struct {
	Instances []Instance `json:"instances"`
}

type predictions struct {
	Predictions []float64 `json:"predictions"`
}

// Client is the HTTP prediction pipeline.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a client. A nil logger discards log output.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.Named("oracle"),
	}
}

// Predict runs the deflection and stress batches concurrently and waits
// for both. Either failure fails the whole call.
func (c *Client) Predict(ctx context.Context, b Batches) (deflection, stress []Response, err error) {
	var (
		wg                sync.WaitGroup
		defErr, stressErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		deflection, defErr = c.PredictDeflection(ctx, b.Deflection)
	}()
	go func() {
		defer wg.Done()
		stress, stressErr = c.PredictStress(ctx, b.Stress)
	}()
	wg.Wait()

	if err = stderrors.Join(defErr, stressErr); err != nil {
		return nil, nil, err
	}
	return deflection, stress, nil
}

// PredictDeflection returns deflections in metres, one per request in order.
// A uniform load above the model ceiling fails before anything is sent.
func (c *Client) PredictDeflection(ctx context.Context, batch []Request) ([]Response, error) {
	for _, r := range batch {
		if r.Instance.UDLMagnitude > c.cfg.MaxUDL {
			return nil, errors.Errorf(errors.KindOracleCeiling,
				"udl %.1f Pa on surface %d in combination %d exceeds the model limit of %.1f Pa",
				r.Instance.UDLMagnitude, r.Key.SurfaceID, r.Key.Combination, c.cfg.MaxUDL).
				WithComponent("oracle").WithOperation(endpointDeflection)
		}
	}
	return c.predict(ctx, endpointDeflection, c.cfg.DeflectionURL, batch, mmToM)
}

// PredictStress returns stresses in pascals, one per request in order.
func (c *Client) PredictStress(ctx context.Context, batch []Request) ([]Response, error) {
	return c.predict(ctx, endpointStress, c.cfg.StressURL, batch, mpaToPa)
}

func (c *Client) predict(ctx context.Context, endpoint, url string, batch []Request, scale float64) ([]Response, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	instances := make([]Instance, len(batch))
	for i, r := range batch {
		instances[i] = r.Instance
	}
	body, err := json.Marshal(payload{Instances: instances})
	if err != nil {
		return nil, errors.Wrap(err, errors.KindContract, "encoding prediction batch").WithComponent("oracle")
	}

	var values []float64
	for attempt := 0; ; attempt++ {
		values, err = c.post(ctx, endpoint, url, body)
		if err == nil || attempt >= c.cfg.Retries {
			break
		}
		c.logger.Warn("retrying prediction batch",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	if err != nil {
		return nil, err
	}

	if len(values) != len(batch) {
		return nil, errors.Errorf(errors.KindTransport,
			"oracle returned %d predictions for %d instances", len(values), len(batch)).
			WithComponent("oracle").WithOperation(endpoint)
	}

	out := make([]Response, len(batch))
	for i, r := range batch {
		out[i] = Response{Key: r.Key, Value: values[i] * scale}
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, endpoint, url string, body []byte) ([]float64, error) {
	start := time.Now()
	values, err := c.exchange(ctx, url, body)
	elapsed := time.Since(start)

	metrics.OracleDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	if err != nil {
		metrics.OracleRequests.WithLabelValues(endpoint, metrics.OutcomeError).Inc()
		return nil, errors.Wrap(err, errors.KindTransport,
			"error when connecting to prediction server, check the connection to the server").
			WithComponent("oracle").WithOperation(endpoint)
	}
	metrics.OracleRequests.WithLabelValues(endpoint, metrics.OutcomeOK).Inc()
	metrics.OracleInstances.WithLabelValues(endpoint).Add(float64(len(values)))

	c.logger.Debug("prediction batch answered",
		zap.String("endpoint", endpoint),
		zap.Int("instances", len(values)),
		zap.Duration("latency", elapsed),
	)
	return values, nil
}

func (c *Client) exchange(ctx context.Context, url string, body []byte) ([]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var p predictions
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding predictions: %w", err)
	}
	return p.Predictions, nil
}

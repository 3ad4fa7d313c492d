package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ClientConfig holds the endpoint and polling behavior for the analysis service.
type ClientConfig struct {
	Endpoint     string
	APIKey       string
	ModelID      string
	PollInterval time.Duration
	Timeout      time.Duration
}

// Client calls the document-understanding REST API: submit bytes, follow the
// returned operation location, poll until the operation reaches a terminal
// status, then decode and validate the result.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger,
	}
}

type operationStatus struct {
	Status        string          `json:"status"`
	Error         *operationError `json:"error,omitempty"`
	AnalyzeResult json.RawMessage `json:"analyzeResult,omitempty"`
}

type operationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Analyze implements Analyzer.
func (c *Client) Analyze(ctx context.Context, content []byte) (*Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	c.log.Info("analyze.start",
		"req_id", rid,
		"model_id", c.cfg.ModelID,
		"content_bytes", len(content),
	)

	opURL, err := c.submit(ctx, content)
	if err != nil {
		c.log.Error("analyze.submit_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	raw, err := c.poll(ctx, opURL)
	if err != nil {
		c.log.Error("analyze.poll_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	if err := ValidateResult(raw); err != nil {
		c.log.Error("analyze.schema_validation_failed",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("analysis result validation: %w", err)
	}

	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		c.log.Error("analyze.decode_failed",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("decode analysis result: %w", err)
	}

	c.log.Info("analyze.ok",
		"req_id", rid,
		"documents", len(res.Documents),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &res, nil
}

// submit posts the document bytes and returns the operation URL to poll.
func (c *Client) submit(ctx context.Context, content []byte) (string, error) {
	url := fmt.Sprintf("%s/documentModels/%s:analyze?api-version=2024-11-30",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.ModelID)

	body := map[string]any{"base64Source": content}
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("analyzer http error: %w", err)
	}
	defer c.closeBody(resp)

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		return "", fmt.Errorf("analyzer status %d: %s", resp.StatusCode, buf.String())
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", fmt.Errorf("analyzer returned no operation location")
	}
	return opURL, nil
}

// poll follows the operation until it succeeds or fails, returning the raw
// analyzeResult payload.
func (c *Client) poll(ctx context.Context, opURL string) ([]byte, error) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		st, err := c.fetchStatus(ctx, opURL)
		if err != nil {
			return nil, err
		}

		switch strings.ToLower(st.Status) {
		case "succeeded":
			if len(st.AnalyzeResult) == 0 {
				return nil, fmt.Errorf("operation succeeded without a result")
			}
			return st.AnalyzeResult, nil
		case "failed":
			if st.Error != nil {
				return nil, fmt.Errorf("analysis failed: %s: %s", st.Error.Code, st.Error.Message)
			}
			return nil, fmt.Errorf("analysis failed")
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for analysis: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) fetchStatus(ctx context.Context, opURL string) (*operationStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyzer http error: %w", err)
	}
	defer c.closeBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		return nil, fmt.Errorf("analyzer status %d: %s", resp.StatusCode, buf.String())
	}

	var st operationStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("decode operation status: %w", err)
	}
	return &st, nil
}

func (c *Client) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.log.Warn("analyzer response body close error", "error", err)
	}
}

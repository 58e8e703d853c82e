// Package agent talks to the external HR comparator service that scores
// resumes against a job description.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hr-comparator/internal/config"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"hr-comparator/internal/logger"
	"hr-comparator/internal/metrics"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxResponseBytes = 64 << 20

// Client calls POST {baseURL}/compare-batch. It never retries.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     *zap.Logger
}

// New returns the HTTP client, or the local mock when the agent is disabled.
func New(cfg config.AgentConfig, log *zap.Logger) ports.MatchingAgent {
	if !cfg.Enabled {
		log.Warn("AI agent disabled, using mock matcher")
		return NewMock(cfg.Version)
	}
	return NewClient(cfg.URL, cfg.Timeout(), log)
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		// The deadline comes from the request context, not a client-wide timeout.
		http: &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		log:  log.Named("agent"),
	}
}

func (c *Client) CompareBatch(ctx context.Context, req domain.CompareBatchRequest) (*domain.CompareBatchResponse, error) {
	start := time.Now()
	resp, err := c.compareBatch(ctx, req)

	outcome := "success"
	var agentErr *domain.AgentError
	if errors.As(err, &agentErr) {
		outcome = string(agentErr.Kind)
	}
	metrics.AgentRequestDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		c.log.Error("compare-batch failed",
			zap.String("workflow_id", req.WorkflowID),
			zap.Int("resumes", len(req.Resumes)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	c.log.Info("compare-batch succeeded",
		zap.String("workflow_id", req.WorkflowID),
		zap.Int("results", len(resp.Results)),
		zap.Int64("processing_time_ms", resp.ProcessingTimeMs))
	return resp, nil
}

func (c *Client) compareBatch(ctx context.Context, req domain.CompareBatchRequest) (*domain.CompareBatchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &domain.AgentError{Kind: domain.AgentErrProtocol, Cause: fmt.Errorf("encode request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/compare-batch", bytes.NewReader(payload))
	if err != nil {
		return nil, &domain.AgentError{Kind: domain.AgentErrConnection, Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	c.log.Debug("calling compare-batch",
		zap.String("url", httpReq.URL.String()),
		zap.String("workflow_id", req.WorkflowID),
		zap.Duration("timeout", c.timeout))

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, classify(ctx, err, c.timeout)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, classify(ctx, err, c.timeout)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &domain.AgentError{
			Kind:  domain.AgentErrProtocol,
			Cause: fmt.Errorf("unexpected status %d: %s", httpResp.StatusCode, logger.Truncate(string(body), 200)),
		}
	}

	if err := validateResponse(body); err != nil {
		return nil, &domain.AgentError{Kind: domain.AgentErrProtocol, Cause: err}
	}

	var out domain.CompareBatchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &domain.AgentError{Kind: domain.AgentErrProtocol, Cause: fmt.Errorf("decode response: %w", err)}
	}
	return &out, nil
}

// classify splits transport failures into timeouts and connection failures.
func classify(ctx context.Context, err error, timeout time.Duration) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.AgentError{Kind: domain.AgentErrTimeout, Cause: fmt.Errorf("no response within %s: %w", timeout, err)}
	}
	return &domain.AgentError{Kind: domain.AgentErrConnection, Cause: err}
}

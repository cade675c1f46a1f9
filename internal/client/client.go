package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	predictdto "github.com/agenticrag/backend/internal/dto/predict"
	"k8s.io/klog/v2"
)

const (
	DefaultServerURL     = "http://localhost:8000"
	DefaultTimeout       = 300 * time.Second
	DefaultHealthTimeout = 2 * time.Second
)

var (
	// ErrEmptyAnswer 服务端返回了空的 raw 字段
	ErrEmptyAnswer = errors.New("server returned an empty answer")
)

// APIError 服务端返回的非 2xx 响应
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned HTTP %d: %s", e.StatusCode, e.Message)
}

// Client predict 服务的 HTTP 客户端
// 每次调用只发一次请求，不重试
type Client struct {
	BaseURL       string
	HealthTimeout time.Duration
	HTTPClient    *http.Client
}

// New 创建客户端，timeout 作用于 predict 请求
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		HealthTimeout: DefaultHealthTimeout,
		HTTPClient:    &http.Client{Timeout: timeout},
	}
}

// Health 调用 GET /health，服务可用时返回 nil
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("server is not reachable at %s: %w", c.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode}
	}

	var health predictdto.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("invalid health response: %w", err)
	}
	if health.Status != predictdto.StatusHealthy {
		return fmt.Errorf("server reported status %q", health.Status)
	}
	return nil
}

// Predict 调用 POST /predict 并返回 raw 文本
func (c *Client) Predict(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(predictdto.PredictRequest{Query: query})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	klog.V(6).Infof("[Client] POST %s/predict: queryLength=%d", c.BaseURL, len(query))
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request to %s failed: %w", c.BaseURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	klog.V(6).Infof("[Client] 响应: status=%d, duration=%s, bodyLength=%d", resp.StatusCode, time.Since(start), len(data))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr predictdto.ErrorResponse
		_ = json.Unmarshal(data, &apiErr)
		return "", &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	var out predictdto.PredictResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("invalid predict response: %w", err)
	}
	if out.Output.Raw == "" {
		return "", ErrEmptyAnswer
	}
	return out.Output.Raw, nil
}

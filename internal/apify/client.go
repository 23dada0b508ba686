// Package apify talks to the hosted scraping platform used for Instagram posts.
package apify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/seancondron/ReelLoop/internal/models"
	"github.com/seancondron/ReelLoop/internal/utils"
)

const (
	DefaultBaseURL = "https://api.apify.com/v2"
	// DefaultInstagramActorID Instagram 抓取 actor
	DefaultInstagramActorID = "shu8hvrXbJbY3Eb9W"
)

// 运行状态 (平台返回值)
const (
	RunStatusReady     = "READY"
	RunStatusRunning   = "RUNNING"
	RunStatusSucceeded = "SUCCEEDED"
	RunStatusFailed    = "FAILED"
	RunStatusAborting  = "ABORTING"
	RunStatusAborted   = "ABORTED"
	RunStatusTimingOut = "TIMING-OUT"
	RunStatusTimedOut  = "TIMED-OUT"
)

// ClientConfig 客户端配置
type ClientConfig struct {
	BaseURL string
	Token   string
	ActorID string
	Timeout time.Duration
}

// Client 抓取平台 REST 客户端
type Client struct {
	http    *resty.Client
	actorID string
	logger  *zap.Logger
}

// RunInput 抓取任务输入
type RunInput struct {
	StartURLs   []string `json:"startUrls"`
	ResultsType string   `json:"resultsType"`
	MaxItems    int      `json:"maxItems"`
	DirectURLs  []string `json:"directUrls"`
}

// NewRunInput 单个帖子的任务输入
func NewRunInput(postURL string) RunInput {
	return RunInput{
		StartURLs:   []string{postURL},
		ResultsType: "posts",
		MaxItems:    1,
		DirectURLs:  []string{postURL},
	}
}

type envelope struct {
	Data struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

// NewClient 创建客户端
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ActorID == "" {
		cfg.ActorID = DefaultInstagramActorID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		httpClient.SetAuthToken(cfg.Token)
	}

	return &Client{
		http:    httpClient,
		actorID: cfg.ActorID,
		logger:  logger,
	}
}

// VerifyCredentials 校验令牌并确认 actor 可访问
func (c *Client) VerifyCredentials(ctx context.Context) error {
	// 1. 令牌本身是否有效
	resp, err := c.http.R().SetContext(ctx).Get("/users/me")
	if err != nil {
		return requestError(ctx, utils.ErrCredentialInvalid, "token check", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: token check returned %d: %s", utils.ErrCredentialInvalid, resp.StatusCode(), resp.String())
	}

	// 2. 令牌能否访问 actor
	resp, err = c.http.R().SetContext(ctx).Get("/acts/" + url.PathEscape(c.actorID))
	if err != nil {
		return requestError(ctx, utils.ErrCredentialInvalid, "actor probe", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: actor probe returned %d: %s", utils.ErrCredentialInvalid, resp.StatusCode(), resp.String())
	}
	return nil
}

// StartRun 提交抓取任务, 返回 run ID
func (c *Client) StartRun(ctx context.Context, input RunInput) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(input).
		Post(fmt.Sprintf("/acts/%s/runs", url.PathEscape(c.actorID)))
	if err != nil {
		return "", requestError(ctx, utils.ErrProviderRequestFailed, "submit run", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("%w: submit run returned %d: %s", utils.ErrProviderRequestFailed, resp.StatusCode(), resp.String())
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return "", fmt.Errorf("%w: decode run: %v", utils.ErrProviderRequestFailed, err)
	}
	if env.Data.ID == "" {
		return "", fmt.Errorf("%w: run id missing in response", utils.ErrProviderRequestFailed)
	}

	c.logger.Debug("Scrape run submitted", zap.String("run_id", env.Data.ID), zap.String("actor", c.actorID))
	return env.Data.ID, nil
}

// GetRunStatus 查询任务状态
func (c *Client) GetRunStatus(ctx context.Context, runID string) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/actor-runs/" + url.PathEscape(runID))
	if err != nil {
		return "", requestError(ctx, utils.ErrProviderRequestFailed, "run status", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("%w: run status returned %d", utils.ErrProviderRequestFailed, resp.StatusCode())
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return "", fmt.Errorf("%w: decode run status: %v", utils.ErrProviderRequestFailed, err)
	}
	return env.Data.Status, nil
}

// GetDatasetItems 读取任务结果集
func (c *Client) GetDatasetItems(ctx context.Context, runID string) ([]models.RawMetadata, error) {
	resp, err := c.http.R().SetContext(ctx).Get(fmt.Sprintf("/actor-runs/%s/dataset/items", url.PathEscape(runID)))
	if err != nil {
		return nil, requestError(ctx, utils.ErrProviderRequestFailed, "dataset items", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: dataset items returned %d", utils.ErrProviderRequestFailed, resp.StatusCode())
	}

	var items []models.RawMetadata
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("%w: decode dataset items: %v", utils.ErrProviderRequestFailed, err)
	}
	return items, nil
}

// AbortRun 中止任务
func (c *Client) AbortRun(ctx context.Context, runID string) error {
	resp, err := c.http.R().SetContext(ctx).Post(fmt.Sprintf("/actor-runs/%s/abort", url.PathEscape(runID)))
	if err != nil {
		return fmt.Errorf("abort run: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("abort run returned %d", resp.StatusCode())
	}
	return nil
}

// requestError 包装传输错误, 调用方取消或超时时只保留 ctx 错误
func requestError(ctx context.Context, kind error, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%w: %s: %w", kind, op, err)
}

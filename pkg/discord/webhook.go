package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Discord Webhook 客户端
// 只做一件事：把一段文本 POST 到指定 webhook URL

const defaultTimeout = 10 * time.Second

// Client Webhook 推送客户端
type Client struct {
	httpClient *http.Client
}

// NewClient 创建 Webhook 客户端
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type webhookPayload struct {
	Content string `json:"content"`
}

// Post 向 webhook URL 发送一条文本消息
func (c *Client) Post(ctx context.Context, webhookURL, content string) error {
	body, err := json.Marshal(webhookPayload{Content: content})
	if err != nil {
		return fmt.Errorf("序列化 webhook 消息失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("构造 webhook 请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("发送 webhook 失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook 返回异常状态: HTTP %d", resp.StatusCode)
	}

	return nil
}

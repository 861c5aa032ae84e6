package ai

import (
	"ai-news-posts/config"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sashabaranov/go-openai"
)

// Client 通过 OpenAI 兼容接口调用聊天模型，Anthropic 的兼容端点也走这里
type Client struct {
	name      string
	client    *openai.Client
	config    config.ProviderConfig
	available bool
	retries   int
	backoff   time.Duration
}

// NewClient 创建一个新的AI客户端，apiKey 为空时 Available 返回 false
func NewClient(name string, cfg config.ProviderConfig, apiKey string) *Client {
	// 创建OpenAI配置
	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &Client{
		name:      name,
		client:    openai.NewClientWithConfig(clientConfig),
		config:    cfg,
		available: apiKey != "",
		retries:   2,
		backoff:   2 * time.Second,
	}
}

// Name 返回服务名称
func (c *Client) Name() string { return c.name }

// Available 报告凭证是否已配置
func (c *Client) Available() bool { return c.available }

// Generate 生成帖子正文
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if !c.available {
		return "", ErrNotConfigured
	}

	// 创建聊天请求
	chatReq := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		MaxTokens: c.config.MaxTokens,
	}

	// 发送请求
	return c.generateText(ctx, chatReq)
}

// generateText 发送AI请求并获取生成的文本，超时由调用方的 ctx 控制
func (c *Client) generateText(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	log.Debugf("生成AI内容，服务: %s，模型: %s", c.name, req.Model)

	var lastErr error
	for i := 0; i <= c.retries; i++ {
		if i > 0 {
			log.Warnf("AI请求失败，正在重试 (%d/%d): %v", i, c.retries, lastErr)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("生成AI内容失败: %w", ctx.Err())
			case <-time.After(time.Duration(i) * c.backoff):
			}
		}

		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		// 检查响应是否有效
		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			lastErr = fmt.Errorf("AI响应中没有内容")
			continue
		}

		log.Debugf("AI内容生成成功，使用tokens: %d", resp.Usage.TotalTokens)
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	}

	return "", fmt.Errorf("生成AI内容失败: %w", lastErr)
}

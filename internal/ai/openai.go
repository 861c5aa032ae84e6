package ai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider 使用官方 openai-go SDK 调用聊天补全接口
type OpenAIProvider struct {
	model     string
	maxTokens int
	opts      []option.RequestOption
}

// NewOpenAIProvider 创建 OpenAI 文本服务，apiKey 为空时 Available 返回 false。
// maxTokens <= 0 时不限制输出长度。
func NewOpenAIProvider(model, baseURL, apiKey string, maxTokens int) *OpenAIProvider {
	p := &OpenAIProvider{model: model, maxTokens: maxTokens}
	if apiKey == "" {
		return p
	}
	p.opts = []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		p.opts = append(p.opts, option.WithBaseURL(baseURL))
	}
	return p
}

// Name 返回服务名称
func (p *OpenAIProvider) Name() string { return "openai" }

// Available 报告凭证是否已配置
func (p *OpenAIProvider) Available() bool { return len(p.opts) > 0 }

// Generate 生成帖子正文
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	if !p.Available() {
		return "", ErrNotConfigured
	}
	client := openai.NewClient(p.opts...)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
	}
	if p.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(p.maxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

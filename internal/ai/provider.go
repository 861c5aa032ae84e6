package ai

import (
	"ai-news-posts/internal/models"
	"context"
	"errors"
)

// ErrNotConfigured 服务缺少可用的 API 密钥
var ErrNotConfigured = errors.New("文本生成服务未配置")

// Request 一次文本生成请求
type Request struct {
	System  string
	Prompt  string
	Article models.Article
}

// Provider 定义文本生成服务接口
type Provider interface {
	// Name 返回服务名称
	Name() string

	// Available 报告凭证是否已配置
	Available() bool

	// Generate 根据提示生成帖子正文
	Generate(ctx context.Context, req Request) (string, error)
}

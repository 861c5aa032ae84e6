package ai

import (
	"ai-news-posts/config"
	"ai-news-posts/internal/credentials"
	"ai-news-posts/internal/models"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Result 生成结果及实际使用的服务
type Result struct {
	Text     string
	Provider string
}

// Generator 按顺序尝试各个文本服务，全部失败时使用模板
type Generator struct {
	providers []Provider
	fallback  Provider
	timeout   time.Duration
	logger    *log.Logger
}

// NewGenerator 创建帖子生成器，timeout 是单个服务调用的上限
func NewGenerator(providers []Provider, timeout time.Duration, logger *log.Logger) *Generator {
	return &Generator{
		providers: providers,
		fallback:  Template{},
		timeout:   timeout,
		logger:    logger,
	}
}

// Factory 根据配置中的服务顺序创建文本服务
func Factory(cfg *config.Config, creds *credentials.Store) ([]Provider, error) {
	var providers []Provider
	for _, name := range cfg.Providers {
		switch name {
		case "claude", "anthropic":
			providers = append(providers, NewClient("claude", cfg.Claude, creds.Lookup(credentials.Anthropic)))
		case "openai":
			providers = append(providers, NewOpenAIProvider(cfg.OpenAI.Model, cfg.OpenAI.BaseURL, creds.Lookup(credentials.OpenAI), cfg.OpenAI.MaxTokens))
		default:
			return nil, fmt.Errorf("未知的文本生成服务: %s", name)
		}
	}
	return providers, nil
}

// Generate 为文章生成帖子正文。远程服务依次尝试，最终由模板兜底，所以总能得到非空文本。
func (g *Generator) Generate(ctx context.Context, article models.Article) (Result, error) {
	req := Request{
		System:  SystemPrompt,
		Prompt:  BuildPrompt(article),
		Article: article,
	}

	for _, p := range g.providers {
		if !p.Available() {
			g.logger.Warn("文本服务未配置，跳过", "provider", p.Name())
			continue
		}
		text, err := g.call(ctx, p, req)
		if err != nil {
			g.logger.Warn("文本服务失败，尝试下一个", "provider", p.Name(), "err", err)
			continue
		}
		return Result{Text: text, Provider: p.Name()}, nil
	}

	text, err := g.fallback.Generate(ctx, req)
	if err != nil || strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("模板生成失败: %v", err)
	}
	g.logger.Info("使用模板生成帖子", "title", article.Title)
	return Result{Text: text, Provider: g.fallback.Name()}, nil
}

func (g *Generator) call(ctx context.Context, p Provider, req Request) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	text, err := p.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s 返回了空内容", p.Name())
	}
	return text, nil
}

package imagegen

import (
	"ai-news-posts/config"
	"ai-news-posts/internal/credentials"
	"ai-news-posts/internal/models"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ErrNotConfigured 图片服务缺少可用的 API 密钥
var ErrNotConfigured = errors.New("图片生成服务未配置")

// Provider 定义图片生成服务接口
type Provider interface {
	// Name 返回服务名称("openai" 或 "google")
	Name() string

	// Available 报告凭证是否已配置
	Available() bool

	// GenerateImage 根据提示生成图片，返回 PNG/JPEG 字节
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// Factory 创建所有远程图片服务
func Factory(cfg *config.Config, creds *credentials.Store) []Provider {
	return []Provider{
		NewDalle(cfg.Image.OpenAIBaseURL, cfg.Image.OpenAIModel, creds.Lookup(credentials.OpenAI)),
		NewGemini(cfg.Image.GeminiBaseURL, cfg.Image.GeminiModel, creds.Lookup(credentials.Google)),
	}
}

// Generator 先尝试首选服务，再尝试其他远程服务，最后绘制本地模板图片
type Generator struct {
	providers []Provider
	template  *TemplateRenderer
	tempDir   string
	timeout   time.Duration
	logger    *log.Logger
}

// NewGenerator 创建图片生成器，生成的临时文件放在 tempDir 下
func NewGenerator(providers []Provider, template *TemplateRenderer, tempDir string, timeout time.Duration, logger *log.Logger) *Generator {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Generator{
		providers: providers,
		template:  template,
		tempDir:   tempDir,
		timeout:   timeout,
		logger:    logger,
	}
}

// Generate 生成帖子配图并返回临时文件路径，调用方负责移动或删除该文件
func (g *Generator) Generate(ctx context.Context, article models.Article, postText, preferred string) (string, error) {
	prompt := BuildPrompt(article, postText)

	for _, p := range g.order(preferred) {
		if !p.Available() {
			g.logger.Warn("图片服务未配置，跳过", "provider", p.Name())
			continue
		}
		data, err := g.call(ctx, p, prompt)
		if err != nil {
			g.logger.Warn("图片服务失败，尝试下一个", "provider", p.Name(), "err", err)
			continue
		}
		path, err := g.writeTemp("ai_image", extensionFor(data), data)
		if err != nil {
			g.logger.Warn("保存图片失败，尝试下一个", "provider", p.Name(), "err", err)
			continue
		}
		g.logger.Info("图片生成成功", "provider", p.Name(), "path", path)
		return path, nil
	}

	data, err := g.template.Render(article)
	if err != nil {
		return "", fmt.Errorf("绘制模板图片失败: %w", err)
	}
	path, err := g.writeTemp("template", ".png", data)
	if err != nil {
		return "", err
	}
	g.logger.Info("使用模板图片", "path", path)
	return path, nil
}

// order 返回尝试顺序：首选服务在前，其余保持原有顺序
func (g *Generator) order(preferred string) []Provider {
	ordered := make([]Provider, 0, len(g.providers))
	for _, p := range g.providers {
		if p.Name() == preferred {
			ordered = append(ordered, p)
		}
	}
	for _, p := range g.providers {
		if p.Name() != preferred {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

func (g *Generator) call(ctx context.Context, p Provider, prompt string) ([]byte, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	data, err := p.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s 返回了空图片", p.Name())
	}
	return data, nil
}

func (g *Generator) writeTemp(kind, ext string, data []byte) (string, error) {
	name := fmt.Sprintf("temp_%s_%s%s", kind, uuid.New().String()[:8], ext)
	path := filepath.Join(g.tempDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("写入临时图片失败: %w", err)
	}
	return path, nil
}

// extensionFor 根据文件头判断图片格式
func extensionFor(data []byte) string {
	if len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return ".jpg"
	}
	return ".png"
}

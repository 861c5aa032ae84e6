// Package app 把配置、凭证和各个组件组装成可运行的服务
package app

import (
	"ai-news-posts/config"
	"ai-news-posts/internal/ai"
	"ai-news-posts/internal/automation"
	"ai-news-posts/internal/collector"
	"ai-news-posts/internal/credentials"
	"ai-news-posts/internal/crawler"
	"ai-news-posts/internal/imagegen"
	"ai-news-posts/internal/storage"
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// App 持有组装好的组件
type App struct {
	Config      *config.Config
	Logger      *log.Logger
	Credentials *credentials.Store
	RSS         *crawler.RSSClient
	Text        *ai.Generator
	Images      *imagegen.Generator
	Mirror      *storage.MinioClient
	Runner      *automation.Runner
}

// New 根据配置创建所有组件。MinIO 连接失败时只记录警告，帖子仍保存在本地。
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	creds := credentials.NewStore(cfg.EnvFile)

	textProviders, err := ai.Factory(cfg, creds)
	if err != nil {
		return nil, fmt.Errorf("创建文本生成服务失败: %w", err)
	}

	rss := crawler.NewRSSClient(cfg.Crawler.Timeout, cfg.Crawler.UserAgent)
	text := ai.NewGenerator(textProviders, cfg.Timeout, logger.WithPrefix("ai"))
	images := imagegen.NewGenerator(
		imagegen.Factory(cfg, creds),
		imagegen.NewTemplateRenderer(cfg.Image.FontPath),
		cfg.Paths.TempDir,
		cfg.Timeout,
		logger.WithPrefix("imagegen"),
	)

	a := &App{
		Config:      cfg,
		Logger:      logger,
		Credentials: creds,
		RSS:         rss,
		Text:        text,
		Images:      images,
	}

	var mirror storage.Mirror
	if cfg.MinIO.Enabled {
		client, err := storage.NewMinioClient(ctx, cfg.MinIO)
		if err != nil {
			logger.Warn("MinIO 不可用，仅保存到本地", "endpoint", cfg.MinIO.Endpoint, "err", err)
		} else {
			a.Mirror = client
			mirror = client
		}
	}

	a.Runner = automation.New(automation.Deps{
		Paths:   cfg.Paths,
		Fetcher: rss,
		Sources: func(adv config.AdvancedSources) []collector.Source {
			return collector.AdvancedSources(adv, rss, crawler.DefaultArxivAPI, logger)
		},
		Extractor: crawler.NewExtractor(cfg.Crawler.Timeout, cfg.Crawler.UserAgent),
		Text:      text,
		Images:    images,
		Store:     storage.NewLocal(cfg.Paths.OutputDir, mirror, logger.WithPrefix("storage")),
		Logger:    logger.WithPrefix("automation"),
	})

	for name, ok := range creds.Status() {
		logger.Debug("凭证状态", "name", name, "configured", ok)
	}
	return a, nil
}

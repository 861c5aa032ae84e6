package main

import (
	"ai-news-posts/config"
	"ai-news-posts/internal/app"
	"ai-news-posts/internal/logging"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
)

// runonce 执行一次自动化运行后退出，适合由外部调度器调用
func main() {
	cfg := config.LoadConfig()

	logger, closer, err := logging.New(cfg.Paths.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal("初始化日志失败", "err", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("初始化服务失败", "err", err)
	}

	report, err := application.Runner.RunOnce(ctx)
	if err != nil {
		logger.Error("运行失败", "err", err)
		closer.Close()
		os.Exit(1)
	}

	for _, post := range report.Posts {
		logger.Info("已生成帖子", "title", post.Title, "document", post.DocumentPath, "image", post.ImagePath, "mirror", post.MirrorURL, "provider", post.TextProvider)
	}
	for _, skip := range report.Skips {
		logger.Warn("已跳过", "link", skip.Link, "stage", skip.Stage, "reason", skip.Reason)
	}
	logger.Info("运行完成",
		"collected", report.Collected,
		"selected", report.Selected,
		"posts", len(report.Posts),
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
}

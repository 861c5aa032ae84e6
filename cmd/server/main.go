package main

import (
	"ai-news-posts/config"
	"ai-news-posts/internal/api"
	"ai-news-posts/internal/app"
	"ai-news-posts/internal/feeds"
	"ai-news-posts/internal/logging"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

func main() {
	// 加载配置
	cfg := config.LoadConfig()

	logger, closer, err := logging.New(cfg.Paths.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal("初始化日志失败", "err", err)
	}
	defer closer.Close()
	logger.Info("启动 AI 新闻帖子服务")

	ctx := context.Background()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("初始化服务失败", "err", err)
	}

	registry, err := feeds.Open(cfg.Paths.FeedsFile)
	if err != nil {
		logger.Fatal("读取订阅源失败", "err", err)
	}

	// 创建API服务器
	server := api.NewServer(cfg, application.Runner, application.RSS, registry, logger)

	// 创建定时任务，执行时间来自自动化配置
	c := cron.New(cron.WithSeconds())
	if err := schedule(c, cfg, server); err != nil {
		logger.Warn("定时任务未启动", "err", err)
	} else {
		c.Start()
		defer c.Stop()
		logger.Info("定时任务已启动")
	}

	// 创建通道接收系统信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// 启动服务器（非阻塞）
	go func() {
		logger.Info("服务器正在监听", "port", cfg.Server.Port)
		if err := server.Run(); err != nil {
			logger.Fatal("服务器运行失败", "err", err)
		}
	}()

	// 等待退出信号
	<-quit
	logger.Info("收到退出信号，正在关闭服务")
}

func schedule(c *cron.Cron, cfg *config.Config, server *api.Server) error {
	automation, err := config.LoadAutomation(cfg.Paths.AutomationConfig)
	if err != nil {
		return err
	}
	spec, err := automation.Schedule.CronSpec()
	if err != nil {
		return err
	}

	_, err = c.AddFunc(spec, func() {
		// 每次触发时重新读取配置，enabled 可以在运行期间修改
		current, err := config.LoadAutomation(cfg.Paths.AutomationConfig)
		if err != nil || !current.Schedule.Enabled {
			return
		}
		server.StartRun()
	})
	return err
}

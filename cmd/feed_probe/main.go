package main

import (
	"ai-news-posts/config"
	"ai-news-posts/internal/app"
	"ai-news-posts/internal/feeds"
	"ai-news-posts/internal/logging"
	"context"
	"flag"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// feed_probe 逐个检查订阅源，并可以打印当前的候选文章排名
func main() {
	single := flag.String("url", "", "只检查这一个订阅源")
	showCandidates := flag.Bool("candidates", false, "打印评分后的候选文章")
	flag.Parse()

	cfg := config.LoadConfig()
	logger, closer, err := logging.New("", cfg.LogLevel)
	if err != nil {
		log.Fatal("初始化日志失败", "err", err)
	}
	defer closer.Close()

	application, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("初始化服务失败", "err", err)
	}

	if *single != "" {
		if !probe(application, logger, *single) {
			closer.Close()
			os.Exit(1)
		}
		return
	}

	var configured []string
	if automation, err := config.LoadAutomation(cfg.Paths.AutomationConfig); err != nil {
		logger.Warn("读取自动化配置失败，只检查订阅源文件", "err", err)
	} else {
		configured = automation.AISources.RSSFeeds
	}
	registered, err := feeds.Load(cfg.Paths.FeedsFile)
	if err != nil {
		logger.Fatal("读取订阅源文件失败", "err", err)
	}

	urls := feeds.Merge(configured, registered)
	if len(urls) == 0 {
		logger.Warn("没有可检查的订阅源")
	}
	ok := 0
	for _, u := range urls {
		if probe(application, logger, u) {
			ok++
		}
	}
	logger.Info("检查完成", "ok", ok, "total", len(urls))

	if !*showCandidates {
		return
	}
	articles, err := application.Runner.Candidates(context.Background())
	if err != nil {
		logger.Fatal("获取候选文章失败", "err", err)
	}
	for i, a := range articles {
		logger.Infof("%2d. [%.3f] %s (%s)", i+1, a.Score, a.Title, a.SourceDomain)
	}
}

func probe(application *app.App, logger *log.Logger, feedURL string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), application.Config.Crawler.Timeout)
	defer cancel()

	start := time.Now()
	info, err := application.RSS.Probe(ctx, feedURL)
	if err != nil {
		logger.Errorf("❌ %s: %v", feedURL, err)
		return false
	}
	logger.Infof("✅ %s: %s, %d 条, 耗时: %v", feedURL, info.Title, info.Entries, time.Since(start))
	return true
}

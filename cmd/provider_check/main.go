package main

import (
	"ai-news-posts/config"
	"ai-news-posts/internal/ai"
	"ai-news-posts/internal/credentials"
	"ai-news-posts/internal/crawler"
	"ai-news-posts/internal/imagegen"
	"ai-news-posts/internal/models"
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// provider_check 检查凭证、订阅源和各个生成服务是否可用
func main() {
	feedURL := flag.String("feed", "https://www.wired.com/feed/tag/ai/latest/rss", "用于测试的订阅源")
	withImages := flag.Bool("images", false, "同时测试图片生成(会产生费用)")
	flag.Parse()

	// 加载配置
	cfg := config.LoadConfig()
	creds := credentials.NewStore(cfg.EnvFile)

	log.Info("凭证状态")
	status := creds.Status()
	names := make([]string, 0, len(status))
	for name := range status {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !status[name] {
			log.Infof("❌ %s 未配置", name)
			continue
		}
		if err := credentials.ValidateFormat(name, creds.Lookup(name)); err != nil {
			log.Warnf("⚠️ %s 已配置，但格式可疑: %v", name, err)
			continue
		}
		log.Infof("✅ %s 已配置，格式正确", name)
	}

	article := models.Article{
		Title:   "Provider check: a new open model tops reasoning benchmarks",
		Link:    "https://example.com/provider-check",
		Summary: "A short test article used to verify that the text and image providers respond.",
	}

	// 测试订阅源
	rss := crawler.NewRSSClient(cfg.Crawler.Timeout, cfg.Crawler.UserAgent)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Crawler.Timeout)
	info, err := rss.Probe(ctx, *feedURL)
	cancel()
	if err != nil {
		log.Errorf("❌ 订阅源 %s 不可用: %v", *feedURL, err)
	} else {
		log.Infof("✅ 订阅源 %s 可用: %s, %d 条", *feedURL, info.Title, info.Entries)
	}

	// 测试文本服务
	providers, err := ai.Factory(cfg, creds)
	if err != nil {
		log.Fatal("创建文本生成服务失败", "err", err)
	}
	for _, p := range providers {
		if !p.Available() {
			log.Infof("❌ %s 跳过: 未配置密钥", p.Name())
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		start := time.Now()
		text, err := p.Generate(ctx, ai.Request{System: ai.SystemPrompt, Prompt: ai.BuildPrompt(article), Article: article})
		cancel()
		if err != nil {
			log.Errorf("❌ %s 生成失败: %v", p.Name(), err)
			continue
		}
		log.Infof("✅ %s 生成成功! %d 字符, 耗时: %v", p.Name(), len(text), time.Since(start))
	}

	if !*withImages {
		return
	}

	// 测试图片服务
	prompt := imagegen.BuildPrompt(article, "")
	for _, p := range imagegen.Factory(cfg, creds) {
		if !p.Available() {
			log.Infof("❌ %s 图片跳过: 未配置密钥", p.Name())
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		start := time.Now()
		data, err := p.GenerateImage(ctx, prompt)
		cancel()
		if err != nil {
			log.Errorf("❌ %s 图片生成失败: %v", p.Name(), err)
			continue
		}
		filename := fmt.Sprintf("test_%s.img", p.Name())
		if err := os.WriteFile(filename, data, 0o644); err != nil {
			log.Errorf("❌ 保存图片失败: %v", err)
			continue
		}
		log.Infof("✅ %s 图片生成成功! 文件: %s, 大小: %d 字节, 耗时: %v", p.Name(), filename, len(data), time.Since(start))
	}

	// 本地模板图片
	data, err := imagegen.NewTemplateRenderer(cfg.Image.FontPath).Render(article)
	if err != nil {
		log.Errorf("❌ 模板图片绘制失败: %v", err)
		return
	}
	if err := os.WriteFile("test_template.png", data, 0o644); err == nil {
		log.Infof("✅ 模板图片已保存: test_template.png, 大小: %d 字节", len(data))
	}
}

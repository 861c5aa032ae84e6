package main

import (
	"ai-news-posts/config"
	"ai-news-posts/internal/storage"
	"context"
	"flag"
	"time"

	"github.com/charmbracelet/log"
)

// purge_mirror 删除 MinIO 中某一天上传的帖子副本
func main() {
	date := flag.String("date", time.Now().Format("2006-01-02"), "要删除的日期(YYYY-MM-DD)")
	dryRun := flag.Bool("dry-run", false, "只列出文件，不删除")
	flag.Parse()

	day, err := time.Parse("2006-01-02", *date)
	if err != nil {
		log.Fatal("无效的日期", "date", *date, "err", err)
	}

	// 加载配置
	cfg := config.LoadConfig()

	// 创建上下文
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// 创建MinIO客户端
	minioClient, err := storage.NewMinioClient(ctx, cfg.MinIO)
	if err != nil {
		log.Fatal("创建MinIO客户端失败", "err", err)
	}

	prefix := storage.DayPrefix(day)
	objects, err := minioClient.ListFiles(ctx, prefix)
	if err != nil {
		log.Fatal("列出文件失败", "prefix", prefix, "err", err)
	}
	if len(objects) == 0 {
		log.Info("没有需要删除的文件", "prefix", prefix)
		return
	}

	deleted := 0
	for _, objectName := range objects {
		if *dryRun {
			log.Info("将删除", "object", objectName)
			continue
		}
		if err := minioClient.DeleteFile(ctx, objectName); err != nil {
			log.Error("删除文件失败", "object", objectName, "err", err)
			continue
		}
		deleted++
	}
	log.Info("删除完成", "prefix", prefix, "deleted", deleted, "total", len(objects))
}

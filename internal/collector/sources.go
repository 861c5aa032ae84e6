package collector

import (
	"ai-news-posts/config"
	"ai-news-posts/internal/crawler"

	"github.com/charmbracelet/log"
)

// AdvancedSources 根据配置创建附加来源。社交媒体和新闻API来源尚未接入，只记录警告。
func AdvancedSources(cfg config.AdvancedSources, rss *crawler.RSSClient, arxivAPI string, logger *log.Logger) []Source {
	var sources []Source
	if cfg.AcademicPapers.Enabled {
		categories := cfg.AcademicPapers.ArxivCategories
		if len(categories) == 0 {
			categories = []string{"cs.AI"}
		}
		sources = append(sources, crawler.NewArxivSource(rss, arxivAPI, categories, cfg.AcademicPapers.MaxPapersPerDay))
	}
	if cfg.SocialMedia.Enabled {
		logger.Warn("社交媒体来源尚未实现，已忽略")
	}
	if cfg.APISources.GoogleNewsAPI {
		logger.Warn("Google News API 来源尚未实现，已忽略")
	}
	return sources
}

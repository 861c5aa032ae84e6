package crawler

import (
	"ai-news-posts/internal/models"
	"context"
	"fmt"
	"net/url"
)

// DefaultArxivAPI arXiv 查询接口
const DefaultArxivAPI = "http://export.arxiv.org/api/query"

// ArxivSource 按分类获取 arXiv 最新论文
type ArxivSource struct {
	rss        *RSSClient
	baseURL    string
	categories []string
	max        int
}

// NewArxivSource 创建 arXiv 来源，max 为每次运行最多返回的论文数
func NewArxivSource(rss *RSSClient, baseURL string, categories []string, max int) *ArxivSource {
	if baseURL == "" {
		baseURL = DefaultArxivAPI
	}
	return &ArxivSource{rss: rss, baseURL: baseURL, categories: categories, max: max}
}

// Name 来源名称
func (a *ArxivSource) Name() string { return "arxiv" }

// Fetch 依次查询每个分类，论文总数不超过 max
func (a *ArxivSource) Fetch(ctx context.Context) ([]models.Article, error) {
	var (
		papers  []models.Article
		lastErr error
	)
	for _, category := range a.categories {
		if a.max > 0 && len(papers) >= a.max {
			break
		}
		items, err := a.rss.FetchFeed(ctx, a.queryURL(category))
		if err != nil {
			lastErr = fmt.Errorf("获取arXiv分类 %s 失败: %w", category, err)
			continue
		}
		for _, item := range items {
			item.Source = "arXiv " + category
			item.SourceDomain = "arxiv.org"
			papers = append(papers, item)
			if a.max > 0 && len(papers) >= a.max {
				break
			}
		}
	}
	if len(papers) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return papers, nil
}

func (a *ArxivSource) queryURL(category string) string {
	q := url.Values{}
	q.Set("search_query", "cat:"+category)
	q.Set("start", "0")
	q.Set("max_results", "5")
	q.Set("sortBy", "submittedDate")
	q.Set("sortOrder", "descending")
	return a.baseURL + "?" + q.Encode()
}

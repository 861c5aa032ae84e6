package crawler

import (
	"ai-news-posts/internal/models"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// ErrEmptyFeed 订阅源可以访问但没有任何条目
var ErrEmptyFeed = errors.New("订阅源没有条目")

// RSSClient 抓取并解析 RSS/Atom 订阅源
type RSSClient struct {
	client    *http.Client
	userAgent string
}

// FeedInfo 订阅源探测结果
type FeedInfo struct {
	Title   string `json:"title"`
	Entries int    `json:"entries"`
}

// NewRSSClient 创建订阅源客户端
func NewRSSClient(timeout time.Duration, userAgent string) *RSSClient {
	return &RSSClient{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// FetchFeed 获取订阅源中的全部条目，保持订阅源中的顺序
func (c *RSSClient) FetchFeed(ctx context.Context, feedURL string) ([]models.Article, error) {
	feed, err := c.parse(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	return ConvertFeed(feed, feedURL), nil
}

// Probe 检查订阅源是否可用
func (c *RSSClient) Probe(ctx context.Context, feedURL string) (FeedInfo, error) {
	feed, err := c.parse(ctx, feedURL)
	if err != nil {
		return FeedInfo{}, err
	}
	if len(feed.Items) == 0 {
		return FeedInfo{Title: feed.Title}, ErrEmptyFeed
	}
	return FeedInfo{Title: feed.Title, Entries: len(feed.Items)}, nil
}

func (c *RSSClient) parse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取订阅源失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("获取订阅源失败: HTTP %s", resp.Status)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("解析订阅源失败: %w", err)
	}
	return feed, nil
}

// ConvertFeed 将 gofeed 条目转换为文章，摘要和正文中的 HTML 会被去掉
func ConvertFeed(feed *gofeed.Feed, feedURL string) []models.Article {
	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = models.DomainOf(feedURL)
	}

	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		articles = append(articles, convertItem(item, source))
	}
	return articles
}

func convertItem(item *gofeed.Item, source string) models.Article {
	var published *time.Time
	if item.PublishedParsed != nil {
		t := *item.PublishedParsed
		published = &t
	} else if item.UpdatedParsed != nil {
		t := *item.UpdatedParsed
		published = &t
	}

	link := strings.TrimSpace(item.Link)
	return models.Article{
		Title:        strings.TrimSpace(item.Title),
		Link:         link,
		Summary:      HTMLToText(item.Description),
		Content:      HTMLToText(item.Content),
		Published:    published,
		Source:       source,
		SourceDomain: models.DomainOf(link),
	}
}

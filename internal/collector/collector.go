package collector

import (
	"ai-news-posts/config"
	"ai-news-posts/internal/models"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// FeedFetcher 获取单个订阅源的全部条目
type FeedFetcher interface {
	FetchFeed(ctx context.Context, feedURL string) ([]models.Article, error)
}

// Source 订阅源之外的附加来源(如 arXiv)
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Article, error)
}

// Seen 查询文章链接是否已经处理过
type Seen interface {
	Contains(link string) bool
}

// Collector 收集、过滤并排序候选文章
type Collector struct {
	fetcher  FeedFetcher
	criteria config.SelectionCriteria
	seen     Seen
	sources  []Source
	limiter  *rate.Limiter
	logger   *log.Logger
	now      func() time.Time
}

// Option 配置 Collector
type Option func(*Collector)

// WithSeen 跳过已处理过的链接
func WithSeen(seen Seen) Option {
	return func(c *Collector) { c.seen = seen }
}

// WithSources 追加附加来源
func WithSources(sources ...Source) Option {
	return func(c *Collector) { c.sources = append(c.sources, sources...) }
}

// WithClock 替换当前时间函数
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// New 创建文章收集器
func New(fetcher FeedFetcher, criteria config.SelectionCriteria, logger *log.Logger, opts ...Option) *Collector {
	c := &Collector{
		fetcher:  fetcher,
		criteria: criteria,
		logger:   logger,
		now:      time.Now,
	}
	if criteria.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(criteria.RequestsPerSecond), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectAll 依次抓取所有订阅源。每个订阅源只取前 N 个条目，
// 单个订阅源失败只记录日志，不影响其他订阅源。
func (c *Collector) CollectAll(ctx context.Context, feeds []string) []models.Article {
	var (
		out    []models.Article
		hashes = make(map[string]struct{})
	)

	accept := func(items []models.Article, origin string) {
		kept := 0
		for _, a := range items {
			id := identity(a)
			if _, dup := hashes[id]; dup {
				continue
			}
			hashes[id] = struct{}{}

			if c.seen != nil && c.seen.Contains(a.Link) {
				c.logger.Debug("跳过已处理文章", "link", a.Link)
				continue
			}
			if !c.PassesQualityFilters(a) {
				continue
			}
			out = append(out, a)
			kept++
		}
		c.logger.Info("订阅源处理完成", "source", origin, "entries", len(items), "kept", kept)
	}

	for _, feedURL := range feeds {
		if err := c.wait(ctx); err != nil {
			c.logger.Warn("收集被中断", "err", err)
			return out
		}
		items, err := c.fetcher.FetchFeed(ctx, feedURL)
		if err != nil {
			c.logger.Error("获取订阅源失败", "feed", feedURL, "err", err)
			continue
		}
		if limit := c.criteria.MaxArticlesPerSource; limit > 0 && len(items) > limit {
			items = items[:limit]
		}
		accept(items, feedURL)
	}

	for _, src := range c.sources {
		if err := c.wait(ctx); err != nil {
			c.logger.Warn("收集被中断", "err", err)
			return out
		}
		items, err := src.Fetch(ctx)
		if err != nil {
			c.logger.Error("获取附加来源失败", "source", src.Name(), "err", err)
			continue
		}
		accept(items, src.Name())
	}

	c.logger.Info("收集完成", "candidates", len(out))
	return out
}

func (c *Collector) wait(ctx context.Context) error {
	if c.limiter == nil {
		return ctx.Err()
	}
	return c.limiter.Wait(ctx)
}

// identity 使用标题和链接计算文章指纹
func identity(a models.Article) string {
	sum := sha256.Sum256([]byte(a.Title + a.Link))
	return hex.EncodeToString(sum[:])
}

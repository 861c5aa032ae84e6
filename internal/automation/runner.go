package automation

import (
	"ai-news-posts/config"
	"ai-news-posts/internal/ai"
	"ai-news-posts/internal/collector"
	"ai-news-posts/internal/feeds"
	"ai-news-posts/internal/ledger"
	"ai-news-posts/internal/models"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ErrRunInProgress 已有运行或手动生成正在进行
var ErrRunInProgress = errors.New("已有任务正在运行")

// 运行状态，用于日志和跳过记录
const (
	StateInit          = "INIT"
	StateCollect       = "COLLECT"
	StateSelect        = "FILTER_SCORE_SELECT"
	StateGenerateText  = "GENERATE_TEXT"
	StateGenerateImage = "GENERATE_IMAGE"
	StatePersist       = "PERSIST"
	StateRecord        = "RECORD_IN_LEDGER"
	StateDone          = "DONE"
)

// TextGenerator 生成帖子正文
type TextGenerator interface {
	Generate(ctx context.Context, article models.Article) (ai.Result, error)
}

// ImageGenerator 生成配图并返回临时文件路径
type ImageGenerator interface {
	Generate(ctx context.Context, article models.Article, postText, preferred string) (string, error)
}

// Store 保存帖子
type Store interface {
	Save(ctx context.Context, text string, article models.Article, imagePath, format string) (models.GeneratedPost, error)
}

// Extractor 获取文章全文
type Extractor interface {
	Extract(ctx context.Context, pageURL string) (string, error)
}

// SourceBuilder 根据配置创建附加来源
type SourceBuilder func(cfg config.AdvancedSources) []collector.Source

// Deps Runner 依赖的组件
type Deps struct {
	Paths     config.PathsConfig
	Fetcher   collector.FeedFetcher
	Sources   SourceBuilder
	Extractor Extractor
	Text      TextGenerator
	Images    ImageGenerator
	Store     Store
	Logger    *log.Logger
}

// Runner 执行一次完整的 收集 → 评分 → 生成 → 保存 流程
type Runner struct {
	deps   Deps
	logger *log.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// New 创建运行器
func New(deps Deps) *Runner {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{deps: deps, logger: logger, now: time.Now}
}

// ConfigPath 自动化配置文件路径
func (r *Runner) ConfigPath() string { return r.deps.Paths.AutomationConfig }

// FeedsPath 订阅源文件路径
func (r *Runner) FeedsPath() string { return r.deps.Paths.FeedsFile }

// RunOnce 执行一次自动化运行。只有配置错误会返回 error，
// 单篇文章的失败记录在报告中并继续处理下一篇。
func (r *Runner) RunOnce(ctx context.Context) (models.RunReport, error) {
	if !r.mu.TryLock() {
		return models.RunReport{}, ErrRunInProgress
	}
	defer r.mu.Unlock()

	report := models.RunReport{StartedAt: r.now()}
	r.state(StateInit)

	cfg, led, feedList, err := r.prepare()
	if err != nil {
		return report, err
	}

	r.state(StateCollect, "feeds", len(feedList))
	c := r.collector(cfg, led)
	candidates := c.CollectAll(ctx, feedList)
	report.Collected = len(candidates)
	if len(candidates) == 0 {
		r.logger.Warn("没有找到符合条件的文章，本次运行结束")
		report.FinishedAt = r.now()
		r.state(StateDone)
		return report, nil
	}

	r.state(StateSelect)
	selected := collector.SelectTop(c.ScoreArticles(candidates), cfg.Schedule.PostsPerDay)
	report.Selected = len(selected)
	for i, a := range selected {
		r.logger.Info("已选文章", "rank", i+1, "score", fmt.Sprintf("%.3f", a.Score), "title", a.Title)
	}

	for _, a := range selected {
		post, skip := r.process(ctx, cfg, led, a)
		if post != nil {
			report.Posts = append(report.Posts, *post)
		}
		if skip != nil {
			report.Skips = append(report.Skips, *skip)
		}
	}

	report.FinishedAt = r.now()
	r.state(StateDone)
	r.logger.Info("运行完成", "posts", len(report.Posts), "skipped", len(report.Skips))
	return report, nil
}

// Candidates 返回按得分排序的候选文章，不生成任何内容
func (r *Runner) Candidates(ctx context.Context) ([]models.Article, error) {
	cfg, led, feedList, err := r.prepare()
	if err != nil {
		return nil, err
	}
	c := r.collector(cfg, led)
	return c.ScoreArticles(c.CollectAll(ctx, feedList)), nil
}

// GenerateFor 为手动选择的文章生成并保存帖子
func (r *Runner) GenerateFor(ctx context.Context, article models.Article) (models.GeneratedPost, error) {
	if !r.mu.TryLock() {
		return models.GeneratedPost{}, ErrRunInProgress
	}
	defer r.mu.Unlock()

	cfg, led, _, err := r.prepare()
	if err != nil {
		return models.GeneratedPost{}, err
	}
	if article.SourceDomain == "" {
		article.SourceDomain = models.DomainOf(article.Link)
	}
	if led.Contains(article.Link) {
		r.logger.Warn("文章已处理过，仍按手动请求生成", "link", article.Link)
	}

	post, skip := r.process(ctx, cfg, led, article)
	if post == nil {
		return models.GeneratedPost{}, fmt.Errorf("%s: %s", skip.Stage, skip.Reason)
	}
	return *post, nil
}

// prepare 读取配置、已处理列表和订阅源；这里的错误都视为配置错误
func (r *Runner) prepare() (*config.AutomationConfig, *ledger.Ledger, []string, error) {
	cfg, err := config.LoadAutomation(r.deps.Paths.AutomationConfig)
	if err != nil {
		r.logger.Error("加载配置失败", "path", r.deps.Paths.AutomationConfig, "err", err)
		return nil, nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	led, err := ledger.Load(r.deps.Paths.ProcessedFile)
	if err != nil {
		return nil, nil, nil, err
	}
	fileFeeds, err := feeds.Load(r.deps.Paths.FeedsFile)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, led, feeds.Merge(cfg.AISources.RSSFeeds, fileFeeds), nil
}

func (r *Runner) collector(cfg *config.AutomationConfig, led *ledger.Ledger) *collector.Collector {
	opts := []collector.Option{collector.WithSeen(led), collector.WithClock(r.now)}
	if r.deps.Sources != nil {
		opts = append(opts, collector.WithSources(r.deps.Sources(cfg.AdvancedSources)...))
	}
	return collector.New(r.deps.Fetcher, cfg.SelectionCriteria, r.logger.WithPrefix("collector"), opts...)
}

// process 处理单篇文章；保存成功后才记入已处理列表
func (r *Runner) process(ctx context.Context, cfg *config.AutomationConfig, led *ledger.Ledger, a models.Article) (*models.GeneratedPost, *models.Skip) {
	skip := func(stage, reason string) *models.Skip {
		r.logger.Warn("跳过文章", "stage", stage, "link", a.Link, "reason", reason)
		return &models.Skip{Link: a.Link, Stage: stage, Reason: reason}
	}

	r.state(StateGenerateText, "title", a.Title)
	input := r.withBody(ctx, cfg, a)
	if strings.TrimSpace(input.Summary) == "" && strings.TrimSpace(input.Content) == "" {
		return nil, skip(StateGenerateText, "文章没有可用的正文或摘要")
	}
	result, err := r.deps.Text.Generate(ctx, input)
	if err != nil || strings.TrimSpace(result.Text) == "" {
		return nil, skip(StateGenerateText, fmt.Sprintf("文本生成失败: %v", err))
	}
	r.logger.Info("文本生成完成", "provider", result.Provider, "chars", len(result.Text))

	r.state(StateGenerateImage)
	imagePath, err := r.deps.Images.Generate(ctx, input, result.Text, cfg.Generation.ImageProvider)
	if err != nil {
		r.logger.Warn("图片生成失败，帖子将不带图片保存", "err", err)
		imagePath = ""
	}

	r.state(StatePersist)
	post, err := r.deps.Store.Save(ctx, result.Text, a, imagePath, cfg.Generation.DocumentFormat)
	if err != nil {
		return nil, skip(StatePersist, err.Error())
	}
	post.TextProvider = result.Provider

	r.state(StateRecord)
	if err := led.Record(a.Link); err != nil {
		r.logger.Error("记录已处理文章失败，下次运行可能重复生成", "link", a.Link, "err", err)
		return &post, &models.Skip{Link: a.Link, Stage: StateRecord, Reason: err.Error()}
	}
	return &post, nil
}

// withBody 返回带全文的文章副本；取不到全文时保留订阅源中的内容
func (r *Runner) withBody(ctx context.Context, cfg *config.AutomationConfig, a models.Article) models.Article {
	if !cfg.SelectionCriteria.FetchFullText || r.deps.Extractor == nil || a.Link == "" {
		return a
	}
	text, err := r.deps.Extractor.Extract(ctx, a.Link)
	if err != nil {
		r.logger.Warn("获取全文失败，使用订阅源摘要", "link", a.Link, "err", err)
		return a
	}
	a.Content = text
	return a
}

func (r *Runner) state(name string, kv ...interface{}) {
	r.logger.Info("状态切换", append([]interface{}{"state", name}, kv...)...)
}

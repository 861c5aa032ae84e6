package config

import (
	"ai-news-posts/internal/fsutil"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingSection 配置文件缺少必需的段落
var ErrMissingSection = errors.New("配置缺少必需段落")

// AutomationConfig 自动化任务配置文件(automation_config.json)
type AutomationConfig struct {
	Schedule          *Schedule         `json:"schedule" yaml:"schedule"`
	AISources         *AISources        `json:"ai_sources" yaml:"ai_sources"`
	SelectionCriteria SelectionCriteria `json:"selection_criteria" yaml:"selection_criteria"`
	AdvancedSources   AdvancedSources   `json:"advanced_sources" yaml:"advanced_sources"`
	Generation        Generation        `json:"generation" yaml:"generation"`
}

// Schedule 每日执行计划
type Schedule struct {
	ExecutionTime string `json:"execution_time" yaml:"execution_time"`
	PostsPerDay   int    `json:"posts_per_day" yaml:"posts_per_day"`
	Enabled       bool   `json:"enabled" yaml:"enabled"`
}

// AISources 文章来源
type AISources struct {
	RSSFeeds []string `json:"rss_feeds" yaml:"rss_feeds"`
}

// SelectionCriteria 文章筛选与评分参数
type SelectionCriteria struct {
	AIKeywords           []string `json:"ai_keywords" yaml:"ai_keywords"`
	ExcludeKeywords      []string `json:"exclude_keywords" yaml:"exclude_keywords"`
	MinArticleLength     int      `json:"min_article_length" yaml:"min_article_length"`
	FreshnessWeight      float64  `json:"freshness_weight" yaml:"freshness_weight"`
	RelevanceWeight      float64  `json:"relevance_weight" yaml:"relevance_weight"`
	MaxArticlesPerSource int      `json:"max_articles_per_source" yaml:"max_articles_per_source"`
	FetchFullText        bool     `json:"fetch_full_text" yaml:"fetch_full_text"`
	RequestsPerSecond    float64  `json:"requests_per_second" yaml:"requests_per_second"`
}

// AdvancedSources 可选的附加来源
type AdvancedSources struct {
	AcademicPapers AcademicPapers `json:"academic_papers" yaml:"academic_papers"`
	SocialMedia    Toggle         `json:"social_media" yaml:"social_media"`
	APISources     APISources     `json:"api_sources" yaml:"api_sources"`
}

// AcademicPapers arXiv 论文来源
type AcademicPapers struct {
	Enabled         bool     `json:"enabled" yaml:"enabled"`
	ArxivCategories []string `json:"arxiv_categories" yaml:"arxiv_categories"`
	MaxPapersPerDay int      `json:"max_papers_per_day" yaml:"max_papers_per_day"`
}

// Toggle 仅包含开关的来源
type Toggle struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// APISources 第三方新闻API
type APISources struct {
	GoogleNewsAPI bool `json:"google_news_api" yaml:"google_news_api"`
}

// Generation 内容生成选项
type Generation struct {
	ImageProvider  string `json:"image_provider" yaml:"image_provider"`
	DocumentFormat string `json:"document_format" yaml:"document_format"`
}

// DefaultSelectionCriteria 返回筛选参数的默认值
func DefaultSelectionCriteria() SelectionCriteria {
	return SelectionCriteria{
		AIKeywords: []string{
			"artificial intelligence", "machine learning", "deep learning",
			"neural network", "llm", "gpt", "generative ai", "chatbot",
		},
		ExcludeKeywords:      []string{"sponsored", "advertisement"},
		MinArticleLength:     200,
		FreshnessWeight:      0.4,
		RelevanceWeight:      0.6,
		MaxArticlesPerSource: 5,
		FetchFullText:        true,
		RequestsPerSecond:    2,
	}
}

// DefaultAutomation 返回重置用的默认配置
func DefaultAutomation() *AutomationConfig {
	return &AutomationConfig{
		Schedule: &Schedule{ExecutionTime: "08:00", PostsPerDay: 2, Enabled: true},
		AISources: &AISources{RSSFeeds: []string{
			"https://feeds.feedburner.com/oreilly/radar",
			"https://www.wired.com/feed/tag/ai/latest/rss",
		}},
		SelectionCriteria: DefaultSelectionCriteria(),
		AdvancedSources: AdvancedSources{
			AcademicPapers: AcademicPapers{ArxivCategories: []string{"cs.AI", "cs.LG"}, MaxPapersPerDay: 2},
		},
		Generation: Generation{ImageProvider: "openai", DocumentFormat: "markdown"},
	}
}

// LoadAutomation 读取并校验自动化配置，根据扩展名选择 JSON 或 YAML
func LoadAutomation(path string) (*AutomationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 先填入默认值，文件中缺失的可选字段保持默认
	cfg := &AutomationConfig{
		SelectionCriteria: DefaultSelectionCriteria(),
		AdvancedSources:   DefaultAutomation().AdvancedSources,
		Generation:        DefaultAutomation().Generation,
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验必需段落并补齐默认值
func (c *AutomationConfig) Validate() error {
	if c.Schedule == nil {
		return fmt.Errorf("%w: schedule", ErrMissingSection)
	}
	if c.AISources == nil {
		return fmt.Errorf("%w: ai_sources", ErrMissingSection)
	}
	if _, _, err := ParseExecutionTime(c.Schedule.ExecutionTime); err != nil {
		return err
	}
	if c.Schedule.PostsPerDay <= 0 {
		c.Schedule.PostsPerDay = 3
	}

	sc := &c.SelectionCriteria
	if sc.FreshnessWeight < 0 || sc.RelevanceWeight < 0 {
		return fmt.Errorf("权重不能为负数: freshness=%v relevance=%v", sc.FreshnessWeight, sc.RelevanceWeight)
	}
	if sc.MinArticleLength < 0 {
		sc.MinArticleLength = 0
	}
	if sc.MaxArticlesPerSource <= 0 {
		sc.MaxArticlesPerSource = 5
	}
	// 0 表示不限速
	if sc.RequestsPerSecond < 0 {
		return fmt.Errorf("每秒请求数不能为负数: %v", sc.RequestsPerSecond)
	}
	sc.AIKeywords = cleanKeywords(sc.AIKeywords)
	sc.ExcludeKeywords = cleanKeywords(sc.ExcludeKeywords)

	switch strings.ToLower(c.Generation.ImageProvider) {
	case "", "openai":
		c.Generation.ImageProvider = "openai"
	case "google", "gemini":
		c.Generation.ImageProvider = "google"
	default:
		return fmt.Errorf("未知的图片服务: %s", c.Generation.ImageProvider)
	}
	switch strings.ToLower(c.Generation.DocumentFormat) {
	case "", "markdown", "md":
		c.Generation.DocumentFormat = "markdown"
	case "html":
		c.Generation.DocumentFormat = "html"
	default:
		return fmt.Errorf("未知的文档格式: %s", c.Generation.DocumentFormat)
	}
	return nil
}

// SaveAutomation 将配置整体写入文件(临时文件+重命名)
func SaveAutomation(path string, cfg *AutomationConfig) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	return fsutil.WriteFileAtomic(path, data, 0o644)
}

// ParseExecutionTime 解析 HH:MM 格式的执行时间
func ParseExecutionTime(value string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, 0, fmt.Errorf("无效的执行时间 %q，应为 HH:MM: %w", value, err)
	}
	return t.Hour(), t.Minute(), nil
}

// CronSpec 返回带秒字段的每日 cron 表达式
func (s *Schedule) CronSpec() (string, error) {
	hour, minute, err := ParseExecutionTime(s.ExecutionTime)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}

// cleanKeywords 去掉关键词两端空白并丢弃空项
func cleanKeywords(keywords []string) []string {
	out := keywords[:0:0]
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

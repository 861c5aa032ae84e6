package collector

import (
	"ai-news-posts/internal/models"
	"sort"
	"strings"
	"time"
)

const (
	// FreshnessWindow 超过该时长的文章新鲜度为 0
	FreshnessWindow = 168 * time.Hour
	// UndatedFreshness 没有发布时间的文章使用的新鲜度
	UndatedFreshness = 0.5
	// titleBonus 关键词出现在标题中时的额外加分
	titleBonus = 0.2
)

// Freshness 按发布时间线性衰减，0 小时为 1，168 小时及以上为 0
func Freshness(published *time.Time, now time.Time) float64 {
	if published == nil {
		return UndatedFreshness
	}
	age := now.Sub(*published)
	if age < 0 {
		age = 0
	}
	score := float64(FreshnessWindow-age) / float64(FreshnessWindow)
	if score < 0 {
		return 0
	}
	return score
}

// Relevance 命中关键词的比例，标题中每命中一个再加 0.2，上限为 1
func Relevance(a models.Article, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	text := strings.ToLower(a.Title + " " + a.Summary)
	title := strings.ToLower(a.Title)

	var matches, titleMatches, total int
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		total++
		if strings.Contains(text, kw) {
			matches++
		}
		if strings.Contains(title, kw) {
			titleMatches++
		}
	}

	if total == 0 {
		return 0
	}
	score := float64(matches)/float64(total) + titleBonus*float64(titleMatches)
	if score > 1 {
		return 1
	}
	return score
}

// ScoreArticles 计算每篇文章的得分并按得分降序稳定排序，同分保持原有顺序
func (c *Collector) ScoreArticles(articles []models.Article) []models.Article {
	now := c.now()
	scored := make([]models.Article, len(articles))
	for i, a := range articles {
		f := Freshness(a.Published, now)
		r := Relevance(a, c.criteria.AIKeywords)
		a.Score = f*c.criteria.FreshnessWeight + r*c.criteria.RelevanceWeight
		scored[i] = a
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// SelectTop 返回排序后的前 n 篇
func SelectTop(scored []models.Article, n int) []models.Article {
	if n <= 0 {
		return nil
	}
	if len(scored) > n {
		scored = scored[:n]
	}
	return append([]models.Article(nil), scored...)
}

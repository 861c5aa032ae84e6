package collector

import (
	"ai-news-posts/internal/models"
	"strings"
	"unicode/utf8"
)

// PassesQualityFilters 依次检查长度(按字符计)、AI关键词和排除词，任一不满足即淘汰
func (c *Collector) PassesQualityFilters(a models.Article) bool {
	if utf8.RuneCountInString(a.Body()) < c.criteria.MinArticleLength {
		return false
	}

	text := strings.ToLower(a.Title + " " + a.Summary)
	if !containsAny(text, c.criteria.AIKeywords) {
		return false
	}
	if containsAny(text, c.criteria.ExcludeKeywords) {
		return false
	}
	return true
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

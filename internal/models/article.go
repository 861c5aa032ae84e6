package models

import (
	"net/url"
	"strings"
	"time"
)

// Article 表示从订阅源收集到的一篇候选文章
type Article struct {
	Title        string     `json:"title"`
	Link         string     `json:"link"`
	Summary      string     `json:"summary"`
	Content      string     `json:"content,omitempty"`
	Published    *time.Time `json:"published,omitempty"`
	Source       string     `json:"source"`
	SourceDomain string     `json:"sourceDomain"`
	// Score 仅在评分之后有意义
	Score float64 `json:"score"`
}

// Body 返回用于长度判断的全部文本(摘要+正文)
func (a Article) Body() string {
	return a.Summary + a.Content
}

// GeneratedPost 表示一次成功保存的帖子
type GeneratedPost struct {
	Text         string    `json:"text"`
	Title        string    `json:"title"`
	Link         string    `json:"link"`
	SourceDomain string    `json:"sourceDomain"`
	DocumentPath string    `json:"documentPath"`
	ImagePath    string    `json:"imagePath,omitempty"`
	MirrorURL    string    `json:"mirrorUrl,omitempty"`
	TextProvider string    `json:"textProvider"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Skip 记录某篇文章在哪个阶段被跳过
type Skip struct {
	Link   string `json:"link"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// RunReport 一次自动化运行的结果
type RunReport struct {
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
	Collected  int             `json:"collected"`
	Selected   int             `json:"selected"`
	Posts      []GeneratedPost `json:"posts"`
	Skips      []Skip          `json:"skips"`
}

// DomainOf 返回链接的主机名，解析失败时返回空字符串
func DomainOf(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

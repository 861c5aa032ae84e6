package ai

import (
	"ai-news-posts/internal/models"
	"context"
	"fmt"
	"strings"
)

// Template 不依赖任何外部服务的兜底帖子模板
type Template struct{}

// Name 返回服务名称
func (Template) Name() string { return "template" }

// Available 模板始终可用
func (Template) Available() bool { return true }

// Generate 根据文章内容填充固定模板，总是成功
func (Template) Generate(_ context.Context, req Request) (string, error) {
	return RenderTemplate(req.Article), nil
}

// RenderTemplate 生成模板帖子
func RenderTemplate(a models.Article) string {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		title = "What's new in artificial intelligence"
	}
	summary := truncate(a.Summary, 300)
	if summary == "" {
		summary = "A new development is worth a closer look."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🤖 %s\n\n", title)
	sb.WriteString("Artificial intelligence keeps evolving fast, and this story is one worth following.\n\n")
	fmt.Fprintf(&sb, "%s\n\n", summary)
	sb.WriteString("Why it matters:\n")
	sb.WriteString("• New capabilities are reaching real products quickly\n")
	sb.WriteString("• Teams that experiment early learn the trade-offs first\n")
	sb.WriteString("• Responsible adoption is becoming a competitive advantage\n\n")
	sb.WriteString("What is your take? Share it in the comments.\n\n")
	if link := strings.TrimSpace(a.Link); link != "" {
		fmt.Fprintf(&sb, "Read more: %s\n\n", link)
	}
	sb.WriteString("#AI #ArtificialIntelligence #Innovation #Technology #Future")
	return sb.String()
}

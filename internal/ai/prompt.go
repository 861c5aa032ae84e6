package ai

import (
	"ai-news-posts/internal/models"
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxExcerptBytes 提示中正文摘录的最大长度
const maxExcerptBytes = 4000

// SystemPrompt 帖子风格要求
const SystemPrompt = `You are a senior technology writer who turns AI news into LinkedIn posts.
Write in a professional but engaging tone, in English.
Structure: a strong opening hook, 3-4 short paragraphs explaining why the news matters for professionals,
one practical takeaway, and a question that invites comments.
Length: 500-600 words. End with exactly 10 relevant hashtags on the last line.
Do not invent facts that are not in the source material and do not use markdown headings.`

// BuildPrompt 根据文章标题、摘要、链接和正文摘录生成用户提示
func BuildPrompt(a models.Article) string {
	var sb strings.Builder
	sb.WriteString("Create a professional and engaging LinkedIn post based on this AI article:\n\n")
	fmt.Fprintf(&sb, "Title: %s\n", a.Title)
	fmt.Fprintf(&sb, "Summary: %s\n", a.Summary)
	fmt.Fprintf(&sb, "Link: %s\n", a.Link)
	if excerpt := truncate(a.Content, maxExcerptBytes); excerpt != "" {
		fmt.Fprintf(&sb, "\nArticle excerpt:\n%s\n", excerpt)
	}
	return sb.String()
}

// truncate 按字节截断并保证不切断 UTF-8 字符
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

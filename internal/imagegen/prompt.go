package imagegen

import (
	"ai-news-posts/internal/models"
	"fmt"
	"strings"
	"unicode/utf8"
)

// BuildPrompt 生成图片提示词，只使用标题和摘要前 200 个字符
func BuildPrompt(a models.Article, postText string) string {
	excerpt := firstRunes(a.Summary, 200)
	if excerpt == "" {
		excerpt = firstRunes(postText, 200)
	}
	return fmt.Sprintf(`Create a professional, modern image for a LinkedIn post about: %s

Context: %s

Style: clean, corporate and tech-focused, with a blue and cyan palette, abstract shapes suggesting artificial intelligence and data.
Landscape composition suitable for a LinkedIn feed. No text, letters or logos in the image.`, strings.TrimSpace(a.Title), excerpt)
}

func firstRunes(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

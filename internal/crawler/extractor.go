package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxPageBytes 单个页面最多读取的字节数
const maxPageBytes = 5 << 20

// Extractor 获取文章页面并提取正文段落
type Extractor struct {
	client    *http.Client
	userAgent string
}

// NewExtractor 创建正文提取器
func NewExtractor(timeout time.Duration, userAgent string) *Extractor {
	return &Extractor{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Extract 返回文章正文，页面无法访问或没有段落时返回错误
func (e *Extractor) Extract(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}

	// 设置请求头 - 模拟浏览器请求
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("获取文章失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("获取文章失败: HTTP %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("解析HTML失败: %w", err)
	}
	text := ExtractParagraphs(doc)
	if text == "" {
		return "", fmt.Errorf("页面中没有正文: %s", pageURL)
	}
	return text, nil
}

// ExtractParagraphs 优先取 <article> 内的段落，否则取整个页面的段落
func ExtractParagraphs(doc *goquery.Document) string {
	doc.Find("script, style, nav, header, footer, aside, form").Remove()

	scope := doc.Find("article")
	if scope.Length() == 0 {
		scope = doc.Find("main")
	}
	if scope.Length() == 0 {
		scope = doc.Selection
	}

	var paragraphs []string
	scope.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := collapseSpaces(s.Text())
		// 过滤掉按钮文字、版权声明之类的短句
		if len(text) >= 40 {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n")
}

package feeds

import (
	"ai-news-posts/internal/fsutil"
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
)

var (
	ErrInvalidURL = errors.New("无效的订阅源地址")
	ErrDuplicate  = errors.New("订阅源已存在")
	ErrNotFound   = errors.New("订阅源不存在")
)

// Registry 是保存在纯文本文件中的订阅源列表，每行一个地址。
// 以 # 开头的行和空行在读取时忽略，保存时整体重写文件。
type Registry struct {
	mu   sync.Mutex
	path string
	urls []string
}

// Open 读取订阅源文件，文件不存在时返回空列表
func Open(path string) (*Registry, error) {
	r := &Registry{path: path}
	urls, err := Load(path)
	if err != nil {
		return nil, err
	}
	r.urls = urls
	return r, nil
}

// Load 读取订阅源文件，文件不存在视为空列表
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取订阅源文件失败: %w", err)
	}
	return Parse(data), nil
}

// Parse 解析订阅源文件内容
func Parse(data []byte) []string {
	var urls []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls
}

// Save 用给定列表整体重写订阅源文件
func Save(path string, urls []string) error {
	var buf bytes.Buffer
	for _, u := range urls {
		buf.WriteString(u)
		buf.WriteByte('\n')
	}
	return fsutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}

// List 返回当前订阅源的副本
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

// Add 添加订阅源并保存
func (r *Registry) Add(raw string) error {
	feedURL, err := Validate(raw)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.urls {
		if u == feedURL {
			return fmt.Errorf("%w: %s", ErrDuplicate, feedURL)
		}
	}
	next := append(append([]string(nil), r.urls...), feedURL)
	if err := Save(r.path, next); err != nil {
		return err
	}
	r.urls = next
	return nil
}

// Remove 删除订阅源并保存
func (r *Registry) Remove(feedURL string) error {
	feedURL = strings.TrimSpace(feedURL)

	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]string, 0, len(r.urls))
	for _, u := range r.urls {
		if u != feedURL {
			next = append(next, u)
		}
	}
	if len(next) == len(r.urls) {
		return fmt.Errorf("%w: %s", ErrNotFound, feedURL)
	}
	if err := Save(r.path, next); err != nil {
		return err
	}
	r.urls = next
	return nil
}

// Validate 检查订阅源地址必须是 http(s) 绝对地址
func Validate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return raw, nil
}

// Merge 按顺序合并多个订阅源列表并去重
func Merge(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, u := range list {
			u = strings.TrimSpace(u)
			if u == "" {
				continue
			}
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}

package ledger

import (
	"ai-news-posts/internal/fsutil"
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Ledger 记录已经生成过帖子的文章链接，只增不减。
// 每次 Record 都整体重写文件，文件中每行一个链接。
type Ledger struct {
	mu    sync.Mutex
	path  string
	links []string
	set   map[string]struct{}
}

// Load 读取已处理文章列表，文件不存在时返回空账本
func Load(path string) (*Ledger, error) {
	l := &Ledger{path: path, set: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取已处理文章列表失败: %w", err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		link := strings.TrimSpace(scanner.Text())
		if link == "" {
			continue
		}
		if _, ok := l.set[link]; ok {
			continue
		}
		l.set[link] = struct{}{}
		l.links = append(l.links, link)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("解析已处理文章列表失败: %w", err)
	}
	return l, nil
}

// Contains 判断链接是否已经处理过
func (l *Ledger) Contains(link string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.set[strings.TrimSpace(link)]
	return ok
}

// Record 记录已处理的链接；写入失败时内存状态保持不变
func (l *Ledger) Record(link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return errors.New("链接为空")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.set[link]; ok {
		return nil
	}

	var buf bytes.Buffer
	for _, existing := range l.links {
		buf.WriteString(existing)
		buf.WriteByte('\n')
	}
	buf.WriteString(link)
	buf.WriteByte('\n')
	if err := fsutil.WriteFileAtomic(l.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("写入已处理文章列表失败: %w", err)
	}

	l.set[link] = struct{}{}
	l.links = append(l.links, link)
	return nil
}

// Len 返回已记录的链接数量
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.links)
}

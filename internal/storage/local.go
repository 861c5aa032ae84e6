package storage

import (
	"ai-news-posts/internal/fsutil"
	"ai-news-posts/internal/models"
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/yuin/goldmark"
)

// 文档格式
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Mirror 接收本地已保存文件的副本，例如 MinioClient
type Mirror interface {
	UploadFile(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
	ObjectExists(ctx context.Context, objectName string) (bool, error)
	GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// PresignExpiry 帖子文档分享链接的有效期
const PresignExpiry = 7 * 24 * time.Hour

// Local 将帖子保存到 root/YYYY/MM/DD/ 下，文档与配图同名
type Local struct {
	root   string
	mirror Mirror
	logger *log.Logger
	now    func() time.Time
}

// NewLocal 创建本地存储，mirror 可以为 nil
func NewLocal(root string, mirror Mirror, logger *log.Logger) *Local {
	return &Local{root: root, mirror: mirror, logger: logger, now: time.Now}
}

// SetClock 替换当前时间函数
func (s *Local) SetClock(now func() time.Time) { s.now = now }

// Save 保存帖子文档，并把临时图片移动到文档旁边。
// 无论成功与否，imagePath 指向的临时文件都会被删除；失败时不会留下半成品。
func (s *Local) Save(ctx context.Context, text string, article models.Article, imagePath, format string) (models.GeneratedPost, error) {
	if imagePath != "" {
		defer os.Remove(imagePath)
	}

	now := s.now()
	dir := filepath.Join(s.root, now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return models.GeneratedPost{}, fmt.Errorf("创建输出目录失败: %w", err)
	}

	docExt := ".md"
	if format == FormatHTML {
		docExt = ".html"
	}
	imgExt := ""
	if imagePath != "" {
		imgExt = strings.ToLower(filepath.Ext(imagePath))
		if imgExt == "" {
			imgExt = ".png"
		}
	}
	stem := uniqueStem(dir, "post_"+now.Format("150405"), docExt, imgExt)

	post := models.GeneratedPost{
		Text:         text,
		Title:        article.Title,
		Link:         article.Link,
		SourceDomain: sourceLabel(article),
		DocumentPath: filepath.Join(dir, stem+docExt),
		CreatedAt:    now,
	}

	imageName := ""
	if imagePath != "" {
		imageName = stem + imgExt
		post.ImagePath = filepath.Join(dir, imageName)
		if err := fsutil.CopyFileAtomic(imagePath, post.ImagePath, 0o644); err != nil {
			return models.GeneratedPost{}, fmt.Errorf("保存图片失败: %w", err)
		}
	}

	doc, err := renderDocument(post, imageName, format)
	if err != nil {
		s.cleanup(post.ImagePath)
		return models.GeneratedPost{}, err
	}
	if err := fsutil.WriteFileAtomic(post.DocumentPath, doc, 0o644); err != nil {
		s.cleanup(post.ImagePath)
		return models.GeneratedPost{}, fmt.Errorf("保存文档失败: %w", err)
	}

	s.logger.Info("帖子已保存", "document", post.DocumentPath, "image", post.ImagePath)
	if s.mirror != nil {
		s.mirrorFiles(ctx, post.DocumentPath, post.ImagePath)
		post.MirrorURL = s.shareURL(ctx, post.DocumentPath)
	}
	return post, nil
}

func (s *Local) cleanup(imagePath string) {
	if imagePath != "" {
		os.Remove(imagePath)
	}
}

// mirrorFiles 上传到镜像存储，已存在的对象跳过，失败只记录日志
func (s *Local) mirrorFiles(ctx context.Context, files ...string) {
	for _, file := range files {
		if file == "" {
			continue
		}
		object, err := s.ObjectName(file)
		if err != nil {
			s.logger.Warn("计算镜像路径失败", "file", file, "err", err)
			continue
		}
		exists, err := s.mirror.ObjectExists(ctx, object)
		if err != nil {
			s.logger.Warn("检查镜像对象失败", "object", object, "err", err)
			continue
		}
		if exists {
			s.logger.Debug("镜像对象已存在，跳过上传", "object", object)
			continue
		}
		data, err := os.ReadFile(file)
		if err != nil {
			s.logger.Warn("读取待镜像文件失败", "file", file, "err", err)
			continue
		}
		contentType := mime.TypeByExtension(filepath.Ext(file))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if _, err := s.mirror.UploadFile(ctx, object, data, contentType); err != nil {
			s.logger.Warn("镜像上传失败", "object", object, "err", err)
		}
	}
}

// shareURL 返回文档在镜像存储中的预签名地址，失败时返回空字符串
func (s *Local) shareURL(ctx context.Context, file string) string {
	object, err := s.ObjectName(file)
	if err != nil {
		return ""
	}
	link, err := s.mirror.GetPresignedURL(ctx, object, PresignExpiry)
	if err != nil {
		s.logger.Warn("生成预签名地址失败", "object", object, "err", err)
		return ""
	}
	return link
}

// ObjectName 返回本地文件在镜像存储中的路径: generated_posts/YYYY/MM/DD/<file>
func (s *Local) ObjectName(file string) (string, error) {
	rel, err := filepath.Rel(s.root, file)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		return "", errors.New("文件不在输出目录内")
	}
	return path.Join("generated_posts", filepath.ToSlash(rel)), nil
}

// DayPrefix 返回某一天在镜像存储中的前缀
func DayPrefix(day time.Time) string {
	return path.Join("generated_posts", day.Format("2006"), day.Format("01"), day.Format("02")) + "/"
}

// uniqueStem 同一秒内保存多篇时追加 _2、_3 等后缀
func uniqueStem(dir, base string, exts ...string) string {
	stem := base
	for i := 2; ; i++ {
		taken := false
		for _, ext := range exts {
			if ext == "" {
				continue
			}
			if _, err := os.Stat(filepath.Join(dir, stem+ext)); err == nil {
				taken = true
				break
			}
		}
		if !taken {
			return stem
		}
		stem = fmt.Sprintf("%s_%d", base, i)
	}
}

func sourceLabel(a models.Article) string {
	if a.SourceDomain != "" {
		return a.SourceDomain
	}
	if d := models.DomainOf(a.Link); d != "" {
		return d
	}
	return "N/A"
}

func renderDocument(post models.GeneratedPost, imageName, format string) ([]byte, error) {
	link := post.Link
	if link == "" {
		link = "N/A"
	}

	var md strings.Builder
	md.WriteString("# LinkedIn Post\n\n")
	fmt.Fprintf(&md, "- **Date:** %s\n", post.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&md, "- **Source:** %s\n", post.SourceDomain)
	fmt.Fprintf(&md, "- **Link:** %s\n\n", link)
	md.WriteString("## LinkedIn Post Content\n\n")
	md.WriteString(strings.TrimSpace(post.Text))
	md.WriteString("\n")
	if imageName != "" {
		fmt.Fprintf(&md, "\n## Image\n\n![%s](%s)\n", imageName, imageName)
	}

	if format != FormatHTML {
		return []byte(md.String()), nil
	}

	var body bytes.Buffer
	if err := goldmark.Convert([]byte(md.String()), &body); err != nil {
		return nil, fmt.Errorf("渲染HTML失败: %w", err)
	}
	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s</title>\n</head>\n<body>\n", html.EscapeString(post.Title))
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}
